package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"

	"voice-sheet/internal/filter"
	"voice-sheet/internal/kvstore"
	"voice-sheet/internal/modstore"
	"voice-sheet/internal/session"
)

func (a *app) inspectCmd() *cobra.Command {
	var sheet string
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "inspect <file.xlsx>",
		Short: "Show the editable area, filter options and pending edits of a sheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kv, err := a.openStore()
			if err != nil {
				return err
			}
			defer kvstore.Close(kv)

			s := a.newSession(kv, a.gateway(), nil, nil, nil)
			if err := s.Open(cmd.Context(), args[0], sheet); err != nil {
				return err
			}
			if asJSON {
				return writeReportJSON(cmd.OutOrStdout(), s)
			}
			return writeReport(cmd.OutOrStdout(), s, a.cfg.Filter.Columns())
		},
	}
	cmd.Flags().StringVar(&sheet, "sheet", "", "Sheet to inspect (default: first sheet)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the session state as JSON")
	return cmd
}

// historyLines is how many journal entries the text report shows.
const historyLines = 10

type report struct {
	session.State
	Records []modstore.Record       `json:"records"`
	Journal []modstore.JournalEntry `json:"journal"`
}

func writeReportJSON(w io.Writer, s *session.Session) error {
	st := s.Snapshot()
	st.Grid = nil
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report{State: st, Records: s.Store().Records(), Journal: s.Store().Journal()})
}

func writeReport(w io.Writer, s *session.Session, cols filter.Columns) error {
	st := s.Snapshot()
	b := st.Bounds
	fmt.Fprintf(w, "file:    %s\n", st.File)
	fmt.Fprintf(w, "sheet:   %s (%d sheets)\n", st.Sheet, len(st.Sheets))
	fmt.Fprintf(w, "header:  row %d\n", b.HeaderRow+1)
	fmt.Fprintf(w, "rows:    %d-%d\n", b.FirstRow+1, b.LastRow+1)
	fmt.Fprintf(w, "columns: %s-%s\n", cellName(b.HeaderRow, b.MinCol, true), cellName(b.HeaderRow, b.MaxCol, true))

	fmt.Fprintln(w, "\nprompts:")
	for c := b.MinCol; c <= b.MaxCol && c < len(st.Labels); c++ {
		fmt.Fprintf(w, "  %s  %s\n", cellName(0, c, true), st.Labels[c])
	}

	fmt.Fprintln(w, "\nfilter:")
	idx, _ := filter.Build(s.Store().Original(), cols, b)
	rows := idx.Rows()
	for _, l1 := range idx.Level1() {
		fmt.Fprintf(w, "  %s\n", l1)
		for _, l2 := range filter.Level2Options(rows, l1) {
			fmt.Fprintf(w, "    %s:", l2)
			for _, l3 := range filter.Level3Options(rows, l1, l2) {
				fmt.Fprintf(w, " %s", l3)
			}
			fmt.Fprintln(w)
		}
	}

	recs := s.Store().Records()
	fmt.Fprintf(w, "\npending edits: %d\n", len(recs))
	for _, r := range recs {
		fmt.Fprintf(w, "  %s  %q -> %q\n", cellName(r.RowIndex, r.ColumnIndex, false), r.OriginalValue, r.ModifiedValue)
	}

	journal := s.Store().Journal()
	if n := len(journal) - historyLines; n > 0 {
		journal = journal[n:]
	}
	if len(journal) > 0 {
		fmt.Fprintln(w, "\nrecent history:")
	}
	for _, e := range journal {
		fmt.Fprintf(w, "  %s  %-12s %s\n", e.Timestamp.Format(time.DateTime), e.Action, e.Details)
	}
	return nil
}

// cellName formats zero-based coordinates as A1 notation, or just the
// column letters when colOnly is set.
func cellName(row, col int, colOnly bool) string {
	if colOnly {
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return fmt.Sprint(col)
		}
		return name
	}
	name, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return fmt.Sprintf("R%dC%d", row+1, col+1)
	}
	return name
}
