package main

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"voice-sheet/internal/kvstore"
	"voice-sheet/internal/tui"
)

func (a *app) editCmd() *cobra.Command {
	var sheet, saveAs string
	cmd := &cobra.Command{
		Use:   "edit <file.xlsx>",
		Short: "Edit a sheet from the keyboard in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kv, err := a.openStore()
			if err != nil {
				return err
			}
			defer kvstore.Close(kv)

			// The terminal belongs to the editor; keep logs out of it.
			a.log.SetOutput(io.Discard)
			if lf := a.cfg.Log.File; lf != "" {
				f, err := os.OpenFile(lf, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
				if err != nil {
					return fmt.Errorf("open log file: %w", err)
				}
				defer f.Close()
				a.log.SetOutput(f)
			}

			gw := a.gateway()
			status := tui.NewStatus()
			s := a.newSession(kv, gw, nil, nil, status)
			if err := s.Open(cmd.Context(), args[0], sheet); err != nil {
				return err
			}

			m := tui.New(cmd.Context(), s, gw, status, tui.Options{
				VisibleRows: a.cfg.Editor.VisibleRows,
				VisibleCols: a.cfg.Editor.VisibleCols,
				SaveName:    saveAs,
			})
			if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run(); err != nil {
				return fmt.Errorf("editor: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&sheet, "sheet", "", "Sheet to open (default: first sheet)")
	cmd.Flags().StringVar(&saveAs, "save-as", "", "Workbook name for ctrl+s (default: \"<title> (edited)\")")
	return cmd
}
