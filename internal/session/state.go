package session

import (
	"voice-sheet/internal/cursor"
	"voice-sheet/internal/filter"
	"voice-sheet/internal/format"
)

type FilterState struct {
	Level1    []string         `json:"level1"`
	Level2    []string         `json:"level2"`
	Level3    []string         `json:"level3"`
	Selection filter.Selection `json:"selection"`
}

// State is what a front end needs to render the session. Format is the
// current cell's style in the remote API's shape.
type State struct {
	Open      bool              `json:"open"`
	File      string            `json:"file,omitempty"`
	Sheet     string            `json:"sheet,omitempty"`
	Title     string            `json:"title,omitempty"`
	Sheets    []string          `json:"sheets,omitempty"`
	Position  cursor.Position   `json:"position"`
	Label     string            `json:"label"`
	Value     string            `json:"value"`
	Original  string            `json:"original"`
	Format    format.CellFormat `json:"format"`
	Buffer    string            `json:"buffer"`
	Changes   int               `json:"changes"`
	First     bool              `json:"first"`
	Last      bool              `json:"last"`
	Listening bool              `json:"listening"`
	Speaking  bool              `json:"speaking"`
	Saving    bool              `json:"saving"`
	Bounds    cursor.Bounds     `json:"bounds"`
	Labels    []string          `json:"labels,omitempty"`
	Filter    FilterState       `json:"filter"`
	Grid      [][]string        `json:"grid,omitempty"`
}

// Snapshot copies the session state. Nothing in it aliases session data.
func (s *Session) Snapshot() State {
	st := State{
		Open:      s.IsOpen(),
		Listening: s.wantListen,
		Speaking:  s.Speaking(),
		Saving:    s.saving,
	}
	if !st.Open {
		return st
	}
	p := s.cur.Position()
	st.File = s.fileID
	st.Sheet = s.store.Sheet().SheetName
	st.Title = s.title
	st.Sheets = append([]string(nil), s.sheets...)
	st.Position = p
	st.Label = s.CurrentLabel()
	st.Value = s.store.DisplayValue(p.Row, p.Col)
	st.Original = s.store.OriginalValue(p.Row, p.Col)
	st.Format = format.ToCellFormat(s.store.Cell(p.Row, p.Col).Format)
	st.Buffer = s.buffer
	st.Changes = s.store.ChangeCount()
	st.First = s.cur.IsFirstCell()
	st.Last = s.cur.IsLastCell()
	st.Bounds = s.bounds
	st.Labels = s.Labels()
	st.Filter = s.Filter()
	st.Grid = s.store.CurrentData()
	return st
}

// Filter returns the current option lists and selection of the three
// filter levels.
func (s *Session) Filter() FilterState {
	if !s.IsOpen() {
		return FilterState{}
	}
	return FilterState{
		Level1:    s.index.Level1(),
		Level2:    s.index.Level2(),
		Level3:    s.index.Level3(),
		Selection: s.index.Selection(),
	}
}
