// Package modstore tracks user edits as a sparse overlay on top of an
// immutable base grid. Cell changes, structural row/column operations and
// per-cell style overrides are kept per sheet and persisted to a key-value
// store on every mutation.
package modstore

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/mohae/deepcopy"
	"github.com/sirupsen/logrus"

	"voice-sheet/internal/format"
	"voice-sheet/internal/kvstore"
)

var ErrNoSheet = errors.New("no sheet loaded")

// SheetID identifies a sheet across reloads.
type SheetID struct {
	FileID    string `json:"fileId"`
	SheetName string `json:"sheetName"`
}

func (id SheetID) String() string {
	if id.SheetName == "" {
		return id.FileID
	}
	return id.FileID + "/" + id.SheetName
}

// Record is a tracked cell change. The JSON shape is persisted verbatim.
type Record struct {
	OriginalValue string              `json:"originalValue"`
	ModifiedValue string              `json:"modifiedValue"`
	RowIndex      int                 `json:"rowIndex"`
	ColumnIndex   int                 `json:"columnIndex"`
	Format        *format.StyleRecord `json:"format,omitempty"`
}

// Cell is the display view of one cell. Modified is nil when the cell has
// no record.
type Cell struct {
	Original string
	Modified *string
	Format   format.StyleRecord
}

// Value returns the modified value if any, else the original.
func (c Cell) Value() string {
	if c.Modified != nil {
		return *c.Modified
	}
	return c.Original
}

// Structure holds the structural operations in the order they were made.
type Structure struct {
	AddedRows      []int `json:"addedRows"`
	RemovedRows    []int `json:"removedRows"`
	AddedColumns   []int `json:"addedColumns"`
	RemovedColumns []int `json:"removedColumns"`
	RowCount       int   `json:"currentRowCount"`
	ColCount       int   `json:"currentColCount"`
}

// Store is the overlay of the currently loaded sheet. It is not safe for
// concurrent use; callers serialize access on their event loop.
type Store struct {
	kv  kvstore.Store
	log *logrus.Entry

	id         SheetID
	loaded     bool
	original   [][]string
	baseStyles map[string]format.StyleRecord

	changes   map[string]Record
	styles    map[string]format.StyleRecord
	structure Structure
	revision  uint64

	history []JournalEntry
	now     func() time.Time
}

// New returns an empty store. Load must be called before any mutation.
func New(kv kvstore.Store, log *logrus.Entry) *Store {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Store{
		kv:         kv,
		log:        log.WithField("component", "modstore"),
		baseStyles: make(map[string]format.StyleRecord),
		changes:    make(map[string]Record),
		styles:     make(map[string]format.StyleRecord),
		now:        time.Now,
	}
}

// CellKey is the "row-col" key records are stored under.
func CellKey(row, col int) string {
	return strconv.Itoa(row) + "-" + strconv.Itoa(col)
}

// Load switches the store to sheet id. The base grid is deep-copied once;
// the previous sheet's in-memory overlay is dropped (its durable entries
// stay) and the overlay persisted for id, if any, is restored.
func (s *Store) Load(id SheetID, values [][]string, formatting []format.CellStyle) error {
	original, _ := deepcopy.Copy(values).([][]string)

	s.id = id
	s.loaded = true
	s.original = original
	s.baseStyles = make(map[string]format.StyleRecord, len(formatting))
	for _, cs := range formatting {
		s.baseStyles[CellKey(cs.Row, cs.Col)] = cs.Format
	}
	s.resetOverlay()
	s.history = nil
	s.revision++

	err := s.restore()
	s.log.WithFields(logrus.Fields{
		"sheet":   id.String(),
		"rows":    s.structure.RowCount,
		"cols":    s.structure.ColCount,
		"changes": s.ChangeCount(),
	}).Info("sheet loaded")
	return err
}

func (s *Store) resetOverlay() {
	s.changes = make(map[string]Record)
	s.styles = make(map[string]format.StyleRecord)
	s.structure = Structure{RowCount: len(s.original), ColCount: columnCount(s.original)}
}

// Sheet returns the identity of the loaded sheet.
func (s *Store) Sheet() SheetID { return s.id }

// Loaded reports whether a sheet has been loaded.
func (s *Store) Loaded() bool { return s.loaded }

// Revision increases on every mutation; it lets callers detect edits made
// after a snapshot.
func (s *Store) Revision() uint64 { return s.revision }

// Original returns a copy of the base grid.
func (s *Store) Original() [][]string { return cloneGrid(s.original) }

// OriginalValue returns the base value at (row, col), "" when out of range.
func (s *Store) OriginalValue(row, col int) string {
	if row < 0 || row >= len(s.original) {
		return ""
	}
	r := s.original[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return r[col]
}

// UpdateCell records value for (row, col). Setting a cell back to its
// original value drops its record unless the cell carries a style
// override. The whole change map is persisted on every call.
func (s *Store) UpdateCell(row, col int, value string) error {
	if !s.loaded {
		return ErrNoSheet
	}
	key := CellKey(row, col)
	orig := s.OriginalValue(row, col)
	style, styled := s.styles[key]

	action := "EDIT_CELL"
	if value == orig && !styled {
		delete(s.changes, key)
		action = "RESTORE_CELL"
	} else {
		rec := s.changes[key]
		rec.OriginalValue = orig
		rec.ModifiedValue = value
		rec.RowIndex = row
		rec.ColumnIndex = col
		if rec.Format == nil && styled {
			rec.Format = &style
		}
		s.changes[key] = rec
	}
	s.revision++

	s.log.WithFields(logrus.Fields{
		"action": action,
		"sheet":  s.id.String(),
		"row":    row,
		"col":    col,
	}).Debugf("cell %s set to %q", key, value)
	err := s.persistChanges()
	s.Note(action, fmt.Sprintf("%s %q -> %q", key, orig, value))
	return err
}

// ResetCell restores (row, col) to its original value.
func (s *Store) ResetCell(row, col int) error {
	return s.UpdateCell(row, col, s.OriginalValue(row, col))
}

// SetCellStyleFormat merges partial into the cell's style override,
// creating the cell's record if it has none.
func (s *Store) SetCellStyleFormat(row, col int, partial format.StyleRecord) error {
	if !s.loaded {
		return ErrNoSheet
	}
	key := CellKey(row, col)
	merged := format.Merge(s.styles[key], partial)
	s.styles[key] = merged

	rec, ok := s.changes[key]
	if !ok {
		orig := s.OriginalValue(row, col)
		rec = Record{OriginalValue: orig, ModifiedValue: orig, RowIndex: row, ColumnIndex: col}
	}
	f := merged
	rec.Format = &f
	s.changes[key] = rec
	s.revision++

	s.log.WithFields(logrus.Fields{
		"action": "STYLE_CELL",
		"sheet":  s.id.String(),
		"row":    row,
		"col":    col,
	}).Debug("cell style updated")
	err := errors.Join(s.persistStyles(), s.persistChanges())
	s.Note("STYLE_CELL", key)
	return err
}

// ClearCellStyle drops the style override of (row, col). The record goes
// away with it when the value equals the original.
func (s *Store) ClearCellStyle(row, col int) error {
	if !s.loaded {
		return ErrNoSheet
	}
	key := CellKey(row, col)
	if _, ok := s.styles[key]; !ok {
		return nil
	}
	delete(s.styles, key)
	if rec, ok := s.changes[key]; ok {
		if rec.ModifiedValue == rec.OriginalValue {
			delete(s.changes, key)
		} else {
			rec.Format = nil
			s.changes[key] = rec
		}
	}
	s.revision++
	err := errors.Join(s.persistStyles(), s.persistChanges())
	s.Note("CLEAR_STYLE", key)
	return err
}

// AddRow records an empty row inserted at index. Index validity is the
// caller's responsibility.
func (s *Store) AddRow(index int) error {
	return s.structural("INSERT_ROW", func(st *Structure) {
		st.AddedRows = append(st.AddedRows, index)
		st.RowCount++
	}, index)
}

// RemoveRow records the removal of the row at index.
func (s *Store) RemoveRow(index int) error {
	return s.structural("DELETE_ROW", func(st *Structure) {
		st.RemovedRows = append(st.RemovedRows, index)
		st.RowCount--
	}, index)
}

// AddColumn records an empty column inserted at index.
func (s *Store) AddColumn(index int) error {
	return s.structural("INSERT_COL", func(st *Structure) {
		st.AddedColumns = append(st.AddedColumns, index)
		st.ColCount++
	}, index)
}

// RemoveColumn records the removal of the column at index.
func (s *Store) RemoveColumn(index int) error {
	return s.structural("DELETE_COL", func(st *Structure) {
		st.RemovedColumns = append(st.RemovedColumns, index)
		st.ColCount--
	}, index)
}

func (s *Store) structural(action string, apply func(*Structure), index int) error {
	if !s.loaded {
		return ErrNoSheet
	}
	apply(&s.structure)
	s.revision++
	s.log.WithFields(logrus.Fields{
		"action": action,
		"sheet":  s.id.String(),
		"index":  index,
		"rows":   s.structure.RowCount,
		"cols":   s.structure.ColCount,
	}).Debug("structure changed")
	err := s.persistStructure()
	s.Note(action, fmt.Sprintf("index %d", index))
	return err
}

// Structure returns a copy of the structural operations.
func (s *Store) Structure() Structure {
	st := s.structure
	st.AddedRows = append([]int(nil), st.AddedRows...)
	st.RemovedRows = append([]int(nil), st.RemovedRows...)
	st.AddedColumns = append([]int(nil), st.AddedColumns...)
	st.RemovedColumns = append([]int(nil), st.RemovedColumns...)
	return st
}

// ChangeCount is the number of pending changes shown in "unsaved changes"
// prompts.
func (s *Store) ChangeCount() int {
	st := s.structure
	return len(s.changes) + len(st.AddedRows) + len(st.RemovedRows) +
		len(st.AddedColumns) + len(st.RemovedColumns)
}

// Clear drops the overlay of the loaded sheet, in memory and in the
// key-value store. Other sheets' entries are untouched.
func (s *Store) Clear() error {
	if !s.loaded {
		return ErrNoSheet
	}
	s.resetOverlay()
	s.revision++
	s.log.WithFields(logrus.Fields{"action": "CLEAR", "sheet": s.id.String()}).Info("modifications cleared")
	err := s.removePersisted()
	s.Note("CLEAR", "")
	return err
}

// Record returns the change record of (row, col).
func (s *Store) Record(row, col int) (Record, bool) {
	rec, ok := s.changes[CellKey(row, col)]
	return rec, ok
}

// Records returns all change records ordered by row, then column.
func (s *Store) Records() []Record {
	out := make([]Record, 0, len(s.changes))
	for _, rec := range s.changes {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RowIndex != out[j].RowIndex {
			return out[i].RowIndex < out[j].RowIndex
		}
		return out[i].ColumnIndex < out[j].ColumnIndex
	})
	return out
}

// Cell returns the display view of (row, col) in base-grid coordinates.
// Its format is the base style with the override merged on top.
func (s *Store) Cell(row, col int) Cell {
	key := CellKey(row, col)
	c := Cell{
		Original: s.OriginalValue(row, col),
		Format:   format.Merge(s.baseStyles[key], s.styles[key]),
	}
	if rec, ok := s.changes[key]; ok {
		v := rec.ModifiedValue
		c.Modified = &v
	}
	return c
}

// DisplayValue is Cell(row, col).Value().
func (s *Store) DisplayValue(row, col int) string {
	return s.Cell(row, col).Value()
}

func (s *Store) String() string {
	return fmt.Sprintf("modstore(%s, %d changes)", s.id, s.ChangeCount())
}
