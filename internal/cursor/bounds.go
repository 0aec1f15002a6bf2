package cursor

import (
	"errors"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	ErrEmptyGrid   = errors.New("grid has no non-empty row")
	ErrNoDataRows  = errors.New("grid has no data rows below the header")
	ErrInvalidSpan = errors.New("invalid cursor bounds")
)

// Bounds is the editable region: data rows FirstRow..LastRow and columns
// MinCol..MaxCol, all inclusive and 0-based.
type Bounds struct {
	HeaderRow int `json:"headerRow"`
	FirstRow  int `json:"firstRow"`
	LastRow   int `json:"lastRow"`
	MinCol    int `json:"minCol"`
	MaxCol    int `json:"maxCol"`
}

// Validate checks the span is non-empty.
func (b Bounds) Validate() error {
	if b.FirstRow < 0 || b.MinCol < 0 || b.FirstRow > b.LastRow || b.MinCol > b.MaxCol {
		return ErrInvalidSpan
	}
	return nil
}

// Contains reports whether (row, col) is inside the bounds.
func (b Bounds) Contains(row, col int) bool {
	return row >= b.FirstRow && row <= b.LastRow && col >= b.MinCol && col <= b.MaxCol
}

// DetectBounds derives the bounds from the header structure of grid. The
// first non-empty row is the header. The first and last empty header
// cells delimit the editable columns; a header without empty cells makes
// every column editable. Data rows start below the header and stop before
// the first fully empty row.
func DetectBounds(grid [][]string) (Bounds, error) {
	header := -1
	for i, row := range grid {
		if !isEmptyRow(row) {
			header = i
			break
		}
	}
	if header < 0 {
		return Bounds{}, ErrEmptyGrid
	}

	cols := 0
	for _, row := range grid {
		cols = max(cols, len(row))
	}

	b := Bounds{HeaderRow: header, FirstRow: header + 1, MinCol: -1, MaxCol: -1}
	hdr := grid[header]
	for c := 0; c < cols; c++ {
		if cellAt(hdr, c) != "" {
			continue
		}
		if b.MinCol < 0 {
			b.MinCol = c
		}
		b.MaxCol = c
	}
	if b.MinCol < 0 {
		b.MinCol, b.MaxCol = 0, cols-1
	}

	b.LastRow = len(grid) - 1
	for r := b.FirstRow; r < len(grid); r++ {
		if isEmptyRow(grid[r]) {
			b.LastRow = r - 1
			break
		}
	}
	if b.LastRow < b.FirstRow {
		return Bounds{}, ErrNoDataRows
	}
	return b, nil
}

// ColumnLabels returns the header text of every column up to MaxCol.
// Columns with an empty header get their spreadsheet letter instead.
func ColumnLabels(grid [][]string, b Bounds) []string {
	var hdr []string
	if b.HeaderRow >= 0 && b.HeaderRow < len(grid) {
		hdr = grid[b.HeaderRow]
	}
	labels := make([]string, b.MaxCol+1)
	for c := range labels {
		if v := cellAt(hdr, c); v != "" {
			labels[c] = v
			continue
		}
		name, err := excelize.ColumnNumberToName(c + 1)
		if err != nil {
			continue
		}
		labels[c] = name
	}
	return labels
}

func cellAt(row []string, c int) string {
	if c < 0 || c >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[c])
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
