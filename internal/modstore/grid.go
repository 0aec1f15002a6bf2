package modstore

import (
	"sort"

	"voice-sheet/internal/format"
)

// CurrentData rebuilds the displayed grid. The order is fixed: cell
// changes apply in base-grid coordinates first, then inserted rows,
// removed rows (descending), inserted columns and removed columns
// (descending).
func (s *Store) CurrentData() [][]string {
	grid := cloneGrid(s.original)

	for _, rec := range s.Records() {
		if rec.RowIndex < 0 || rec.ColumnIndex < 0 {
			continue
		}
		for len(grid) <= rec.RowIndex {
			grid = append(grid, []string{})
		}
		row := grid[rec.RowIndex]
		for len(row) <= rec.ColumnIndex {
			row = append(row, "")
		}
		row[rec.ColumnIndex] = rec.ModifiedValue
		grid[rec.RowIndex] = row
	}

	st := s.structure
	for _, idx := range st.AddedRows {
		grid = insertAt(grid, idx, make([]string, max(st.ColCount, 0)))
	}
	for _, idx := range descending(st.RemovedRows) {
		if idx >= 0 && idx < len(grid) {
			grid = append(grid[:idx], grid[idx+1:]...)
		}
	}
	for _, idx := range st.AddedColumns {
		for i, row := range grid {
			if idx >= 0 && idx <= len(row) {
				grid[i] = insertAt(row, idx, "")
			}
		}
	}
	for _, idx := range descending(st.RemovedColumns) {
		for i, row := range grid {
			if idx >= 0 && idx < len(row) {
				grid[i] = append(row[:idx], row[idx+1:]...)
			}
		}
	}
	return grid
}

// Export returns the current grid together with every effective cell style
// (base style merged with its override), moved to the coordinates the
// structural changes give it. Styles on removed rows or columns are
// dropped.
func (s *Store) Export() ([][]string, []format.CellStyle) {
	keys := make(map[[2]int]struct{}, len(s.baseStyles)+len(s.styles))
	collect := func(m map[string]format.StyleRecord) {
		for k := range m {
			if r, c, ok := parseCellKey(k); ok {
				keys[[2]int{r, c}] = struct{}{}
			}
		}
	}
	collect(s.baseStyles)
	collect(s.styles)

	st := s.structure
	styles := make([]format.CellStyle, 0, len(keys))
	for rc := range keys {
		f := s.Cell(rc[0], rc[1]).Format
		if f.IsZero() {
			continue
		}
		row, ok := projectIndex(rc[0], st.AddedRows, st.RemovedRows)
		if !ok {
			continue
		}
		col, ok := projectIndex(rc[1], st.AddedColumns, st.RemovedColumns)
		if !ok {
			continue
		}
		styles = append(styles, format.CellStyle{Row: row, Col: col, Format: f})
	}
	sort.Slice(styles, func(i, j int) bool {
		if styles[i].Row != styles[j].Row {
			return styles[i].Row < styles[j].Row
		}
		return styles[i].Col < styles[j].Col
	})
	return s.CurrentData(), styles
}

// projectIndex maps a base-grid index through the insertions (in order)
// and the removals (descending), mirroring CurrentData.
func projectIndex(idx int, added, removed []int) (int, bool) {
	for _, a := range added {
		if idx >= a {
			idx++
		}
	}
	for _, r := range descending(removed) {
		if idx == r {
			return 0, false
		}
		if idx > r {
			idx--
		}
	}
	return idx, true
}

func insertAt[T any](s []T, idx int, v T) []T {
	if idx < 0 {
		idx = 0
	}
	if idx > len(s) {
		idx = len(s)
	}
	s = append(s, v)
	copy(s[idx+1:], s[idx:])
	s[idx] = v
	return s
}

func descending(in []int) []int {
	out := append([]int(nil), in...)
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out
}

func cloneGrid(g [][]string) [][]string {
	out := make([][]string, len(g))
	for i, row := range g {
		out[i] = append([]string(nil), row...)
	}
	return out
}

func columnCount(g [][]string) int {
	n := 0
	for _, row := range g {
		n = max(n, len(row))
	}
	return n
}
