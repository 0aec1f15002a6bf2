package filter

import (
	"slices"

	"voice-sheet/internal/cursor"
)

// Columns names the grid columns feeding each level.
type Columns struct {
	Facility int `json:"facility"`
	SubUnit  int `json:"subUnit"`
	Crop     int `json:"crop"`
}

// Selection is the selected value at each level. Empty means none.
type Selection struct {
	Level1 string `json:"level1"`
	Level2 string `json:"level2"`
	Level3 string `json:"level3"`
}

// Change is the result of one selection: the recomputed child options, the
// selection after any automatic cascade and the row to jump to, if any.
type Change struct {
	Selection Selection `json:"selection"`
	Level2    []string  `json:"level2,omitempty"`
	Level3    []string  `json:"level3,omitempty"`
	JumpRow   int       `json:"jumpRow"`
	Jumped    bool      `json:"jumped"`
	NoMatch   bool      `json:"noMatch"`
}

// Index holds the option lists and current selection. Published slices are
// never mutated; every recomputation allocates new ones.
type Index struct {
	rows   []Row
	header string

	level1 []string
	level2 []string
	level3 []string
	sel    Selection
}

// Build extracts the filter rows from the data span of grid and selects the
// first level-1 option. The returned Change reflects that initial cascade.
func Build(grid [][]string, cols Columns, b cursor.Bounds) (*Index, Change) {
	idx := &Index{}
	if b.HeaderRow >= 0 && b.HeaderRow < len(grid) {
		idx.header = cell(grid[b.HeaderRow], cols.Facility)
	}
	for r := b.FirstRow; r <= b.LastRow && r < len(grid); r++ {
		row := grid[r]
		idx.rows = append(idx.rows, Row{
			Index:    r,
			Facility: cell(row, cols.Facility),
			SubUnit:  cell(row, cols.SubUnit),
			Crop:     cell(row, cols.Crop),
		})
	}
	idx.level1 = Level1Options(idx.rows, idx.header)
	if len(idx.level1) == 0 {
		return idx, Change{}
	}
	return idx, idx.SelectLevel1(idx.level1[0])
}

func (x *Index) Level1() []string     { return slices.Clone(x.level1) }
func (x *Index) Level2() []string     { return slices.Clone(x.level2) }
func (x *Index) Level3() []string     { return slices.Clone(x.level3) }
func (x *Index) Selection() Selection { return x.sel }
func (x *Index) Rows() []Row          { return slices.Clone(x.rows) }

// SelectLevel1 recomputes the level-2 options for v and selects the first
// of them, which in turn recomputes level 3. Child selections without a
// matching option are left as they were.
func (x *Index) SelectLevel1(v string) Change {
	x.sel.Level1 = v
	x.level2 = Level2Options(x.rows, v)
	if len(x.level2) == 0 {
		x.level3 = nil
		return x.change(Change{})
	}
	return x.SelectLevel2(x.level2[0])
}

// SelectLevel2 recomputes the level-3 options. Re-selecting the current
// level-2 value cascades straight into the first level-3 option.
func (x *Index) SelectLevel2(v string) Change {
	prev := x.sel.Level2
	x.sel.Level2 = v
	x.level3 = Level3Options(x.rows, x.sel.Level1, v)
	if v == prev && len(x.level3) > 0 {
		return x.SelectLevel3(x.level3[0])
	}
	return x.change(Change{})
}

// SelectLevel3 looks up the first row matching all three selections.
// Without a match the cursor is left alone and NoMatch is set.
func (x *Index) SelectLevel3(v string) Change {
	x.sel.Level3 = v
	row, ok := FindRow(x.rows, x.sel)
	if !ok {
		return x.change(Change{NoMatch: true})
	}
	return x.change(Change{JumpRow: row, Jumped: true})
}

func (x *Index) change(c Change) Change {
	c.Selection = x.sel
	c.Level2 = slices.Clone(x.level2)
	c.Level3 = slices.Clone(x.level3)
	return c
}

func cell(row []string, c int) string {
	if c < 0 || c >= len(row) {
		return ""
	}
	return row[c]
}
