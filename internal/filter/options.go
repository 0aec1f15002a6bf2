// Package filter builds the three-level facility / sub-unit / crop index
// used to jump the cursor to a data row.
package filter

import (
	"strings"
)

// Row is one data row projected onto the three filter columns. Values are
// kept as found in the sheet; comparisons trim them.
type Row struct {
	Index    int
	Facility string
	SubUnit  string
	Crop     string
}

// Level1Options returns the distinct trimmed facility values in first-seen
// order. Empty cells and the header label are skipped.
func Level1Options(rows []Row, header string) []string {
	header = strings.TrimSpace(header)
	seen := make(map[string]struct{})
	var out []string
	for _, r := range rows {
		v := strings.TrimSpace(r.Facility)
		if v == "" || v == header {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Level2Options returns the distinct trimmed sub-unit values of rows whose
// facility equals level1, in first-seen order. An empty sub-unit is an
// option so that rows without one stay reachable.
func Level2Options(rows []Row, level1 string) []string {
	level1 = strings.TrimSpace(level1)
	seen := make(map[string]struct{})
	var out []string
	for _, r := range rows {
		if strings.TrimSpace(r.Facility) != level1 {
			continue
		}
		v := strings.TrimSpace(r.SubUnit)
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Level3Options returns the crop cell of every row matching both parent
// selections, in row order. Values are neither trimmed nor deduplicated.
func Level3Options(rows []Row, level1, level2 string) []string {
	level1, level2 = strings.TrimSpace(level1), strings.TrimSpace(level2)
	var out []string
	for _, r := range rows {
		if strings.TrimSpace(r.Facility) == level1 && strings.TrimSpace(r.SubUnit) == level2 {
			out = append(out, r.Crop)
		}
	}
	return out
}

// FindRow returns the grid index of the first row whose trimmed triple
// equals the selection.
func FindRow(rows []Row, sel Selection) (int, bool) {
	l1 := strings.TrimSpace(sel.Level1)
	l2 := strings.TrimSpace(sel.Level2)
	l3 := strings.TrimSpace(sel.Level3)
	for _, r := range rows {
		if strings.TrimSpace(r.Facility) == l1 &&
			strings.TrimSpace(r.SubUnit) == l2 &&
			strings.TrimSpace(r.Crop) == l3 {
			return r.Index, true
		}
	}
	return 0, false
}
