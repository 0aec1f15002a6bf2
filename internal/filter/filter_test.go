package filter

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"voice-sheet/internal/cursor"
)

func grid() [][]string {
	return [][]string{
		{"מתקן", "יחידה", "גידול", ""},
		{"A", "X", "c1"},
		{"A", "Y", "c2"},
		{"B", "X", "c3"},
	}
}

var cols = Columns{Facility: 0, SubUnit: 1, Crop: 2}

func bounds(t *testing.T, g [][]string) cursor.Bounds {
	t.Helper()
	b, err := cursor.DetectBounds(g)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestSelectionPipeline(t *testing.T) {
	g := grid()
	idx, initial := Build(g, cols, bounds(t, g))

	if diff := cmp.Diff([]string{"A", "B"}, idx.Level1()); diff != "" {
		t.Fatalf("level1 mismatch (-want +got):\n%s", diff)
	}
	if initial.Selection.Level1 != "A" || initial.Selection.Level2 != "X" {
		t.Fatalf("unexpected initial selection %+v", initial.Selection)
	}
	if initial.Jumped {
		t.Fatal("initial build must not jump")
	}

	c := idx.SelectLevel1("A")
	if diff := cmp.Diff([]string{"X", "Y"}, c.Level2); diff != "" {
		t.Fatalf("level2 mismatch (-want +got):\n%s", diff)
	}

	c = idx.SelectLevel2("Y")
	if diff := cmp.Diff([]string{"c2"}, c.Level3); diff != "" {
		t.Fatalf("level3 mismatch (-want +got):\n%s", diff)
	}

	c = idx.SelectLevel3("c2")
	if !c.Jumped || c.JumpRow != 2 {
		t.Fatalf("expected jump to row 2, got %+v", c)
	}
}

func TestLevel2OptionsCoOccur(t *testing.T) {
	g := [][]string{
		{"f", "s", "c"},
		{"A", "X", "1"},
		{"B", "Z", "2"},
		{" A ", "Y ", "3"},
		{"A", "X", "4"},
		{"C", "Y", "5"},
		{"A", "", "6"},
	}
	idx, _ := Build(g, cols, bounds(t, g))
	for _, l1 := range idx.Level1() {
		c := idx.SelectLevel1(l1)
		for _, l2 := range c.Level2 {
			found := false
			for _, r := range idx.Rows() {
				if strings.TrimSpace(r.Facility) == l1 && strings.TrimSpace(r.SubUnit) == l2 {
					found = true
				}
			}
			if !found {
				t.Fatalf("level2 option %q does not co-occur with %q", l2, l1)
			}
		}
	}
	if diff := cmp.Diff([]string{"X", "Y", ""}, idx.SelectLevel1("A").Level2); diff != "" {
		t.Fatalf("level2 mismatch (-want +got):\n%s", diff)
	}
}

func TestEmptySubUnitReachable(t *testing.T) {
	g := [][]string{
		{"f", "s", "c"},
		{"A", "Y", "c2"},
		{"A", " ", "c1"},
	}
	idx, _ := Build(g, cols, bounds(t, g))
	c := idx.SelectLevel1("A")
	if diff := cmp.Diff([]string{"Y", ""}, c.Level2); diff != "" {
		t.Fatalf("level2 mismatch (-want +got):\n%s", diff)
	}
	if c = idx.SelectLevel2(""); len(c.Level3) != 1 || c.Level3[0] != "c1" {
		t.Fatalf("level3 for empty sub-unit = %v", c.Level3)
	}
	if c = idx.SelectLevel3("c1"); !c.Jumped || c.JumpRow != 2 {
		t.Fatalf("expected jump to row 2, got %+v", c)
	}
}

func TestLevel1SkipsHeaderAndEmpty(t *testing.T) {
	rows := []Row{
		{Facility: "מתקן"},
		{Facility: " "},
		{Facility: "B "},
		{Facility: "A"},
		{Facility: "B"},
	}
	if diff := cmp.Diff([]string{"B", "A"}, Level1Options(rows, "מתקן")); diff != "" {
		t.Fatalf("level1 mismatch (-want +got):\n%s", diff)
	}
}

func TestLevel3KeepsDuplicates(t *testing.T) {
	rows := []Row{
		{Index: 1, Facility: "A", SubUnit: "X", Crop: " wheat"},
		{Index: 2, Facility: "A", SubUnit: "X", Crop: "wheat"},
		{Index: 3, Facility: "A", SubUnit: "Y", Crop: "corn"},
		{Index: 4, Facility: "A", SubUnit: "X", Crop: "wheat"},
	}
	got := Level3Options(rows, "A", "X")
	if diff := cmp.Diff([]string{" wheat", "wheat", "wheat"}, got); diff != "" {
		t.Fatalf("level3 mismatch (-want +got):\n%s", diff)
	}
	row, ok := FindRow(rows, Selection{Level1: "A", Level2: "X", Level3: "wheat"})
	if !ok || row != 1 {
		t.Fatalf("expected first matching row 1, got %d %v", row, ok)
	}
}

func TestReselectLevel2Cascades(t *testing.T) {
	g := grid()
	idx, _ := Build(g, cols, bounds(t, g))

	c := idx.SelectLevel2("X")
	if !c.Jumped || c.JumpRow != 1 {
		t.Fatalf("re-selecting level2 should cascade to row 1, got %+v", c)
	}
	if c.Selection.Level3 != "c1" {
		t.Fatalf("expected level3 c1, got %q", c.Selection.Level3)
	}

	c = idx.SelectLevel2("Y")
	if c.Jumped {
		t.Fatal("a new level2 value must not cascade")
	}
}

func TestNoMatchLeavesCursor(t *testing.T) {
	g := grid()
	idx, _ := Build(g, cols, bounds(t, g))
	c := idx.SelectLevel3("c3")
	if c.Jumped || !c.NoMatch {
		t.Fatalf("expected no match for (A, X, c3), got %+v", c)
	}
}

func TestPublishedOptionsAreNotShared(t *testing.T) {
	g := grid()
	idx, _ := Build(g, cols, bounds(t, g))
	l2 := idx.Level2()
	l2[0] = "mutated"
	c := idx.SelectLevel1("A")
	c.Level2[1] = "mutated"
	if diff := cmp.Diff([]string{"X", "Y"}, idx.Level2()); diff != "" {
		t.Fatalf("index state was mutated through a published slice:\n%s", diff)
	}
}
