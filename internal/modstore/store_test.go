package modstore

import (
	"encoding/json"
	"errors"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"

	"voice-sheet/internal/format"
	"voice-sheet/internal/kvstore"
)

func quietLog() *logrus.Entry {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(l)
}

func baseGrid() [][]string {
	return [][]string{
		{"מתקן", "יחידה", "גידול", "", ""},
		{"A", "X", "c1", "1", "2"},
		{"A", "Y", "c2", "3"},
		{"B", "X", "c3", "5", "6"},
	}
}

func newLoaded(t *testing.T, kv kvstore.Store, id SheetID, grid [][]string) *Store {
	t.Helper()
	s := New(kv, quietLog())
	if err := s.Load(id, grid, nil); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return s
}

func TestUpdateCellExample(t *testing.T) {
	grid := make([][]string, 6)
	for i := range grid {
		grid[i] = []string{"", "", ""}
	}
	grid[5][2] = "12"
	s := newLoaded(t, kvstore.NewMemory(), SheetID{FileID: "f"}, grid)

	if err := s.UpdateCell(5, 2, "15"); err != nil {
		t.Fatal(err)
	}
	if got := s.CurrentData()[5][2]; got != "15" {
		t.Fatalf("expected 15, got %q", got)
	}
	if n := s.ChangeCount(); n != 1 {
		t.Fatalf("expected 1 change, got %d", n)
	}

	if err := s.UpdateCell(5, 2, "12"); err != nil {
		t.Fatal(err)
	}
	if n := s.ChangeCount(); n != 0 {
		t.Fatalf("expected 0 changes after restoring original, got %d", n)
	}
	if _, ok := s.Record(5, 2); ok {
		t.Fatal("record should be removed when value returns to original")
	}
}

func TestUpdateCellRoundTripIsNoop(t *testing.T) {
	s := newLoaded(t, kvstore.NewMemory(), SheetID{FileID: "f"}, baseGrid())
	for row := 0; row < 6; row++ {
		for col := 0; col < 6; col++ {
			if err := s.UpdateCell(row, col, "v"); err != nil {
				t.Fatal(err)
			}
			if err := s.UpdateCell(row, col, s.OriginalValue(row, col)); err != nil {
				t.Fatal(err)
			}
			if _, ok := s.Record(row, col); ok {
				t.Fatalf("record left behind at %d,%d", row, col)
			}
		}
	}
	if diff := cmp.Diff(baseGrid(), s.CurrentData()); diff != "" {
		t.Fatalf("grid changed (-want +got):\n%s", diff)
	}
}

func TestUpdateCellOutOfRangeExtendsGrid(t *testing.T) {
	s := newLoaded(t, kvstore.NewMemory(), SheetID{FileID: "f"}, [][]string{{"a"}})
	if got := s.OriginalValue(3, 3); got != "" {
		t.Fatalf("expected empty original, got %q", got)
	}
	if err := s.UpdateCell(2, 1, "x"); err != nil {
		t.Fatal(err)
	}
	want := [][]string{{"a"}, {}, {"", "x"}}
	if diff := cmp.Diff(want, s.CurrentData()); diff != "" {
		t.Fatalf("unexpected grid (-want +got):\n%s", diff)
	}
}

func TestStyleKeepsRecordAlive(t *testing.T) {
	s := newLoaded(t, kvstore.NewMemory(), SheetID{FileID: "f"}, baseGrid())

	if err := s.SetCellStyleFormat(1, 3, format.StyleRecord{BackgroundColor: "#FFFF00"}); err != nil {
		t.Fatal(err)
	}
	if err := s.SetCellStyleFormat(1, 3, format.StyleRecord{FontWeight: format.WeightBold}); err != nil {
		t.Fatal(err)
	}
	rec, ok := s.Record(1, 3)
	if !ok {
		t.Fatal("style should create a record")
	}
	want := format.StyleRecord{BackgroundColor: "#FFFF00", FontWeight: format.WeightBold}
	if diff := cmp.Diff(&want, rec.Format); diff != "" {
		t.Fatalf("merged style mismatch (-want +got):\n%s", diff)
	}

	// Editing then restoring the value keeps the record because of the style.
	if err := s.UpdateCell(1, 3, "9"); err != nil {
		t.Fatal(err)
	}
	if err := s.UpdateCell(1, 3, "1"); err != nil {
		t.Fatal(err)
	}
	rec, ok = s.Record(1, 3)
	if !ok || rec.Format == nil || rec.ModifiedValue != "1" {
		t.Fatalf("expected styled record with original value, got %+v (ok=%v)", rec, ok)
	}

	if err := s.ClearCellStyle(1, 3); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.Record(1, 3); ok {
		t.Fatal("record should go away with its style when the value is original")
	}
}

func TestCellMergesBaseFormatting(t *testing.T) {
	s := New(kvstore.NewMemory(), quietLog())
	base := []format.CellStyle{{Row: 1, Col: 0, Format: format.StyleRecord{TextColor: "#000000", FontSize: 10}}}
	if err := s.Load(SheetID{FileID: "f"}, baseGrid(), base); err != nil {
		t.Fatal(err)
	}
	if err := s.SetCellStyleFormat(1, 0, format.StyleRecord{FontSize: 14}); err != nil {
		t.Fatal(err)
	}
	c := s.Cell(1, 0)
	if c.Format.TextColor != "#000000" || c.Format.FontSize != 14 {
		t.Fatalf("unexpected display format %+v", c.Format)
	}
	if c.Value() != "A" {
		t.Fatalf("expected display value A, got %q", c.Value())
	}
}

func TestAddThenRemoveRowRestoresShape(t *testing.T) {
	for i := 0; i <= len(baseGrid()); i++ {
		s := newLoaded(t, kvstore.NewMemory(), SheetID{FileID: "f"}, baseGrid())
		before := s.CurrentData()
		if err := s.AddRow(i); err != nil {
			t.Fatal(err)
		}
		if got := len(s.CurrentData()); got != len(before)+1 {
			t.Fatalf("AddRow(%d): expected %d rows, got %d", i, len(before)+1, got)
		}
		if err := s.RemoveRow(i); err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(before, s.CurrentData()); diff != "" {
			t.Fatalf("AddRow(%d)+RemoveRow(%d) changed grid (-want +got):\n%s", i, i, diff)
		}
		if s.ChangeCount() != 2 {
			t.Fatalf("expected 2 structural changes, got %d", s.ChangeCount())
		}
	}
}

func TestCurrentDataOrder(t *testing.T) {
	s := newLoaded(t, kvstore.NewMemory(), SheetID{FileID: "f"}, [][]string{
		{"a", "b", "c"},
		{"d", "e", "f"},
		{"g", "h", "i"},
	})
	// The edit is expressed in base coordinates even though a row is
	// inserted above it afterwards.
	must(t, s.UpdateCell(1, 1, "E"))
	must(t, s.AddRow(0))
	must(t, s.RemoveRow(3)) // "g h i" after the insertion
	must(t, s.AddColumn(1))
	must(t, s.RemoveColumn(3)) // "c" column after the insertion

	want := [][]string{
		{"", "", ""},
		{"a", "", "b"},
		{"d", "", "E"},
	}
	if diff := cmp.Diff(want, s.CurrentData()); diff != "" {
		t.Fatalf("unexpected grid (-want +got):\n%s", diff)
	}
	st := s.Structure()
	if st.RowCount != 3 || st.ColCount != 3 {
		t.Fatalf("unexpected counts %d x %d", st.RowCount, st.ColCount)
	}
	if s.ChangeCount() != 5 {
		t.Fatalf("expected 5 changes, got %d", s.ChangeCount())
	}
}

func TestExportProjectsStyles(t *testing.T) {
	s := newLoaded(t, kvstore.NewMemory(), SheetID{FileID: "f"}, [][]string{
		{"a", "b"},
		{"c", "d"},
	})
	bold := format.StyleRecord{FontWeight: format.WeightBold}
	must(t, s.SetCellStyleFormat(1, 1, bold))
	must(t, s.SetCellStyleFormat(0, 0, bold))
	must(t, s.AddRow(0))
	must(t, s.RemoveColumn(0))

	values, styles := s.Export()
	// The inserted row is sized to the final column count and then loses
	// its only cell to the column removal.
	wantValues := [][]string{{}, {"b"}, {"d"}}
	if diff := cmp.Diff(wantValues, values); diff != "" {
		t.Fatalf("values (-want +got):\n%s", diff)
	}
	wantStyles := []format.CellStyle{{Row: 2, Col: 0, Format: bold}}
	if diff := cmp.Diff(wantStyles, styles); diff != "" {
		t.Fatalf("styles (-want +got):\n%s", diff)
	}
}

func TestPersistAndReload(t *testing.T) {
	kv := kvstore.NewMemory()
	id := SheetID{FileID: "file.xlsx", SheetName: "s1"}
	s := newLoaded(t, kv, id, baseGrid())
	must(t, s.UpdateCell(1, 3, "7"))
	must(t, s.SetCellStyleFormat(2, 3, format.StyleRecord{TextAlign: format.AlignCenter}))
	must(t, s.AddColumn(5))

	raw, ok, _ := kv.Get("voicesheet:changes:file.xlsx/s1")
	if !ok {
		t.Fatal("changes not persisted")
	}
	var wire map[string]map[string]any
	if err := json.Unmarshal([]byte(raw), &wire); err != nil {
		t.Fatal(err)
	}
	if wire["1-3"]["modifiedValue"] != "7" || wire["1-3"]["originalValue"] != "1" {
		t.Fatalf("unexpected wire record %v", wire["1-3"])
	}

	reloaded := newLoaded(t, kv, id, baseGrid())
	if diff := cmp.Diff(s.Records(), reloaded.Records()); diff != "" {
		t.Fatalf("records differ after reload (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(s.CurrentData(), reloaded.CurrentData()); diff != "" {
		t.Fatalf("grid differs after reload (-want +got):\n%s", diff)
	}
	if reloaded.ChangeCount() != 3 {
		t.Fatalf("expected 3 changes after reload, got %d", reloaded.ChangeCount())
	}
}

func TestClearOnlyAffectsActiveSheet(t *testing.T) {
	kv := kvstore.NewMemory()
	one := SheetID{FileID: "f", SheetName: "one"}
	two := SheetID{FileID: "f", SheetName: "two"}

	s := newLoaded(t, kv, one, baseGrid())
	must(t, s.UpdateCell(1, 3, "x"))
	must(t, s.Load(two, baseGrid(), nil))
	if s.ChangeCount() != 0 {
		t.Fatal("switching sheets should start from an empty overlay")
	}
	must(t, s.UpdateCell(2, 3, "y"))
	must(t, s.Clear())
	if s.ChangeCount() != 0 {
		t.Fatal("Clear should empty the overlay")
	}
	if _, ok, _ := kv.Get("voicesheet:changes:f/two"); ok {
		t.Fatal("Clear should remove the durable entry of the active sheet")
	}

	must(t, s.Load(one, baseGrid(), nil))
	if s.DisplayValue(1, 3) != "x" {
		t.Fatal("other sheet's overlay should survive Clear")
	}
}

func TestMutationsRequireLoad(t *testing.T) {
	s := New(kvstore.NewMemory(), quietLog())
	if err := s.UpdateCell(0, 0, "x"); !errors.Is(err, ErrNoSheet) {
		t.Fatalf("expected ErrNoSheet, got %v", err)
	}
	if err := s.AddRow(0); !errors.Is(err, ErrNoSheet) {
		t.Fatalf("expected ErrNoSheet, got %v", err)
	}
}

type failingKV struct{ *kvstore.Memory }

func (failingKV) Set(string, string) error { return errors.New("disk full") }

func TestPersistFailureKeepsOverlay(t *testing.T) {
	s := New(failingKV{kvstore.NewMemory()}, quietLog())
	must(t, s.Load(SheetID{FileID: "f"}, baseGrid(), nil))
	if err := s.UpdateCell(1, 3, "x"); err == nil {
		t.Fatal("expected persist error")
	}
	if s.DisplayValue(1, 3) != "x" {
		t.Fatal("in-memory overlay should keep the edit when persisting fails")
	}
}

func TestProjectIndex(t *testing.T) {
	tests := []struct {
		idx            int
		added, removed []int
		want           int
		ok             bool
	}{
		{2, nil, nil, 2, true},
		{2, []int{0}, nil, 3, true},
		{2, []int{3}, nil, 2, true},
		{2, nil, []int{2}, 0, false},
		{4, nil, []int{1, 3}, 2, true},
		{1, []int{1}, []int{1}, 1, true},
	}
	for _, tt := range tests {
		got, ok := projectIndex(tt.idx, tt.added, tt.removed)
		if got != tt.want || ok != tt.ok {
			t.Errorf("projectIndex(%d, %v, %v) = %d, %v; want %d, %v",
				tt.idx, tt.added, tt.removed, got, ok, tt.want, tt.ok)
		}
	}
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

func TestJournalSurvivesClearAndReload(t *testing.T) {
	kv := kvstore.NewMemory()
	id := SheetID{FileID: "f", SheetName: "s"}
	s := newLoaded(t, kv, id, baseGrid())
	must(t, s.UpdateCell(1, 3, "9"))
	must(t, s.AddRow(2))
	must(t, s.Clear())

	reloaded := newLoaded(t, kv, id, baseGrid())
	var got []string
	for _, e := range reloaded.Journal() {
		got = append(got, e.Action+" "+e.Details)
	}
	want := []string{`EDIT_CELL 1-3 "1" -> "9"`, "INSERT_ROW index 2", "CLEAR "}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("journal mismatch (-want +got):\n%s", diff)
	}
}

func TestJournalIsCapped(t *testing.T) {
	s := newLoaded(t, nil, SheetID{FileID: "f"}, baseGrid())
	for i := 0; i < journalLimit+10; i++ {
		s.Note("NOTE", strconv.Itoa(i))
	}
	j := s.Journal()
	if len(j) != journalLimit {
		t.Fatalf("expected %d entries, got %d", journalLimit, len(j))
	}
	if j[0].Details != "10" {
		t.Fatalf("oldest entries should be dropped first, got %q", j[0].Details)
	}
}
