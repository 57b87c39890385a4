package series

import (
	"reflect"
	"testing"
)

func buildTable(records ...*Record) *Table {
	t := NewTable()
	for _, r := range records {
		rec := *r
		files := rec.Files
		t.add(rec.UID, files[0], func() *Record {
			copied := rec
			return &copied
		})
		for _, f := range files[1:] {
			t.add(rec.UID, f, nil)
		}
	}
	return t
}

func sampleTable() *Table {
	return buildTable(
		&Record{UID: "S1", Description: "Chest CT", Files: []string{"/d/a/1", "/d/a/2"}, Folder: "a", Date: "2023-01-15"},
		&Record{UID: "S2", Description: "Head MR", Files: []string{"/d/b/1"}, Folder: "b", Date: UnknownDate},
		&Record{UID: "S3", Description: "chest x-ray", Files: []string{"/d/c/1"}, Folder: "c", Date: "2021-06-30"},
	)
}

func TestLabel(t *testing.T) {
	table := sampleTable()
	rec, _ := table.Get("S1")
	want := "[Chest CT] 2 images 2023-01-15 (a)"
	if got := Label(rec); got != want {
		t.Errorf("Label = %q, want %q", got, want)
	}
}

func TestFilter(t *testing.T) {
	table := sampleTable()

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"empty query returns all", "", []string{"S1", "S2", "S3"}},
		{"case insensitive", "CHEST", []string{"S1", "S3"}},
		{"substring of description", "ead m", []string{"S2"}},
		{"matches date", "2021-06", []string{"S3"}},
		{"matches unknown date", "unknown", []string{"S2"}},
		{"matches image count", "2 images", []string{"S1"}},
		{"matches folder", "(b)", []string{"S2"}},
		{"no match", "spine", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(table, tt.query)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Filter(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestFilter_NilTable(t *testing.T) {
	if got := Filter(nil, ""); len(got) != 0 {
		t.Errorf("Filter(nil) = %v, want empty", got)
	}
}

func TestTable_Order(t *testing.T) {
	table := sampleTable()
	if got := table.UIDs(); !reflect.DeepEqual(got, []string{"S1", "S2", "S3"}) {
		t.Errorf("UIDs = %v", got)
	}

	// UIDs returns a copy.
	uids := table.UIDs()
	uids[0] = "changed"
	if table.UIDs()[0] != "S1" {
		t.Error("UIDs should not expose internal order")
	}
}
