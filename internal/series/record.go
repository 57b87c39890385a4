// Package series groups DICOM files into acquisition series and filters the result.
package series

import "fmt"

const (
	// NoDescription is used when a series carries no SeriesDescription.
	NoDescription = "No Description"
	// UnknownDate is shown when neither SeriesDate nor StudyDate is an 8-digit value.
	UnknownDate = "Unknown date"
)

// Record is one series discovered during a scan. Description, Folder and Date come from the
// first file seen for the series.
type Record struct {
	UID         string
	Description string
	Files       []string // absolute paths, in discovery order
	Folder      string   // containing folder of the first file, relative to the scan root
	Date        string   // YYYY-MM-DD or UnknownDate
}

// Label is the text shown for a record and matched by Filter.
func Label(r *Record) string {
	return fmt.Sprintf("[%s] %d images %s (%s)", r.Description, len(r.Files), r.Date, r.Folder)
}

// FormatDate turns a DICOM DA value (YYYYMMDD) into YYYY-MM-DD.
func FormatDate(raw string) string {
	if len(raw) != 8 {
		return UnknownDate
	}
	return raw[:4] + "-" + raw[4:6] + "-" + raw[6:]
}

// Table is an insertion-ordered set of records keyed by series UID.
type Table struct {
	order   []string
	records map[string]*Record
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{records: make(map[string]*Record)}
}

// Len returns the number of series.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.order)
}

// Get returns the record for uid.
func (t *Table) Get(uid string) (*Record, bool) {
	if t == nil {
		return nil, false
	}
	r, ok := t.records[uid]
	return r, ok
}

// UIDs returns series UIDs in first-sighting order.
func (t *Table) UIDs() []string {
	if t == nil {
		return nil
	}
	return append([]string(nil), t.order...)
}

// Records returns records in first-sighting order.
func (t *Table) Records() []*Record {
	if t == nil {
		return nil
	}
	out := make([]*Record, 0, len(t.order))
	for _, uid := range t.order {
		out = append(out, t.records[uid])
	}
	return out
}

// add appends path to the record for uid, creating the record from newRecord on first sighting.
func (t *Table) add(uid, path string, newRecord func() *Record) {
	if r, ok := t.records[uid]; ok {
		r.Files = append(r.Files, path)
		return
	}
	r := newRecord()
	r.UID = uid
	r.Files = []string{path}
	t.records[uid] = r
	t.order = append(t.order, uid)
}
