package series

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/mrsinham/dicomsift/internal/dicom"
)

// blockingReader waits on release before reading each file.
type blockingReader struct {
	fakeReader
	release chan struct{}
}

func (r blockingReader) ReadMetadata(path string) (dicom.Metadata, error) {
	<-r.release
	return r.fakeReader.ReadMetadata(path)
}

func TestScanner_Messages(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "a/1.dcm", "a/2.dcm", "b/1.dcm")
	reader := fakeReader{root: root, files: map[string]dicom.Metadata{
		"a/1.dcm": {SeriesUID: "S1"},
		"a/2.dcm": {SeriesUID: "S1"},
		"b/1.dcm": {SeriesUID: "S2"},
	}}

	s := NewScanner(reader)
	if s.State() != StateIdle {
		t.Fatalf("initial state = %s, want idle", s.State())
	}

	ch, err := s.Start(root, "")
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	var started, progress, done int
	var final DoneMsg
	for msg := range ch {
		switch m := msg.(type) {
		case StartedMsg:
			started++
			if m.Total != 3 {
				t.Errorf("StartedMsg.Total = %d, want 3", m.Total)
			}
		case ProgressMsg:
			progress++
		case DoneMsg:
			done++
			final = m
		}
	}

	if started != 1 || progress != 3 || done != 1 {
		t.Errorf("got started=%d progress=%d done=%d, want 1/3/1", started, progress, done)
	}
	if final.Err != nil {
		t.Fatalf("scan failed: %v", final.Err)
	}
	if final.Table.Len() != 2 {
		t.Errorf("table has %d records, want 2", final.Table.Len())
	}
	if s.State() != StateScanned {
		t.Errorf("state = %s, want scanned", s.State())
	}
}

func TestScanner_RejectsConcurrentScan(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "1.dcm")
	reader := blockingReader{
		fakeReader: fakeReader{root: root, files: map[string]dicom.Metadata{"1.dcm": {SeriesUID: "S1"}}},
		release:    make(chan struct{}),
	}

	s := NewScanner(reader)
	ch, err := s.Start(root, "")
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if s.State() != StateScanning {
		t.Errorf("state = %s, want scanning", s.State())
	}

	if _, err := s.Start(root, ""); !errors.Is(err, ErrScanInProgress) {
		t.Errorf("second Start: expected ErrScanInProgress, got %v", err)
	}

	close(reader.release)
	table, err := Wait(ch, nil)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if table.Len() != 1 {
		t.Errorf("table has %d records, want 1", table.Len())
	}

	// The scanner is free again once the scan finished.
	ch, err = s.Start(root, "")
	if err != nil {
		t.Fatalf("Start after completion failed: %v", err)
	}
	if _, err := Wait(ch, nil); err != nil {
		t.Errorf("second scan failed: %v", err)
	}
}

func TestScanner_Error(t *testing.T) {
	root := t.TempDir()
	s := NewScanner(fakeReader{root: root})

	ch, err := s.Start(filepath.Join(root, "missing"), "")
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if _, err := Wait(ch, nil); err == nil {
		t.Error("expected error for missing folder")
	}
	if s.State() != StateIdle {
		t.Errorf("state = %s, want idle after failure", s.State())
	}
}

func TestScanner_BusyUntilDoneDelivered(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "1.dcm")
	reader := fakeReader{root: root, files: map[string]dicom.Metadata{"1.dcm": {SeriesUID: "S1"}}}

	s := NewScanner(reader)
	ch, err := s.Start(root, "")
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	var done bool
	for msg := range ch {
		if _, ok := msg.(DoneMsg); ok {
			done = true
			continue
		}
		// DoneMsg not received yet: the scan still counts as in flight.
		if _, err := s.Start(root, ""); !errors.Is(err, ErrScanInProgress) {
			t.Fatalf("Start before DoneMsg: expected ErrScanInProgress, got %v", err)
		}
	}
	if !done {
		t.Fatal("no DoneMsg received")
	}

	ch, err = s.Start(root, "")
	if err != nil {
		t.Fatalf("Start after the channel closed failed: %v", err)
	}
	if _, err := Wait(ch, nil); err != nil {
		t.Errorf("second scan failed: %v", err)
	}
}
