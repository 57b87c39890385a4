package browser

import (
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mrsinham/dicomsift/cmd/dicomsift/browser/screens"
	"github.com/mrsinham/dicomsift/internal/browse"
	"github.com/mrsinham/dicomsift/internal/dicom"
	"github.com/mrsinham/dicomsift/internal/logging"
)

// drain feeds the messages produced by cmd back into b until no command is left.
func drain(t *testing.T, b *Browser, cmd tea.Cmd) {
	t.Helper()
	for i := 0; cmd != nil; i++ {
		if i > 1000 {
			t.Fatal("too many messages")
		}
		msg := cmd()
		if msg == nil {
			return
		}
		if batch, ok := msg.(tea.BatchMsg); ok {
			for _, c := range batch {
				drain(t, b, c)
			}
			return
		}
		_, cmd = b.Update(msg)
	}
}

func key(k tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: k} }

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func newTestBrowser(t *testing.T) (*Browser, string) {
	t.Helper()
	root := t.TempDir()
	_, err := dicom.GenerateSample(dicom.SampleOptions{
		OutputDir: root,
		Series: []dicom.SampleSeries{
			{UID: "1.1", Description: "Chest", Folder: "exam", Images: 3, SeriesDate: "20240115"},
			{UID: "1.2", Description: "Head", Folder: "exam", Files: []string{"Z1.dcm"}},
		},
		Size: 16,
	})
	if err != nil {
		t.Fatalf("GenerateSample failed: %v", err)
	}

	node, err := browse.NewRoot(root)
	if err != nil {
		t.Fatalf("NewRoot failed: %v", err)
	}
	return NewBrowser(node, dicom.Reader{}, logging.Discard()), root
}

// scanExam moves the cursor to the "exam" leaf and scans it.
func scanExam(t *testing.T, b *Browser) {
	t.Helper()
	b.Update(key(tea.KeyDown))
	_, cmd := b.Update(key(tea.KeyEnter))
	if b.Phase() != PhaseScanning {
		t.Fatalf("phase = %d, want scanning", b.Phase())
	}
	drain(t, b, cmd)
	if b.Phase() != PhaseSeries {
		t.Fatalf("phase = %d, want series", b.Phase())
	}
}

func TestBrowser_ScanLeaf(t *testing.T) {
	b, _ := newTestBrowser(t)
	scanExam(t, b)

	if b.table.Len() != 2 {
		t.Errorf("table has %d series, want 2", b.table.Len())
	}
	if got := len(b.seriesScreen.Visible()); got != 2 {
		t.Errorf("visible series = %d, want 2", got)
	}
	// The middle file of the first series is previewed.
	rec, _ := b.table.Get("1.1")
	if b.seriesScreen.PreviewPath() != rec.Files[1] {
		t.Errorf("preview path = %s, want %s", b.seriesScreen.PreviewPath(), rec.Files[1])
	}
}

func TestBrowser_CopyFlow(t *testing.T) {
	b, root := newTestBrowser(t)
	scanExam(t, b)

	b.Update(key(tea.KeySpace))
	_, cmd := b.Update(key(tea.KeyEnter))
	if b.Phase() != PhaseNaming {
		t.Fatalf("phase = %d, want naming", b.Phase())
	}
	if len(b.selection) != 1 || b.selection[0] != "1.1" {
		t.Fatalf("selection = %v, want [1.1]", b.selection)
	}
	_ = cmd

	dest := t.TempDir()
	values := screens.NamingValues{Naming: "prefixed", Prefix: "CT_", Destination: dest}
	b.session.Remember(values)
	_, cmd = b.startCopy(values)
	if b.Phase() != PhaseCopying {
		t.Fatalf("phase = %d, want copying", b.Phase())
	}
	drain(t, b, cmd)
	if b.Phase() != PhaseComplete {
		t.Fatalf("phase = %d, want complete", b.Phase())
	}

	rec, _ := b.table.Get("1.1")
	for _, src := range rec.Files {
		rel, _ := filepath.Rel(root, src)
		dst := filepath.Join(dest, filepath.Dir(rel), "CT_Chest", filepath.Base(rel))
		if _, err := os.Stat(dst); err != nil {
			t.Errorf("expected %s: %v", dst, err)
		}
	}

	// Back to the series list, the session prefills the next form.
	b.Update(key(tea.KeyEnter))
	if b.Phase() != PhaseSeries {
		t.Errorf("phase = %d, want series after completion", b.Phase())
	}
	next := b.Session().NamingValues(root)
	if next.Destination != dest || next.Prefix != "CT_" || next.Naming != "prefixed" {
		t.Errorf("session values = %+v", next)
	}
}

func TestBrowser_CopyIgnoresKeys(t *testing.T) {
	b, _ := newTestBrowser(t)
	scanExam(t, b)
	b.selection = []string{"1.1"}

	dest := t.TempDir()
	_, cmd := b.startCopy(screens.NamingValues{Naming: "original", Destination: dest})
	if b.Phase() != PhaseCopying {
		t.Fatalf("phase = %d, want copying", b.Phase())
	}

	for _, k := range []tea.KeyMsg{key(tea.KeyCtrlC), key(tea.KeyEsc), runes("q")} {
		if _, quit := b.Update(k); quit != nil {
			t.Errorf("%s returned a command during copy", k)
		}
	}
	if b.Phase() != PhaseCopying || b.cancelled {
		t.Fatalf("copy was interrupted: phase = %d, cancelled = %v", b.Phase(), b.cancelled)
	}

	drain(t, b, cmd)
	if b.Phase() != PhaseComplete {
		t.Errorf("phase = %d, want complete", b.Phase())
	}
	entries, err := os.ReadDir(filepath.Join(dest, "exam", "Chest"))
	if err != nil || len(entries) != 3 {
		t.Errorf("copied %d files (%v), want 3", len(entries), err)
	}
}

func TestBrowser_EmptyDestinationIsNoop(t *testing.T) {
	b, _ := newTestBrowser(t)
	scanExam(t, b)
	b.selection = []string{"1.1"}

	_, cmd := b.startCopy(screens.NamingValues{Naming: "original", Destination: "  "})
	if cmd != nil {
		t.Error("expected no command for an empty destination")
	}
	if b.Phase() != PhaseSeries {
		t.Errorf("phase = %d, want series", b.Phase())
	}
}

func TestBrowser_BackAndRescan(t *testing.T) {
	b, _ := newTestBrowser(t)
	scanExam(t, b)

	b.Update(runes("b"))
	if b.Phase() != PhaseTree {
		t.Fatalf("phase = %d, want tree", b.Phase())
	}

	_, cmd := b.Update(key(tea.KeyEnter))
	drain(t, b, cmd)
	if b.Phase() != PhaseSeries || b.table.Len() != 2 {
		t.Errorf("rescan: phase = %d, series = %d", b.Phase(), b.table.Len())
	}
}

func TestBrowser_ScanErrorShowsErrorScreen(t *testing.T) {
	b, root := newTestBrowser(t)
	if err := os.RemoveAll(filepath.Join(root, "exam")); err != nil {
		t.Fatal(err)
	}

	b.Update(key(tea.KeyDown))
	_, cmd := b.Update(key(tea.KeyEnter))
	drain(t, b, cmd)
	if b.Phase() != PhaseError {
		t.Fatalf("phase = %d, want error", b.Phase())
	}

	b.Update(key(tea.KeyEnter))
	if b.Phase() != PhaseTree {
		t.Errorf("phase = %d, want tree after error", b.Phase())
	}
}

func TestSession(t *testing.T) {
	var s Session
	if v := s.NamingValues("/data"); v.Destination != "/data" {
		t.Errorf("default destination = %s, want root", v.Destination)
	}

	s.Remember(screens.NamingValues{Naming: "custom", CustomName: "Brain", Destination: "/out"})
	s.Remember(screens.NamingValues{Naming: "custom", CustomName: "Brain", Destination: ""})
	v := s.NamingValues("/data")
	if v.Destination != "/out" || v.CustomName != "Brain" || v.Naming != "custom" {
		t.Errorf("values = %+v", v)
	}
}
