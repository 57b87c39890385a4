package dicom

import (
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGenerateSample_Layout(t *testing.T) {
	dir := t.TempDir()
	var calls int
	files, err := GenerateSample(SampleOptions{
		OutputDir: dir,
		Series: []SampleSeries{
			{Description: "Chest", Folder: "a", Files: []string{"f1.dcm", "f2.dcm"}},
			{Description: "Head", Folder: filepath.Join("b", "c"), Images: 3},
		},
		Seed:             1,
		Workers:          2,
		ProgressCallback: func(current, total int) { calls++ },
	})
	if err != nil {
		t.Fatalf("GenerateSample failed: %v", err)
	}

	if len(files) != 5 {
		t.Fatalf("got %d files, want 5", len(files))
	}
	if calls != 5 {
		t.Errorf("progress callback called %d times, want 5", calls)
	}

	want := []string{
		filepath.Join(dir, "a", "f1.dcm"),
		filepath.Join(dir, "a", "f2.dcm"),
		filepath.Join(dir, "b", "c", "IM000001.dcm"),
		filepath.Join(dir, "b", "c", "IM000002.dcm"),
		filepath.Join(dir, "b", "c", "IM000003.dcm"),
	}
	for i, f := range files {
		if f.Path != want[i] {
			t.Errorf("files[%d].Path = %s, want %s", i, f.Path, want[i])
		}
		if _, err := os.Stat(f.Path); err != nil {
			t.Errorf("file %s not written: %v", f.Path, err)
		}
	}

	if files[0].SeriesUID != files[1].SeriesUID {
		t.Error("files of one series should share a UID")
	}
	if files[0].SeriesUID == files[2].SeriesUID {
		t.Error("distinct series should get distinct UIDs")
	}
	if !strings.HasPrefix(files[0].SeriesUID, "2.25.") {
		t.Errorf("generated UID %q should use the 2.25 root", files[0].SeriesUID)
	}
	if files[4].InstanceNumber != 3 {
		t.Errorf("InstanceNumber = %d, want 3", files[4].InstanceNumber)
	}
}

func TestGenerateSample_Reproducible(t *testing.T) {
	opts := func(dir string) SampleOptions {
		return SampleOptions{
			OutputDir: dir,
			Series:    []SampleSeries{{Description: "T2", Images: 2}},
			Seed:      99,
		}
	}

	first, err := GenerateSample(opts(t.TempDir()))
	if err != nil {
		t.Fatalf("GenerateSample failed: %v", err)
	}
	second, err := GenerateSample(opts(t.TempDir()))
	if err != nil {
		t.Fatalf("GenerateSample failed: %v", err)
	}

	if first[0].SeriesUID != second[0].SeriesUID {
		t.Errorf("same seed produced different UIDs: %s vs %s", first[0].SeriesUID, second[0].SeriesUID)
	}
}

func TestGenerateSample_NoSeries(t *testing.T) {
	if _, err := GenerateSample(SampleOptions{OutputDir: t.TempDir()}); err == nil {
		t.Error("expected error for empty series list")
	}
}

func TestSamplePatient(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7))
	for i := 0; i < 50; i++ {
		name, sex := samplePatient(rng)
		if sex != "M" && sex != "F" {
			t.Fatalf("sex = %q, want M or F", sex)
		}
		parts := strings.Split(name, "^")
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			t.Fatalf("name %q is not LAST^FIRST", name)
		}
	}

	a, _ := samplePatient(rand.New(rand.NewPCG(1, 1)))
	b, _ := samplePatient(rand.New(rand.NewPCG(1, 1)))
	if a != b {
		t.Errorf("same seed gave %q and %q", a, b)
	}
}
