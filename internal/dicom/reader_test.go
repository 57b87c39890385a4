package dicom

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestReadMetadata_SampleFile(t *testing.T) {
	dir := t.TempDir()
	files, err := GenerateSample(SampleOptions{
		OutputDir: dir,
		Series: []SampleSeries{
			{UID: "1.2.3.4", Description: "T1 AXIAL", SeriesDate: "20230115", StudyDate: "20230101", Folder: "a", Images: 1},
		},
		Seed: 42,
	})
	if err != nil {
		t.Fatalf("GenerateSample failed: %v", err)
	}

	md, err := Reader{}.ReadMetadata(files[0].Path)
	if err != nil {
		t.Fatalf("ReadMetadata failed: %v", err)
	}

	if md.SeriesUID != "1.2.3.4" {
		t.Errorf("SeriesUID = %q, want %q", md.SeriesUID, "1.2.3.4")
	}
	if md.SeriesDescription != "T1 AXIAL" {
		t.Errorf("SeriesDescription = %q, want %q", md.SeriesDescription, "T1 AXIAL")
	}
	if md.SeriesDate != "20230115" {
		t.Errorf("SeriesDate = %q, want %q", md.SeriesDate, "20230115")
	}
	if md.StudyDate != "20230101" {
		t.Errorf("StudyDate = %q, want %q", md.StudyDate, "20230101")
	}
}

func TestReadMetadata_OptionalFieldsAbsent(t *testing.T) {
	dir := t.TempDir()
	files, err := GenerateSample(SampleOptions{
		OutputDir: dir,
		Series:    []SampleSeries{{UID: "9.9", Images: 1, OmitPixelData: true}},
	})
	if err != nil {
		t.Fatalf("GenerateSample failed: %v", err)
	}

	md, err := Reader{}.ReadMetadata(files[0].Path)
	if err != nil {
		t.Fatalf("ReadMetadata failed: %v", err)
	}
	if md.SeriesDescription != "" || md.SeriesDate != "" || md.StudyDate != "" {
		t.Errorf("expected empty optional fields, got %+v", md)
	}
}

func TestReadMetadata_MissingSeriesUID(t *testing.T) {
	dir := t.TempDir()
	files, err := GenerateSample(SampleOptions{
		OutputDir: dir,
		Series:    []SampleSeries{{Description: "No UID", Images: 1, OmitSeriesUID: true}},
	})
	if err != nil {
		t.Fatalf("GenerateSample failed: %v", err)
	}

	_, err = Reader{}.ReadMetadata(files[0].Path)
	if !errors.Is(err, ErrMissingSeriesUID) {
		t.Errorf("expected ErrMissingSeriesUID, got %v", err)
	}
}

func TestReadMetadata_NotDICOM(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
	}{
		{"empty", nil},
		{"text", []byte("this is definitely not a DICOM file")},
		{"preamble_without_magic", make([]byte, 256)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "file.dcm")
			if err := os.WriteFile(path, tt.content, 0644); err != nil {
				t.Fatalf("write file: %v", err)
			}

			_, err := Reader{}.ReadMetadata(path)
			if !IsParseError(err) {
				t.Errorf("expected ParseError, got %v", err)
			}
		})
	}
}

func TestReadMetadata_MissingFile(t *testing.T) {
	_, err := Reader{}.ReadMetadata(filepath.Join(t.TempDir(), "nope.dcm"))
	if !IsParseError(err) {
		t.Errorf("expected ParseError, got %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected wrapped os.ErrNotExist, got %v", err)
	}
}
