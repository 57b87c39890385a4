package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestNew_Format(t *testing.T) {
	var buf bytes.Buffer
	logger, closeFn, err := New(Options{W: &buf, RunID: "run-1"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer closeFn()

	logger.With("root", "/data").Info("scan finished", "series", 3)

	fields := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\t")
	if len(fields) != 6 {
		t.Fatalf("got %d fields: %q", len(fields), buf.String())
	}
	if fields[1] != "INFO" || fields[2] != "run-1" || fields[3] != "scan finished" {
		t.Errorf("unexpected fields: %q", fields)
	}
	if fields[4] != "root=/data" || fields[5] != "series=3" {
		t.Errorf("unexpected attrs: %q", fields[4:])
	}
}

func TestNew_Levels(t *testing.T) {
	var quiet, verbose bytes.Buffer

	l, _, _ := New(Options{W: &quiet})
	l.Debug("hidden")
	if quiet.Len() != 0 {
		t.Errorf("debug record written without Verbose: %q", quiet.String())
	}

	l, _, _ = New(Options{W: &verbose, Verbose: true})
	l.Debug("shown")
	if !strings.Contains(verbose.String(), "shown") {
		t.Errorf("debug record missing with Verbose: %q", verbose.String())
	}
}

func TestNew_DefaultRunIDIsUUID(t *testing.T) {
	var buf bytes.Buffer
	l, _, _ := New(Options{W: &buf})
	l.Info("x")

	fields := strings.Split(buf.String(), "\t")
	if _, err := uuid.Parse(fields[2]); err != nil {
		t.Errorf("run ID %q is not a UUID: %v", fields[2], err)
	}
}

func TestNew_LogFile(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "dicomsift.log")

	l, closeFn, err := New(Options{W: &buf, LogFile: path})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	l.Warn("copy failed", "file", "a.dcm")
	if err := closeFn(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "copy failed") || !strings.Contains(buf.String(), "copy failed") {
		t.Errorf("record missing: file=%q writer=%q", data, buf.String())
	}
}
