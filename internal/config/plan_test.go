package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/mrsinham/dicomsift/internal/copier"
)

func samplePlan() *Plan {
	return &Plan{
		Root:        "/data",
		Leaf:        "/data/a",
		Destination: "/out",
		Naming:      "prefixed",
		Prefix:      "CT_",
		Series:      []string{"1.2.3", "1.2.4"},
		Workers:     4,
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	for _, ext := range []string{".yaml", ".yml", ".toml"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", "plan"+ext)
			want := samplePlan()

			if err := Save(path, want); err != nil {
				t.Fatalf("Save failed: %v", err)
			}
			got, err := Load(path)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if !reflect.DeepEqual(got, want) {
				t.Errorf("round trip mismatch:\n got  %+v\n want %+v", got, want)
			}
		})
	}
}

func TestLoad_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.yaml")
	content := `
root: /data
destination: /backup
naming: custom
custom_name: Brain
query: t1
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if p.Root != "/data" || p.Destination != "/backup" || p.CustomName != "Brain" || p.Query != "t1" {
		t.Errorf("unexpected plan: %+v", p)
	}
}

func TestLoad_TOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.toml")
	content := `root = "/data"
destination = "/backup"
naming = "prefix"
prefix = "MR_"
all = true
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !p.All || p.Prefix != "MR_" {
		t.Errorf("unexpected plan: %+v", p)
	}

	req, err := p.Request([]string{"S1"})
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if req.Policy != copier.PolicyPrefixed || req.SourceRoot != "/data" || req.Series[0] != "S1" {
		t.Errorf("unexpected request: %+v", req)
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	if _, err := Load(filepath.Join(dir, "plan.json")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for a missing file")
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("root: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(bad); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestPlan_RequestInvalidNaming(t *testing.T) {
	p := &Plan{Naming: "bogus"}
	if _, err := p.Request(nil); err == nil {
		t.Error("expected error for an invalid naming policy")
	}
}

func TestPlan_Merge(t *testing.T) {
	p := &Plan{Destination: "/cli-dest", Query: "chest"}
	p.Merge(samplePlan())

	if p.Destination != "/cli-dest" {
		t.Errorf("Destination = %s, explicit value should win", p.Destination)
	}
	if p.Root != "/data" || p.Prefix != "CT_" || p.Workers != 4 {
		t.Errorf("zero fields not filled: %+v", p)
	}
	if p.Series != nil {
		t.Errorf("Series = %v, selection should stay the explicit query", p.Series)
	}
}
