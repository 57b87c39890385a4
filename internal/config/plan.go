// Package config reads and writes copy plans. A plan stores the arguments of one copy so it
// can be replayed; the format follows the file extension (.yaml, .yml or .toml).
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/mrsinham/dicomsift/internal/copier"
)

// ErrUnsupportedFormat is returned for plan files that are neither YAML nor TOML.
var ErrUnsupportedFormat = errors.New("unsupported plan format (use .yaml, .yml or .toml)")

// Plan is a saved copy request. Series are selected by explicit UIDs, by Query, or with All.
type Plan struct {
	Root        string   `yaml:"root" toml:"root"`
	Leaf        string   `yaml:"leaf,omitempty" toml:"leaf,omitempty"`
	Destination string   `yaml:"destination" toml:"destination"`
	Naming      string   `yaml:"naming" toml:"naming"`
	CustomName  string   `yaml:"custom_name,omitempty" toml:"custom_name,omitempty"`
	Prefix      string   `yaml:"prefix,omitempty" toml:"prefix,omitempty"`
	Series      []string `yaml:"series,omitempty" toml:"series,omitempty"`
	Query       string   `yaml:"query,omitempty" toml:"query,omitempty"`
	All         bool     `yaml:"all,omitempty" toml:"all,omitempty"`
	Workers     int      `yaml:"workers,omitempty" toml:"workers,omitempty"`
}

// Format is a plan file encoding.
type Format int

const (
	FormatYAML Format = iota
	FormatTOML
)

// FormatFor picks the format from the extension of path.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return 0, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}
}

// Decode reads a plan in format f.
func Decode(r io.Reader, f Format) (*Plan, error) {
	var p Plan
	switch f {
	case FormatTOML:
		if _, err := toml.NewDecoder(r).Decode(&p); err != nil {
			return nil, fmt.Errorf("decode toml plan: %w", err)
		}
	default:
		if err := yaml.NewDecoder(r).Decode(&p); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("decode yaml plan: %w", err)
		}
	}
	return &p, nil
}

// Encode writes p in format f.
func Encode(w io.Writer, p *Plan, f Format) error {
	switch f {
	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(p); err != nil {
			return fmt.Errorf("encode toml plan: %w", err)
		}
	default:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(p); err != nil {
			return fmt.Errorf("encode yaml plan: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("encode yaml plan: %w", err)
		}
	}
	return nil
}

// Load reads the plan at path.
func Load(path string) (*Plan, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan: %w", err)
	}
	p, err := Decode(bytes.NewReader(data), format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Save writes p to path, creating parent directories.
func Save(path string, p *Plan) error {
	format, err := FormatFor(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := Encode(&buf, p, format); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create plan directory: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write plan: %w", err)
	}
	return nil
}

// Request converts the plan into a copy request for the given series.
func (p *Plan) Request(uids []string) (copier.Request, error) {
	policy, err := copier.ParsePolicy(p.Naming)
	if err != nil {
		return copier.Request{}, err
	}
	return copier.Request{
		Series:      uids,
		Policy:      policy,
		CustomName:  p.CustomName,
		Prefix:      p.Prefix,
		SourceRoot:  p.Root,
		Destination: p.Destination,
		Workers:     p.Workers,
	}, nil
}

// Merge fills the zero fields of p from other. Explicit values in p win.
func (p *Plan) Merge(other *Plan) {
	if other == nil {
		return
	}
	if p.Root == "" {
		p.Root = other.Root
	}
	if p.Leaf == "" {
		p.Leaf = other.Leaf
	}
	if p.Destination == "" {
		p.Destination = other.Destination
	}
	if p.Naming == "" {
		p.Naming = other.Naming
	}
	if p.CustomName == "" {
		p.CustomName = other.CustomName
	}
	if p.Prefix == "" {
		p.Prefix = other.Prefix
	}
	if len(p.Series) == 0 && p.Query == "" && !p.All {
		p.Series = other.Series
		p.Query = other.Query
		p.All = other.All
	}
	if p.Workers == 0 {
		p.Workers = other.Workers
	}
}
