// Package dicom reads the DICOM metadata and pixel data needed to index, preview and sample
// series on disk.
package dicom

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// ErrMissingSeriesUID is returned when a file parses but carries no SeriesInstanceUID.
var ErrMissingSeriesUID = errors.New("missing SeriesInstanceUID")

// ParseError reports a file that could not be read as DICOM.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// IsParseError reports whether err is (or wraps) a ParseError.
func IsParseError(err error) bool {
	var e *ParseError
	return errors.As(err, &e)
}

// Metadata holds the header fields used to group files into series.
type Metadata struct {
	SeriesUID         string
	SeriesDescription string // empty when absent
	SeriesDate        string // raw DA value, empty when absent
	StudyDate         string // raw DA value, empty when absent
}

// Reader reads series metadata from DICOM headers. The zero value is ready to use.
type Reader struct{}

// ReadMetadata parses the header of path, skipping pixel data, and extracts the series fields.
// A file without a SeriesInstanceUID yields ErrMissingSeriesUID.
func (Reader) ReadMetadata(path string) (Metadata, error) {
	ds, err := parseHeaderTolerant(path)
	if err != nil {
		return Metadata{}, &ParseError{Path: path, Err: err}
	}

	md := Metadata{
		SeriesUID:         getStringValue(ds, tag.SeriesInstanceUID),
		SeriesDescription: getStringValue(ds, tag.SeriesDescription),
		SeriesDate:        getStringValue(ds, tag.SeriesDate),
		StudyDate:         getStringValue(ds, tag.StudyDate),
	}
	if md.SeriesUID == "" {
		return Metadata{}, fmt.Errorf("read %s: %w", path, ErrMissingSeriesUID)
	}
	return md, nil
}

// getStringValue returns the string value of t in ds, or "" when the element is absent.
// Multi-valued strings are joined with the DICOM value separator.
func getStringValue(ds dicom.Dataset, t tag.Tag) string {
	elem, err := ds.FindElementByTag(t)
	if err != nil || elem == nil || elem.Value == nil {
		return ""
	}
	if values, ok := elem.Value.GetValue().([]string); ok {
		return strings.TrimSpace(strings.TrimRight(strings.Join(values, `\`), "\x00"))
	}
	return strings.Trim(elem.Value.String(), " []")
}

// parseHeaderTolerant parses a DICOM file element-by-element without its pixel data,
// keeping every element read before the first error.
func parseHeaderTolerant(path string) (dicom.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return dicom.Dataset{}, err
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return dicom.Dataset{}, err
	}

	p, err := dicom.NewParser(f, info.Size(), nil, dicom.SkipPixelData())
	if err != nil {
		return dicom.Dataset{}, err
	}

	var elements []*dicom.Element
	for {
		elem, err := p.Next()
		if err != nil {
			break
		}
		elements = append(elements, elem)
	}

	if len(elements) == 0 {
		return dicom.Dataset{}, fmt.Errorf("no elements parsed")
	}

	return dicom.Dataset{Elements: elements}, nil
}
