package dicom

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/frame"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// ErrNoPixelData is returned by ReadPixels for files without a PixelData element.
var ErrNoPixelData = errors.New("no pixel data")

// PixelGrid is a single-sample 2-D grid of stored pixel values, row-major.
type PixelGrid struct {
	Rows   int
	Cols   int
	Values []int
}

// At returns the value at column x, row y.
func (g *PixelGrid) At(x, y int) int {
	return g.Values[y*g.Cols+x]
}

// ReadPixels fully parses path and returns its first frame. Multi-sample pixels keep their
// first sample only.
func ReadPixels(path string) (*PixelGrid, error) {
	ds, err := dicom.ParseFile(path, nil)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	elem, err := ds.FindElementByTag(tag.PixelData)
	if err != nil || elem == nil {
		return nil, ErrNoPixelData
	}
	info, ok := elem.Value.GetValue().(dicom.PixelDataInfo)
	if !ok || len(info.Frames) == 0 || info.Frames[0] == nil {
		return nil, ErrNoPixelData
	}

	fr := info.Frames[0]
	if !fr.Encapsulated && fr.NativeData != nil {
		switch nf := fr.NativeData.(type) {
		case *frame.NativeFrame[uint8]:
			return gridFromNative(nf)
		case *frame.NativeFrame[uint16]:
			return gridFromNative(nf)
		case *frame.NativeFrame[uint32]:
			return gridFromNative(nf)
		case *frame.NativeFrame[int8]:
			return gridFromNative(nf)
		case *frame.NativeFrame[int16]:
			return gridFromNative(nf)
		case *frame.NativeFrame[int32]:
			return gridFromNative(nf)
		}
	}

	img, err := fr.GetImage()
	if err != nil {
		return nil, fmt.Errorf("decode frame of %s: %w", path, err)
	}
	return gridFromImage(img), nil
}

func gridFromNative[I uint8 | uint16 | uint32 | int8 | int16 | int32](nf *frame.NativeFrame[I]) (*PixelGrid, error) {
	rows, cols := nf.Rows(), nf.Cols()
	spp := nf.SamplesPerPixel()
	if spp < 1 {
		spp = 1
	}
	if rows <= 0 || cols <= 0 || len(nf.RawData) < rows*cols*spp {
		return nil, fmt.Errorf("frame %dx%d has %d samples", cols, rows, len(nf.RawData))
	}

	g := &PixelGrid{Rows: rows, Cols: cols, Values: make([]int, rows*cols)}
	for i := range g.Values {
		g.Values[i] = int(nf.RawData[i*spp])
	}
	return g, nil
}

// gridFromImage converts a decoded (typically encapsulated) frame to 16-bit gray values.
func gridFromImage(img image.Image) *PixelGrid {
	b := img.Bounds()
	g := &PixelGrid{Rows: b.Dy(), Cols: b.Dx(), Values: make([]int, b.Dx()*b.Dy())}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			gray := color.Gray16Model.Convert(img.At(x, y)).(color.Gray16)
			g.Values[(y-b.Min.Y)*g.Cols+(x-b.Min.X)] = int(gray.Y)
		}
	}
	return g
}
