// Package preview turns the first frame of a DICOM file into a fixed-size 8-bit grayscale image.
package preview

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/mrsinham/dicomsift/internal/dicom"
)

// Size is the edge length of every preview image.
const Size = 256

const (
	// NoImageText is drawn for files without pixel data.
	NoImageText = "No image data"
	// FailedText is drawn when the file cannot be read.
	FailedText = "Preview failed"
)

// Normalize stretches the grid linearly so its minimum maps to 0 and its maximum to 255.
// A constant grid maps to 0.
func Normalize(g *dicom.PixelGrid) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, g.Cols, g.Rows))
	if len(g.Values) == 0 {
		return img
	}

	lo, hi := g.Values[0], g.Values[0]
	for _, v := range g.Values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	span := hi - lo

	for i, v := range g.Values {
		var y uint8
		if span > 0 {
			y = uint8((v - lo) * 255 / span)
		}
		img.Pix[i] = y
	}
	return img
}

// Resize scales src to a size×size square, ignoring aspect ratio.
func Resize(src image.Image, size int) *image.Gray {
	dst := image.NewGray(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// Placeholder returns a black Size×Size image with text centered in white.
func Placeholder(text string) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, Size, Size))
	face := basicfont.Face7x13

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Gray{Y: 255}),
		Face: face,
	}
	width := d.MeasureString(text).Ceil()
	x := max(0, (Size-width)/2)
	y := (Size + face.Ascent) / 2
	d.Dot = fixed.P(x, y)
	d.DrawString(text)
	return img
}

// Render returns the preview of path. It always returns an image: files without pixel data
// render as the NoImageText placeholder, unreadable files as FailedText with the read error.
func Render(path string) (*image.Gray, error) {
	grid, err := dicom.ReadPixels(path)
	if errors.Is(err, dicom.ErrNoPixelData) {
		return Placeholder(NoImageText), nil
	}
	if err != nil {
		return Placeholder(FailedText), fmt.Errorf("preview %s: %w", path, err)
	}
	if grid.Rows == 0 || grid.Cols == 0 {
		return Placeholder(NoImageText), nil
	}
	return Resize(Normalize(grid), Size), nil
}

// WritePNG encodes img as PNG.
func WritePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// SavePNG writes img to path, creating parent directories.
func SavePNG(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WritePNG(f, img); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// MiddleIndex returns the index of the file shown first for a series of n files.
func MiddleIndex(n int) int {
	return n / 2
}

// Step moves index by delta, clamped to [0, n-1].
func Step(index, delta, n int) int {
	if n <= 0 {
		return 0
	}
	return min(max(index+delta, 0), n-1)
}
