package preview

import (
	"image"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/image/draw"
)

// Terminal renders img as cols×cols pixels using upper half blocks, two pixel rows per line.
func Terminal(img image.Image, cols int) string {
	if cols < 1 {
		return ""
	}
	rows := cols
	if rows%2 == 1 {
		rows++
	}

	small := image.NewGray(image.Rect(0, 0, cols, rows))
	draw.ApproxBiLinear.Scale(small, small.Bounds(), img, img.Bounds(), draw.Src, nil)

	var sb strings.Builder
	for y := 0; y < rows; y += 2 {
		for x := 0; x < cols; x++ {
			top := small.GrayAt(x, y).Y
			bottom := small.GrayAt(x, y+1).Y
			sb.WriteString(lipgloss.NewStyle().
				Foreground(grayColor(top)).
				Background(grayColor(bottom)).
				Render("▀"))
		}
		if y+2 < rows {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func grayColor(y uint8) lipgloss.Color {
	const hex = "0123456789abcdef"
	h := string([]byte{hex[y>>4], hex[y&0x0f]})
	return lipgloss.Color("#" + h + h + h)
}
