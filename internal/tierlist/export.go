package tierlist

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	exportRowHeight  = 48
	exportLabelWidth = 96
	exportWidth      = 840
	exportPadding    = 8
)

// named CSS tokens the default palette uses, everything else is hex
var namedColors = map[string]color.RGBA{
	"var(--color-gold)": {R: 0xd4, G: 0xaf, B: 0x37, A: 0xff},
}

// RenderPNG draws the tiers as a labeled grid image and encodes it to w
func (e *Editor) RenderPNG(w io.Writer) error {
	height := exportRowHeight * len(e.Tiers)
	if height == 0 {
		height = exportRowHeight
	}
	img := image.NewRGBA(image.Rect(0, 0, exportWidth, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{R: 0x1a, G: 0x1a, B: 0x1a, A: 0xff}), image.Point{}, draw.Src)

	for idx, tier := range e.Tiers {
		top := idx * exportRowHeight
		labelBox := image.Rect(0, top, exportLabelWidth, top+exportRowHeight)
		draw.Draw(img, labelBox, image.NewUniform(parseColor(tier.Color)), image.Point{}, draw.Src)
		drawText(img, exportPadding, top+exportRowHeight/2, tier.Label, color.Black)

		line := ""
		for i, anime := range tier.Items {
			if i > 0 {
				line += ", "
			}
			line += anime.Title
		}
		drawText(img, exportLabelWidth+exportPadding, top+exportRowHeight/2, line, color.White)
	}

	return png.Encode(w, img)
}

// ExportPNG renders the tiers and writes the image to path atomically,
// so a reader never observes a half-written file.
func (e *Editor) ExportPNG(path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".export-*.png")
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := e.RenderPNG(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to encode export image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close export file: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}

func drawText(img *image.RGBA, x, y int, text string, col color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

func parseColor(s string) color.RGBA {
	if c, ok := namedColors[s]; ok {
		return c
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b); err != nil {
		return color.RGBA{R: 0x66, G: 0x66, B: 0x66, A: 0xff}
	}
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}
