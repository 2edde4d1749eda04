// Package convert reduces calendar snapshots to pure black and white for
// e-ink readers.
package convert

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
)

// DefaultThreshold is the luma below which a pixel is inked.
const DefaultThreshold = 160

// palette index 0 is paper, 1 is ink.
var palette = color.Palette{color.White, color.Black}

// Monochrome maps img onto a two-color palette. Transparent pixels
// (alpha < 128) are paper; everything else is inked when its luma
// Y = 0.299R + 0.587G + 0.114B is below threshold.
func Monochrome(img image.Image, threshold uint8) *image.Paletted {
	b := img.Bounds()
	out := image.NewPaletted(b, palette)

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			if isInk(c, threshold) {
				out.SetColorIndex(x, y, 1)
			}
		}
	}
	return out
}

func isInk(c color.NRGBA, threshold uint8) bool {
	if c.A < 128 {
		return false
	}
	luma := 0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)
	return luma < float64(threshold)
}

// MonochromePNG decodes a PNG, converts it with Monochrome and re-encodes
// it at best compression.
func MonochromePNG(data []byte, threshold uint8) ([]byte, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("convert: decode png: %w", err)
	}

	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(&buf, Monochrome(img, threshold)); err != nil {
		return nil, fmt.Errorf("convert: encode png: %w", err)
	}
	return buf.Bytes(), nil
}
