package sampledata

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
)

const maxImageSide = 4096

var (
	placeholderFill = color.RGBA{R: 0xcc, G: 0xcc, B: 0xcc, A: 0xff}
	placeholderLine = color.RGBA{R: 0x99, G: 0x99, B: 0x99, A: 0xff}
)

// PlaceholderPNG renders a grey image with both diagonals drawn.
func PlaceholderPNG(width, height int) ([]byte, error) {
	if width <= 0 || height <= 0 || width > maxImageSide || height > maxImageSide {
		return nil, fmt.Errorf("invalid image size %dx%d", width, height)
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))

	for y := range height {
		for x := range width {
			img.SetRGBA(x, y, placeholderFill)
		}
	}

	steps := max(width, height)
	for i := range steps {
		x := i * width / steps
		y := i * height / steps
		img.SetRGBA(x, y, placeholderLine)
		img.SetRGBA(width-1-x, y, placeholderLine)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
