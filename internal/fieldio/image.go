package fieldio

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/png"
	"math"

	_ "golang.org/x/image/tiff"

	"github.com/banshee-data/echoflow/internal/array"
)

// DecodeImage converts a greyscale (or colour, by luminance) PNG or TIFF
// image to a field. Samples are normalised to [0, 1] and multiplied by
// scale; a zero scale means 1. Fully transparent pixels become NaN.
func DecodeImage(data []byte, scale float32) (*array.Array2[float32], error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	if scale == 0 {
		scale = 1
	}

	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("%w: empty %s image", ErrBadFormat, format)
	}
	f := array.New2[float32](b.Dy(), b.Dx())
	nan := float32(math.NaN())
	for y := 0; y < b.Dy(); y++ {
		row := f.Row(y)
		for x := range row {
			c := img.At(b.Min.X+x, b.Min.Y+y)
			if _, _, _, a := c.RGBA(); a == 0 {
				row[x] = nan
				continue
			}
			g := color.Gray16Model.Convert(c).(color.Gray16)
			row[x] = float32(g.Y) / 0xffff * scale
		}
	}
	return f, nil
}
