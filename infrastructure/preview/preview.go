package preview

import (
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"
)

// DefaultMaxSide bounds preview images so a large sheet stays light.
const DefaultMaxSide = 1024

// EncodePNG writes img as PNG, scaled down to fit within maxSide when it is
// larger. maxSide <= 0 writes img at full size.
func EncodePNG(w io.Writer, img image.Image, maxSide int) error {
	if maxSide > 0 {
		b := img.Bounds()
		if b.Dx() > maxSide || b.Dy() > maxSide {
			img = imaging.Fit(img, maxSide, maxSide, imaging.Lanczos)
		}
	}

	if err := imaging.Encode(w, img, imaging.PNG); err != nil {
		return fmt.Errorf("encode preview: %w", err)
	}
	return nil
}
