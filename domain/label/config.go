package label

import (
	"fmt"
	"math"
)

// Bounds for the user-tunable layout values.
const (
	MinQRWidthRatio    = 0.50
	MaxQRWidthRatio    = 0.90
	MinFontWidthRatio  = 0.20
	MaxFontWidthRatio  = 0.60
	MinBorderThickness = 1
	MaxBorderThickness = 6
	MinVerticalSpacing = 0
	MaxVerticalSpacing = 60
)

// LabelConfig describes the geometry of a single label canvas. It is a
// value type: derive variants with With, never mutate a shared one.
type LabelConfig struct {
	WidthIn         float64
	HeightIn        float64
	DPI             float64
	BorderThickness int
	QRWidthRatio    float64
	FontWidthRatio  float64
	MinFontSize     int
	VerticalSpacing int
	InnerMargin     int
}

// DefaultLabelConfig is a 1" x 2.5" label at 300 DPI.
func DefaultLabelConfig() LabelConfig {
	return LabelConfig{
		WidthIn:         1.0,
		HeightIn:        2.5,
		DPI:             300,
		BorderThickness: 2,
		QRWidthRatio:    0.75,
		FontWidthRatio:  0.40,
		MinFontSize:     8,
		VerticalSpacing: 20,
		InnerMargin:     8,
	}
}

// Pixels returns the canvas size in pixels, rounded to the nearest pixel.
func (c LabelConfig) Pixels() (int, int) {
	return int(math.Round(c.WidthIn * c.DPI)), int(math.Round(c.HeightIn * c.DPI))
}

// QRSize is the side length of the QR image on the canvas.
func (c LabelConfig) QRSize() int {
	w, _ := c.Pixels()
	return int(float64(w) * c.QRWidthRatio)
}

// Validate reports ErrInvalidInput for unusable or out-of-range values.
func (c LabelConfig) Validate() error {
	switch {
	case c.WidthIn <= 0 || c.HeightIn <= 0:
		return invalidInput(fmt.Sprintf("label size must be positive, got %gx%g in", c.WidthIn, c.HeightIn))
	case c.DPI <= 0:
		return invalidInput(fmt.Sprintf("dpi must be positive, got %g", c.DPI))
	case c.QRWidthRatio < MinQRWidthRatio || c.QRWidthRatio > MaxQRWidthRatio:
		return invalidInput(fmt.Sprintf("qr width ratio %g outside [%g, %g]", c.QRWidthRatio, MinQRWidthRatio, MaxQRWidthRatio))
	case c.FontWidthRatio < MinFontWidthRatio || c.FontWidthRatio > MaxFontWidthRatio:
		return invalidInput(fmt.Sprintf("font width ratio %g outside [%g, %g]", c.FontWidthRatio, MinFontWidthRatio, MaxFontWidthRatio))
	case c.BorderThickness < MinBorderThickness || c.BorderThickness > MaxBorderThickness:
		return invalidInput(fmt.Sprintf("border thickness %d outside [%d, %d]", c.BorderThickness, MinBorderThickness, MaxBorderThickness))
	case c.VerticalSpacing < MinVerticalSpacing || c.VerticalSpacing > MaxVerticalSpacing:
		return invalidInput(fmt.Sprintf("vertical spacing %d outside [%d, %d]", c.VerticalSpacing, MinVerticalSpacing, MaxVerticalSpacing))
	case c.MinFontSize < 1:
		return invalidInput(fmt.Sprintf("minimum font size must be at least 1, got %d", c.MinFontSize))
	case c.InnerMargin < 0:
		return invalidInput(fmt.Sprintf("inner margin must not be negative, got %d", c.InnerMargin))
	}
	return nil
}

// Options carries per-request overrides. Nil fields keep the base value.
type Options struct {
	QRWidthRatio    *float64 `json:"qr_width_ratio,omitempty"`
	FontWidthRatio  *float64 `json:"font_width_ratio,omitempty"`
	BorderThickness *int     `json:"border_thickness,omitempty"`
	VerticalSpacing *int     `json:"vertical_spacing,omitempty"`
}

// With returns a copy of c with the non-nil overrides applied.
func (c LabelConfig) With(opts Options) LabelConfig {
	if opts.QRWidthRatio != nil {
		c.QRWidthRatio = *opts.QRWidthRatio
	}
	if opts.FontWidthRatio != nil {
		c.FontWidthRatio = *opts.FontWidthRatio
	}
	if opts.BorderThickness != nil {
		c.BorderThickness = *opts.BorderThickness
	}
	if opts.VerticalSpacing != nil {
		c.VerticalSpacing = *opts.VerticalSpacing
	}
	return c
}
