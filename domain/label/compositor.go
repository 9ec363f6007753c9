package label

import (
	"fmt"
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"github.com/prasetyowira/qrlabel/constant"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// FontResolver supplies caption faces at a pixel size. Implementations
// must be safe for concurrent use; the returned face is owned by the caller.
type FontResolver interface {
	Face(size float64) (font.Face, error)
}

// Label is one composed label canvas plus the geometry chosen for it.
type Label struct {
	Payload       string
	Canvas        *image.RGBA
	QRSize        int
	FontSize      int
	CaptionWidth  int
	CaptionHeight int
	// Top is the y offset of the QR image.
	Top int
	// Overflow is set when the caption is wider than the usable width at
	// the minimum font size, or the QR+caption block runs past the bottom
	// edge. The label is still drawn; the canvas clips it.
	Overflow bool
}

// Compositor lays a QR image and its caption onto a fixed-size canvas.
type Compositor struct {
	fonts FontResolver
}

// NewCompositor creates a compositor drawing captions with fonts.
func NewCompositor(fonts FontResolver) *Compositor {
	return &Compositor{fonts: fonts}
}

// Compose renders payload and qr onto a new canvas sized by cfg. The
// canvas size depends on cfg alone. Content that does not fit is pinned to
// the top margin and allowed to run past the bottom edge.
func (c *Compositor) Compose(payload string, qr image.Image, cfg LabelConfig) (*Label, error) {
	if qr == nil || qr.Bounds().Empty() {
		return nil, invalidInput(constant.ErrInvalidQRImage)
	}

	w, h := cfg.Pixels()
	qrSize := cfg.QRSize()

	canvas := image.NewRGBA(image.Rect(0, 0, w, h))
	dc := gg.NewContextForRGBA(canvas)
	dc.SetColor(color.White)
	dc.Clear()

	// Concentric 1px rings, outermost on the canvas edge.
	dc.SetColor(color.Black)
	dc.SetLineWidth(1)
	for i := 0; i < cfg.BorderThickness; i++ {
		inset := float64(i) + 0.5
		dc.DrawRectangle(inset, inset, float64(w-1-2*i), float64(h-1-2*i))
		dc.Stroke()
	}

	size := max(cfg.MinFontSize, int(float64(qrSize)*cfg.FontWidthRatio))
	maxTextWidth := w - 2*cfg.InnerMargin

	face, bounds, err := c.measure(payload, size)
	if err != nil {
		return nil, err
	}
	tw, th := boundsSize(bounds)
	for tw > maxTextWidth && size > cfg.MinFontSize {
		face.Close()
		size--
		face, bounds, err = c.measure(payload, size)
		if err != nil {
			return nil, err
		}
		tw, th = boundsSize(bounds)
	}
	defer face.Close()

	contentHeight := qrSize + cfg.VerticalSpacing + th
	startY := max(cfg.InnerMargin, floorHalf(h-contentHeight))

	qrX := floorHalf(w - qrSize)
	if qrSize > 0 {
		dst := image.Rect(qrX, startY, qrX+qrSize, startY+qrSize)
		xdraw.CatmullRom.Scale(canvas, dst, qr, qr.Bounds(), xdraw.Src, nil)
	}

	textX := floorHalf(w - tw)
	textY := startY + qrSize + cfg.VerticalSpacing
	if payload != "" {
		dc.SetFontFace(face)
		dc.SetColor(color.Black)
		// Shift from the bounding box corner to the glyph origin.
		dc.DrawString(payload, float64(textX)-fixedToFloat(bounds.Min.X), float64(textY)-fixedToFloat(bounds.Min.Y))
	}

	return &Label{
		Payload:       payload,
		Canvas:        canvas,
		QRSize:        qrSize,
		FontSize:      size,
		CaptionWidth:  tw,
		CaptionHeight: th,
		Top:           startY,
		Overflow:      tw > maxTextWidth || startY+contentHeight > h,
	}, nil
}

func (c *Compositor) measure(text string, size int) (font.Face, fixed.Rectangle26_6, error) {
	face, err := c.fonts.Face(float64(size))
	if err != nil {
		return nil, fixed.Rectangle26_6{}, fmt.Errorf("resolve caption font at %dpx: %w", size, err)
	}
	bounds, _ := font.BoundString(face, text)
	return face, bounds, nil
}

func boundsSize(b fixed.Rectangle26_6) (int, int) {
	return (b.Max.X - b.Min.X).Ceil(), (b.Max.Y - b.Min.Y).Ceil()
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

// floorHalf is n/2 rounded toward negative infinity.
func floorHalf(n int) int {
	if n < 0 {
		return -((-n + 1) / 2)
	}
	return n / 2
}
