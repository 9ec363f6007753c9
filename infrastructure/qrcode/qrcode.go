package qrcode

import (
	"fmt"
	"image"

	"github.com/skip2/go-qrcode"
)

// DefaultModuleSize is the pixel width of one QR module.
const DefaultModuleSize = 10

// Generator renders payloads with skip2/go-qrcode at medium recovery
type Generator struct {
	moduleSize int
	level      qrcode.RecoveryLevel
}

// NewGenerator creates a new QR code generator. moduleSize <= 0 selects
// DefaultModuleSize.
func NewGenerator(moduleSize int) *Generator {
	if moduleSize <= 0 {
		moduleSize = DefaultModuleSize
	}
	return &Generator{
		moduleSize: moduleSize,
		level:      qrcode.Medium,
	}
}

// Render encodes payload as a square raster with a quiet zone
func (g *Generator) Render(payload string) (image.Image, error) {
	q, err := qrcode.New(payload, g.level)
	if err != nil {
		return nil, fmt.Errorf("encode qr code: %w", err)
	}

	// A negative size makes every module exactly -size pixels wide.
	return q.Image(-g.moduleSize), nil
}

// RenderPNG encodes payload as PNG bytes of the given side length
func (g *Generator) RenderPNG(payload string, size int) ([]byte, error) {
	png, err := qrcode.Encode(payload, g.level, size)
	if err != nil {
		return nil, fmt.Errorf("encode qr code: %w", err)
	}
	return png, nil
}
