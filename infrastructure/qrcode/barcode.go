package qrcode

import (
	"fmt"
	"image"
	"image/color"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
	"github.com/disintegration/imaging"
)

// quietZoneModules is the white border, in modules, added around symbols.
const quietZoneModules = 4

// BarcodeGenerator renders payloads with boombuler/barcode. The library
// emits the bare symbol, so the quiet zone is added here.
type BarcodeGenerator struct {
	moduleSize int
}

// NewBarcodeGenerator creates a boombuler-backed generator. moduleSize <= 0
// selects DefaultModuleSize.
func NewBarcodeGenerator(moduleSize int) *BarcodeGenerator {
	if moduleSize <= 0 {
		moduleSize = DefaultModuleSize
	}
	return &BarcodeGenerator{moduleSize: moduleSize}
}

// Render encodes payload as a square raster with a quiet zone
func (g *BarcodeGenerator) Render(payload string) (image.Image, error) {
	raw, err := qr.Encode(payload, qr.M, qr.Auto)
	if err != nil {
		return nil, fmt.Errorf("encode qr code: %w", err)
	}

	modules := raw.Bounds().Dx()
	side := modules * g.moduleSize
	scaled, err := barcode.Scale(raw, side, side)
	if err != nil {
		return nil, fmt.Errorf("scale qr code: %w", err)
	}

	border := quietZoneModules * g.moduleSize
	canvas := imaging.New(side+2*border, side+2*border, color.White)
	return imaging.Paste(canvas, scaled, image.Pt(border, border)), nil
}
