package qrcode

import (
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"
	"github.com/makiuchi-d/gozxing"
	gzqr "github.com/makiuchi-d/gozxing/qrcode"
	"github.com/prasetyowira/qrlabel/constant"
	"github.com/prasetyowira/qrlabel/domain/label"
	"github.com/prasetyowira/qrlabel/infrastructure/logger"
)

// Decoder reads QR payloads with the gozxing QR reader
type Decoder struct {
	hints map[gozxing.DecodeHintType]interface{}
}

// NewDecoder creates a decoder that spends extra effort on each image
func NewDecoder() *Decoder {
	return &Decoder{
		hints: map[gozxing.DecodeHintType]interface{}{
			gozxing.DecodeHintType_TRY_HARDER: true,
		},
	}
}

// Decode returns the first QR payload found in img. Every reader failure
// is reported as label.ErrNotFound.
func (d *Decoder) Decode(img image.Image) (string, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		logger.Debug("Failed to binarize image", logger.LoggerInfo{
			ContextFunction: constant.CtxQRCode,
			Error: &logger.CustomError{
				Code:    constant.ErrCodeQRBitmap,
				Message: err.Error(),
				Type:    constant.ErrTypeDecode,
			},
			Data: map[string]interface{}{
				constant.DataWidth:  img.Bounds().Dx(),
				constant.DataHeight: img.Bounds().Dy(),
			},
		})
		return "", fmt.Errorf("%w: creating bitmap: %v", label.ErrNotFound, err)
	}

	// Readers keep state between calls, so each decode gets its own.
	result, err := gzqr.NewQRCodeReader().Decode(bmp, d.hints)
	if err != nil {
		return "", fmt.Errorf("%w: %v", label.ErrNotFound, err)
	}

	return result.GetText(), nil
}

// DecodeImage reads a PNG or JPEG upload, applying EXIF orientation so
// phone photos come out upright.
func DecodeImage(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: unreadable image: %v", label.ErrInvalidInput, err)
	}
	return img, nil
}
