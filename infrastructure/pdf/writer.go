package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/prasetyowira/qrlabel/constant"
	"github.com/prasetyowira/qrlabel/domain/label"
	"github.com/prasetyowira/qrlabel/infrastructure/logger"
	"github.com/signintech/gopdf"
)

// Writer exports label documents as PDF, one image per page, with each
// page sized from the image pixels and the document DPI
type Writer struct {
	title string
}

// NewWriter creates a PDF writer that stamps title into the document info
func NewWriter(title string) *Writer {
	return &Writer{title: title}
}

// Export renders doc into PDF bytes
func (w *Writer) Export(doc *label.Document) ([]byte, error) {
	if doc == nil || len(doc.Pages) == 0 {
		logger.Warn("Refusing to export empty document", logger.LoggerInfo{
			ContextFunction: constant.CtxPDF,
			Error: &logger.CustomError{
				Code:    constant.ErrCodePDFEmpty,
				Message: constant.ErrEmptyDocument,
				Type:    constant.ErrTypeExport,
			},
		})
		return nil, errors.New(constant.ErrEmptyDocument)
	}

	firstW, firstH := doc.PageSizePt(0)

	pdf := gopdf.GoPdf{}
	pdf.Start(gopdf.Config{
		Unit:     gopdf.UnitPT,
		PageSize: gopdf.Rect{W: firstW, H: firstH},
	})
	pdf.SetInfo(gopdf.PdfInfo{
		Title:        w.title,
		Creator:      "qrlabel",
		CreationDate: time.Now(),
	})

	for i, page := range doc.Pages {
		pw, ph := doc.PageSizePt(i)
		pdf.AddPageWithOption(gopdf.PageOption{PageSize: &gopdf.Rect{W: pw, H: ph}})
		if err := pdf.ImageFrom(page, 0, 0, &gopdf.Rect{W: pw, H: ph}); err != nil {
			logger.Error("Failed to place page image", logger.LoggerInfo{
				ContextFunction: constant.CtxPDF,
				Error: &logger.CustomError{
					Code:    constant.ErrCodePDFImage,
					Message: err.Error(),
					Type:    constant.ErrTypeExport,
				},
				Data: map[string]interface{}{
					constant.DataPages: i,
				},
			})
			return nil, fmt.Errorf("page %d: %w", i+1, err)
		}
	}

	var buf bytes.Buffer
	if _, err := pdf.WriteTo(&buf); err != nil {
		logger.Error("Failed to write PDF", logger.LoggerInfo{
			ContextFunction: constant.CtxPDF,
			Error: &logger.CustomError{
				Code:    constant.ErrCodePDFWrite,
				Message: err.Error(),
				Type:    constant.ErrTypeExport,
			},
		})
		return nil, fmt.Errorf("write pdf: %w", err)
	}

	logger.Debug("PDF written", logger.LoggerInfo{
		ContextFunction: constant.CtxPDF,
		Data: map[string]interface{}{
			constant.DataPages: len(doc.Pages),
			constant.DataBytes: buf.Len(),
		},
	})

	return buf.Bytes(), nil
}
