package label

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/fogleman/gg"
	"github.com/prasetyowira/qrlabel/constant"
)

// Layout selects how labels are arranged into pages.
type Layout string

const (
	// LayoutPage puts every label on its own page.
	LayoutPage Layout = "page"
	// LayoutGrid tiles labels row-major onto fixed-size sheets.
	LayoutGrid Layout = "grid"
	// LayoutStack stacks all labels in one column on a single sheet that
	// grows to fit them.
	LayoutStack Layout = "stack"
)

// ParseLayout maps a user-supplied name to a Layout; "" means LayoutPage.
func ParseLayout(s string) (Layout, error) {
	switch Layout(strings.ToLower(strings.TrimSpace(s))) {
	case "", LayoutPage:
		return LayoutPage, nil
	case LayoutGrid:
		return LayoutGrid, nil
	case LayoutStack:
		return LayoutStack, nil
	}
	return "", invalidInput(fmt.Sprintf("%s %q", constant.ErrInvalidLayout, s))
}

// MaxPageInches is the largest page side PDF readers accept (14400 pt).
const MaxPageInches = 200.0

// SheetConfig describes the page arrangement. Spacing and margins are in
// pixels at the label DPI.
type SheetConfig struct {
	Layout   Layout
	WidthIn  float64
	HeightIn float64
	Columns  int
	HSpacing int
	VSpacing int
	Margin   int
}

// DefaultSheetConfig is one label per page; grid sheets are A4 with three
// columns.
func DefaultSheetConfig() SheetConfig {
	return SheetConfig{
		Layout:   LayoutPage,
		WidthIn:  8.27,
		HeightIn: 11.69,
		Columns:  3,
		HSpacing: 24,
		VSpacing: 24,
		Margin:   48,
	}
}

// Validate reports ErrInvalidInput for an unusable sheet.
func (s SheetConfig) Validate() error {
	if _, err := ParseLayout(string(s.Layout)); err != nil {
		return err
	}
	switch {
	case s.Layout == LayoutGrid && (s.WidthIn <= 0 || s.HeightIn <= 0):
		return invalidInput(fmt.Sprintf("sheet size must be positive, got %gx%g in", s.WidthIn, s.HeightIn))
	case s.Layout == LayoutGrid && (s.WidthIn > MaxPageInches || s.HeightIn > MaxPageInches):
		return invalidInput(fmt.Sprintf("sheet size %gx%g in exceeds %g in", s.WidthIn, s.HeightIn, MaxPageInches))
	case s.Layout == LayoutGrid && s.Columns < 1:
		return invalidInput(fmt.Sprintf("columns must be at least 1, got %d", s.Columns))
	case s.HSpacing < 0 || s.VSpacing < 0 || s.Margin < 0:
		return invalidInput("sheet spacing and margin must not be negative")
	}
	return nil
}

// Document is the ordered list of page images ready for export.
type Document struct {
	Pages []image.Image
	DPI   float64
}

// PageSizePt returns the physical size of page i in PDF points.
func (d *Document) PageSizePt(i int) (float64, float64) {
	b := d.Pages[i].Bounds()
	return float64(b.Dx()) / d.DPI * 72, float64(b.Dy()) / d.DPI * 72
}

// Assemble arranges labels into pages according to sheet. All labels are
// expected to share the size of the first one.
func Assemble(labels []image.Image, sheet SheetConfig, dpi float64) (*Document, error) {
	if len(labels) == 0 {
		return nil, invalidInput(constant.ErrEmptyDocument)
	}
	if dpi <= 0 {
		return nil, invalidInput(fmt.Sprintf("dpi must be positive, got %g", dpi))
	}
	if err := sheet.Validate(); err != nil {
		return nil, err
	}

	lw, lh := labels[0].Bounds().Dx(), labels[0].Bounds().Dy()

	var pages []image.Image
	switch sheet.Layout {
	case LayoutGrid:
		if need, have := sheet.RowWidth(lw), int(math.Round(sheet.WidthIn*dpi)); need > have {
			return nil, invalidInput(fmt.Sprintf("%d columns of %d px need %d px, sheet is %d px wide", sheet.Columns, lw, need, have))
		}
		pages = assembleGrid(labels, sheet, dpi)
	case LayoutStack:
		limit := int(MaxPageInches * dpi)
		if h := sheet.StackHeight(len(labels), lh); h > limit {
			return nil, invalidInput(fmt.Sprintf("stack of %d labels is %d px tall, limit is %d px", len(labels), h, limit))
		}
		pages = []image.Image{assembleStack(labels, sheet)}
	default:
		pages = append(pages, labels...)
	}

	return &Document{Pages: pages, DPI: dpi}, nil
}

// RowsPerSheet is how many label rows of height labelHeight fit on one
// grid sheet. It never returns less than one.
func (s SheetConfig) RowsPerSheet(labelHeight int, dpi float64) int {
	sheetHeight := int(math.Round(s.HeightIn * dpi))
	usable := sheetHeight - 2*s.Margin
	return max(1, (usable+s.VSpacing)/(labelHeight+s.VSpacing))
}

// RowWidth is the width a full grid row of labelWidth labels takes,
// margins included.
func (s SheetConfig) RowWidth(labelWidth int) int {
	return 2*s.Margin + s.Columns*labelWidth + (s.Columns-1)*s.HSpacing
}

// StackHeight is the height of a stack sheet holding n labels.
func (s SheetConfig) StackHeight(n, labelHeight int) int {
	return 2*s.Margin + n*labelHeight + (n-1)*s.VSpacing
}

func assembleGrid(labels []image.Image, sheet SheetConfig, dpi float64) []image.Image {
	sw := int(math.Round(sheet.WidthIn * dpi))
	sh := int(math.Round(sheet.HeightIn * dpi))
	lw, lh := labels[0].Bounds().Dx(), labels[0].Bounds().Dy()

	perSheet := sheet.Columns * sheet.RowsPerSheet(lh, dpi)

	var pages []image.Image
	for start := 0; start < len(labels); start += perSheet {
		end := min(start+perSheet, len(labels))
		dc := newSheet(sw, sh)
		for i, lbl := range labels[start:end] {
			x := sheet.Margin + (i%sheet.Columns)*(lw+sheet.HSpacing)
			y := sheet.Margin + (i/sheet.Columns)*(lh+sheet.VSpacing)
			dc.DrawImage(lbl, x, y)
		}
		pages = append(pages, dc.Image())
	}
	return pages
}

func assembleStack(labels []image.Image, sheet SheetConfig) image.Image {
	n := len(labels)
	lw, lh := labels[0].Bounds().Dx(), labels[0].Bounds().Dy()

	dc := newSheet(lw+2*sheet.Margin, sheet.StackHeight(n, lh))
	for i, lbl := range labels {
		dc.DrawImage(lbl, sheet.Margin, sheet.Margin+i*(lh+sheet.VSpacing))
	}
	return dc.Image()
}

func newSheet(w, h int) *gg.Context {
	dc := gg.NewContext(w, h)
	dc.SetColor(color.White)
	dc.Clear()
	return dc
}
