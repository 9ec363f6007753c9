package config

import (
	"fmt"
	"os"

	"github.com/prasetyowira/qrlabel/domain/label"
	"gopkg.in/yaml.v3"
)

// LayoutFile is the YAML shape of LAYOUT_FILE. Omitted keys keep the
// built-in defaults.
//
//	label:
//	  width_in: 1.0
//	  height_in: 2.5
//	  dpi: 300
//	sheet:
//	  layout: grid
//	  columns: 3
type LayoutFile struct {
	Label LabelSection `yaml:"label"`
	Sheet SheetSection `yaml:"sheet"`
}

// LabelSection overrides label.LabelConfig fields
type LabelSection struct {
	WidthIn         *float64 `yaml:"width_in"`
	HeightIn        *float64 `yaml:"height_in"`
	DPI             *float64 `yaml:"dpi"`
	BorderThickness *int     `yaml:"border_thickness"`
	QRWidthRatio    *float64 `yaml:"qr_width_ratio"`
	FontWidthRatio  *float64 `yaml:"font_width_ratio"`
	MinFontSize     *int     `yaml:"min_font_size"`
	VerticalSpacing *int     `yaml:"vertical_spacing"`
	InnerMargin     *int     `yaml:"inner_margin"`
}

// SheetSection overrides label.SheetConfig fields
type SheetSection struct {
	Layout   *string  `yaml:"layout"`
	WidthIn  *float64 `yaml:"width_in"`
	HeightIn *float64 `yaml:"height_in"`
	Columns  *int     `yaml:"columns"`
	HSpacing *int     `yaml:"h_spacing"`
	VSpacing *int     `yaml:"v_spacing"`
	Margin   *int     `yaml:"margin"`
}

// LoadLayoutFile parses the YAML layout file at path
func LoadLayoutFile(path string) (*LayoutFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading layout file: %w", err)
	}

	var lf LayoutFile
	if err := yaml.Unmarshal(data, &lf); err != nil {
		return nil, fmt.Errorf("parsing layout file: %w", err)
	}
	return &lf, nil
}

// Apply returns copies of lc and sc with the file's values applied
func (f *LayoutFile) Apply(lc label.LabelConfig, sc label.SheetConfig) (label.LabelConfig, label.SheetConfig) {
	l := f.Label
	setFloat(&lc.WidthIn, l.WidthIn)
	setFloat(&lc.HeightIn, l.HeightIn)
	setFloat(&lc.DPI, l.DPI)
	setInt(&lc.BorderThickness, l.BorderThickness)
	setFloat(&lc.QRWidthRatio, l.QRWidthRatio)
	setFloat(&lc.FontWidthRatio, l.FontWidthRatio)
	setInt(&lc.MinFontSize, l.MinFontSize)
	setInt(&lc.VerticalSpacing, l.VerticalSpacing)
	setInt(&lc.InnerMargin, l.InnerMargin)

	s := f.Sheet
	if s.Layout != nil {
		sc.Layout = label.Layout(*s.Layout)
	}
	setFloat(&sc.WidthIn, s.WidthIn)
	setFloat(&sc.HeightIn, s.HeightIn)
	setInt(&sc.Columns, s.Columns)
	setInt(&sc.HSpacing, s.HSpacing)
	setInt(&sc.VSpacing, s.VSpacing)
	setInt(&sc.Margin, s.Margin)

	return lc, sc
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}
