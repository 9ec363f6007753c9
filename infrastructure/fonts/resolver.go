// Package fonts resolves the caption font from an ordered list of
// strategies, falling back to the embedded Go Regular face.
package fonts

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/prasetyowira/qrlabel/constant"
	"github.com/prasetyowira/qrlabel/infrastructure/logger"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// BuiltinName names the embedded fallback strategy.
const BuiltinName = "builtin:goregular"

// DefaultFontDirs are searched for named fonts.
var DefaultFontDirs = []string{
	".",
	"/usr/share/fonts/truetype/dejavu",
	"/usr/share/fonts/dejavu",
	"/usr/share/fonts/TTF",
	"/usr/share/fonts/truetype/msttcorefonts",
	"/Library/Fonts",
	"/System/Library/Fonts/Supplemental",
	`C:\Windows\Fonts`,
}

// Strategy loads raw font bytes from one place.
type Strategy struct {
	Name string
	Load func() ([]byte, error)
}

// File loads the font at path.
func File(path string) Strategy {
	return Strategy{
		Name: path,
		Load: func() ([]byte, error) {
			return os.ReadFile(path)
		},
	}
}

// Named searches dirs for a font file called name.
func Named(name string, dirs ...string) Strategy {
	return Strategy{
		Name: name,
		Load: func() ([]byte, error) {
			for _, dir := range dirs {
				data, err := os.ReadFile(filepath.Join(dir, name))
				if err == nil {
					return data, nil
				}
			}
			return nil, fmt.Errorf("%s not found in %d font dirs", name, len(dirs))
		},
	}
}

// Builtin returns the embedded Go Regular font. It cannot fail.
func Builtin() Strategy {
	return Strategy{
		Name: BuiltinName,
		Load: func() ([]byte, error) {
			return goregular.TTF, nil
		},
	}
}

// DefaultStrategies tries path (when set), then DejaVu Sans and Arial in
// the usual system directories.
func DefaultStrategies(path string) []Strategy {
	var strategies []Strategy
	if path != "" {
		strategies = append(strategies, File(path))
	}
	return append(strategies,
		Named("DejaVuSans.ttf", DefaultFontDirs...),
		Named("arial.ttf", DefaultFontDirs...),
	)
}

// Resolver picks the first strategy whose bytes parse as a font. The
// choice is made once. Faces are created per call.
type Resolver struct {
	strategies []Strategy

	once sync.Once
	font *opentype.Font
	name string
	err  error
}

// NewResolver tries strategies in order, then the built-in font.
func NewResolver(strategies ...Strategy) *Resolver {
	all := make([]Strategy, 0, len(strategies)+1)
	all = append(all, strategies...)
	all = append(all, Builtin())
	return &Resolver{strategies: all}
}

// Face returns a caption face of size pixels.
func (r *Resolver) Face(size float64) (font.Face, error) {
	r.once.Do(r.resolve)
	if r.err != nil {
		return nil, r.err
	}

	face, err := opentype.NewFace(r.font, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		logger.Error("Failed to create font face", logger.LoggerInfo{
			ContextFunction: constant.CtxFonts,
			Error: &logger.CustomError{
				Code:    constant.ErrCodeFontFace,
				Message: err.Error(),
				Type:    constant.ErrTypeFont,
			},
			Data: map[string]interface{}{
				constant.DataStrategy: r.name,
				constant.DataFontSize: size,
			},
		})
		return nil, fmt.Errorf("font face %s at %g: %w", r.name, size, err)
	}
	return face, nil
}

// Name reports which strategy won.
func (r *Resolver) Name() string {
	r.once.Do(r.resolve)
	return r.name
}

func (r *Resolver) resolve() {
	var errs []error
	for _, s := range r.strategies {
		data, err := s.Load()
		if err == nil {
			var f *opentype.Font
			f, err = opentype.Parse(data)
			if err == nil {
				r.font, r.name = f, s.Name
				logger.Info("Caption font resolved", logger.LoggerInfo{
					ContextFunction: constant.CtxFonts,
					Data: map[string]interface{}{
						constant.DataStrategy: s.Name,
					},
				})
				return
			}
		}

		logger.Debug("Font strategy skipped", logger.LoggerInfo{
			ContextFunction: constant.CtxFonts,
			Error: &logger.CustomError{
				Code:    constant.ErrCodeFontStrategy,
				Message: err.Error(),
				Type:    constant.ErrTypeFont,
			},
			Data: map[string]interface{}{
				constant.DataStrategy: s.Name,
			},
		})
		errs = append(errs, fmt.Errorf("%s: %w", s.Name, err))
	}
	r.err = fmt.Errorf("no usable caption font: %w", errors.Join(errs...))
}
