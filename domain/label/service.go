package label

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prasetyowira/qrlabel/constant"
	"github.com/prasetyowira/qrlabel/infrastructure/cache"
	"github.com/prasetyowira/qrlabel/infrastructure/logger"
)

// Renderer encodes a payload as a square QR raster
type Renderer interface {
	Render(payload string) (image.Image, error)
}

// Decoder extracts the first QR payload found in an image. It returns an
// error wrapping ErrNotFound when there is none.
type Decoder interface {
	Decode(img image.Image) (string, error)
}

// Exporter serializes a document into a downloadable byte buffer
type Exporter interface {
	Export(doc *Document) ([]byte, error)
}

// RunRepository stores run metadata. Label content is never persisted.
type RunRepository interface {
	Record(ctx context.Context, run *Run) error
	ListRecent(ctx context.Context, limit int) ([]Run, error)
}

// Run sources
const (
	SourceText  = "text"
	SourceImage = "image"
)

// Run is the metadata of one completed pipeline run
type Run struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	Base      string    `json:"base"`
	Count     int       `json:"count"`
	Layout    Layout    `json:"layout"`
	Pages     int       `json:"pages"`
	Bytes     int       `json:"bytes"`
	CreatedAt time.Time `json:"created_at"`
}

// GenerateRequest is one user submission
type GenerateRequest struct {
	Text    string
	Count   int
	Layout  Layout
	Options Options
}

// Result is everything one run produced
type Result struct {
	RunID    string
	Payloads []string
	Labels   []*Label
	Document *Document
	Bytes    []byte
}

// Dependencies are the collaborators of a Service. Runs and Cache are
// optional.
type Dependencies struct {
	Renderer Renderer
	Decoder  Decoder
	Exporter Exporter
	Fonts    FontResolver
	Runs     RunRepository
	Cache    *cache.NamespaceLRU
}

// Settings are the process-wide defaults, read-only after startup
type Settings struct {
	Label         LabelConfig
	Sheet         SheetConfig
	MaxSplitCount int
}

// Service runs the decode, expand, render, compose, assemble and export
// pipeline
type Service struct {
	renderer   Renderer
	decoder    Decoder
	exporter   Exporter
	compositor *Compositor
	runs       RunRepository
	cache      *cache.NamespaceLRU
	settings   Settings
}

// NewService creates a label service
func NewService(deps Dependencies, settings Settings) (*Service, error) {
	ctx := logger.NewRequestContext()

	if err := settings.Label.Validate(); err != nil {
		return nil, fmt.Errorf("default label config: %w", err)
	}
	if err := settings.Sheet.Validate(); err != nil {
		return nil, fmt.Errorf("default sheet config: %w", err)
	}

	logger.CtxDebug(ctx, "Creating label service", logger.LoggerInfo{
		ContextFunction: constant.CtxDomain,
		Data: map[string]interface{}{
			constant.DataService: "label",
			constant.DataLayout:  settings.Sheet.Layout,
		},
	})

	return &Service{
		renderer:   deps.Renderer,
		decoder:    deps.Decoder,
		exporter:   deps.Exporter,
		compositor: NewCompositor(deps.Fonts),
		runs:       deps.Runs,
		cache:      deps.Cache,
		settings:   settings,
	}, nil
}

// Generate runs the pipeline for typed text. Surrounding whitespace is
// trimmed before expansion.
func (s *Service) Generate(ctx context.Context, req GenerateRequest) (*Result, error) {
	logger.CtxDebug(ctx, "Generating labels from text", logger.LoggerInfo{
		ContextFunction: constant.CtxGenerate,
		Data: map[string]interface{}{
			constant.DataBase:   req.Text,
			constant.DataCount:  req.Count,
			constant.DataLayout: req.Layout,
		},
	})

	return s.run(ctx, constant.CtxGenerate, SourceText, strings.TrimSpace(req.Text), req)
}

// GenerateFromImage decodes the QR code in img and runs the pipeline on
// its payload exactly as decoded. req.Text is ignored.
func (s *Service) GenerateFromImage(ctx context.Context, img image.Image, req GenerateRequest) (*Result, error) {
	base, err := s.Decode(ctx, img)
	if err != nil {
		return nil, err
	}

	return s.run(ctx, constant.CtxGenerateFromImage, SourceImage, base, req)
}

// Decode returns the QR payload found in img
func (s *Service) Decode(ctx context.Context, img image.Image) (string, error) {
	if img == nil || img.Bounds().Empty() {
		return "", invalidInput("image is empty")
	}

	text, err := s.decoder.Decode(img)
	if err == nil && text == "" {
		err = ErrNotFound
	}
	if err != nil {
		logger.CtxWarn(ctx, "No QR code decoded from image", logger.LoggerInfo{
			ContextFunction: constant.CtxDecode,
			Error: &logger.CustomError{
				Code:    constant.ErrCodeQRNotFound,
				Message: err.Error(),
				Type:    constant.ErrTypeDecode,
			},
			Data: map[string]interface{}{
				constant.DataWidth:  img.Bounds().Dx(),
				constant.DataHeight: img.Bounds().Dy(),
			},
		})
		if errors.Is(err, ErrNotFound) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", ErrNotFound, err)
	}

	logger.CtxInfo(ctx, "Decoded QR payload", logger.LoggerInfo{
		ContextFunction: constant.CtxDecode,
		Data: map[string]interface{}{
			constant.DataDecoded: text,
		},
	})

	return text, nil
}

// Preview composes only the first label of a text run
func (s *Service) Preview(ctx context.Context, req GenerateRequest) (*Label, error) {
	return s.preview(ctx, strings.TrimSpace(req.Text), req)
}

// PreviewFromImage composes only the first label of an image run
func (s *Service) PreviewFromImage(ctx context.Context, img image.Image, req GenerateRequest) (*Label, error) {
	base, err := s.Decode(ctx, img)
	if err != nil {
		return nil, err
	}
	return s.preview(ctx, base, req)
}

// ListRuns returns the most recent runs, newest first. Without a
// repository it returns an empty list.
func (s *Service) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if s.runs == nil {
		return []Run{}, nil
	}

	runs, err := s.runs.ListRecent(ctx, limit)
	if err != nil {
		logger.CtxError(ctx, "Failed to list runs", logger.LoggerInfo{
			ContextFunction: constant.CtxListRuns,
			Error: &logger.CustomError{
				Code:    constant.ErrCodeListRuns,
				Message: err.Error(),
				Type:    constant.ErrTypeHistory,
			},
			Data: map[string]interface{}{
				constant.DataLimit: limit,
			},
		})
		return nil, err
	}
	return runs, nil
}

func (s *Service) preview(ctx context.Context, base string, req GenerateRequest) (*Label, error) {
	cfg, _, err := s.resolve(req)
	if err != nil {
		return nil, err
	}

	payloads, err := ExpandWithLimit(base, req.Count, s.settings.MaxSplitCount)
	if err != nil {
		s.warnInvalid(ctx, constant.CtxPreview, err, base, req.Count)
		return nil, err
	}

	return s.composeOne(ctx, constant.CtxPreview, payloads[0], cfg)
}

func (s *Service) run(ctx context.Context, fn, source, base string, req GenerateRequest) (*Result, error) {
	cfg, sheet, err := s.resolve(req)
	if err != nil {
		s.warnInvalid(ctx, fn, err, base, req.Count)
		return nil, err
	}

	payloads, err := ExpandWithLimit(base, req.Count, s.settings.MaxSplitCount)
	if err != nil {
		s.warnInvalid(ctx, fn, err, base, req.Count)
		return nil, err
	}

	labels := make([]*Label, 0, len(payloads))
	canvases := make([]image.Image, 0, len(payloads))
	for _, payload := range payloads {
		lbl, err := s.composeOne(ctx, fn, payload, cfg)
		if err != nil {
			return nil, err
		}
		labels = append(labels, lbl)
		canvases = append(canvases, lbl.Canvas)
	}

	doc, err := Assemble(canvases, sheet, cfg.DPI)
	if err != nil {
		logger.CtxError(ctx, "Failed to assemble document", logger.LoggerInfo{
			ContextFunction: fn,
			Error: &logger.CustomError{
				Code:    constant.ErrCodeAssembleFailure,
				Message: err.Error(),
				Type:    constant.ErrTypeDomain,
			},
			Data: map[string]interface{}{
				constant.DataLayout: sheet.Layout,
				constant.DataCount:  len(canvases),
			},
		})
		return nil, err
	}

	data, err := s.exporter.Export(doc)
	if err != nil {
		logger.CtxError(ctx, "Failed to export document", logger.LoggerInfo{
			ContextFunction: fn,
			Error: &logger.CustomError{
				Code:    constant.ErrCodeExportFailure,
				Message: err.Error(),
				Type:    constant.ErrTypeExport,
			},
			Data: map[string]interface{}{
				constant.DataPages: len(doc.Pages),
			},
		})
		return nil, fmt.Errorf("export document: %w", err)
	}

	run := &Run{
		ID:        uuid.New().String(),
		Source:    source,
		Base:      base,
		Count:     len(payloads),
		Layout:    sheet.Layout,
		Pages:     len(doc.Pages),
		Bytes:     len(data),
		CreatedAt: time.Now(),
	}
	s.record(ctx, fn, run)

	logger.CtxInfo(ctx, "Labels generated", logger.LoggerInfo{
		ContextFunction: fn,
		Data: map[string]interface{}{
			constant.DataRunID:  run.ID,
			constant.DataSource: source,
			constant.DataCount:  run.Count,
			constant.DataLayout: run.Layout,
			constant.DataPages:  run.Pages,
			constant.DataBytes:  run.Bytes,
		},
	})

	return &Result{
		RunID:    run.ID,
		Payloads: payloads,
		Labels:   labels,
		Document: doc,
		Bytes:    data,
	}, nil
}

// resolve applies request overrides on top of the process defaults
func (s *Service) resolve(req GenerateRequest) (LabelConfig, SheetConfig, error) {
	cfg := s.settings.Label.With(req.Options)
	if err := cfg.Validate(); err != nil {
		return LabelConfig{}, SheetConfig{}, err
	}

	sheet := s.settings.Sheet
	if req.Layout != "" {
		sheet.Layout = req.Layout
	}
	if err := sheet.Validate(); err != nil {
		return LabelConfig{}, SheetConfig{}, err
	}

	return cfg, sheet, nil
}

func (s *Service) composeOne(ctx context.Context, fn, payload string, cfg LabelConfig) (*Label, error) {
	qr, err := s.render(ctx, fn, payload)
	if err != nil {
		return nil, err
	}

	lbl, err := s.compositor.Compose(payload, qr, cfg)
	if err != nil {
		logger.CtxError(ctx, "Failed to compose label", logger.LoggerInfo{
			ContextFunction: fn,
			Error: &logger.CustomError{
				Code:    constant.ErrCodeComposeFailure,
				Message: err.Error(),
				Type:    constant.ErrTypeRender,
			},
			Data: map[string]interface{}{
				constant.DataPayload: payload,
			},
		})
		return nil, err
	}

	if lbl.Overflow {
		logger.CtxDebug(ctx, "Label content overflows canvas", logger.LoggerInfo{
			ContextFunction: constant.CtxCompose,
			Data: map[string]interface{}{
				constant.DataPayload:  payload,
				constant.DataFontSize: lbl.FontSize,
				constant.DataOverflow: true,
			},
		})
	}

	return lbl, nil
}

func (s *Service) render(ctx context.Context, fn, payload string) (image.Image, error) {
	if s.cache != nil {
		if val, found := s.cache.Get(constant.QRImageNamespace, payload); found {
			if img, ok := val.(image.Image); ok {
				logger.CtxDebug(ctx, "QR image served from cache", logger.LoggerInfo{
					ContextFunction: fn,
					Data: map[string]interface{}{
						constant.DataPayload:  payload,
						constant.DataCacheHit: true,
					},
				})
				return img, nil
			}
		}
	}

	img, err := s.renderer.Render(payload)
	if err != nil {
		logger.CtxError(ctx, "Failed to render QR code", logger.LoggerInfo{
			ContextFunction: fn,
			Error: &logger.CustomError{
				Code:    constant.ErrCodeRenderFailure,
				Message: err.Error(),
				Type:    constant.ErrTypeRender,
			},
			Data: map[string]interface{}{
				constant.DataPayload: payload,
			},
		})
		return nil, fmt.Errorf("render %q: %w", payload, err)
	}

	if s.cache != nil {
		s.cache.Set(constant.QRImageNamespace, payload, img)
	}
	return img, nil
}

// record stores run metadata. Failures are logged and do not fail the run.
func (s *Service) record(ctx context.Context, fn string, run *Run) {
	if s.runs == nil {
		return
	}

	if err := s.runs.Record(ctx, run); err != nil {
		logger.CtxWarn(ctx, "Failed to record run", logger.LoggerInfo{
			ContextFunction: fn,
			Error: &logger.CustomError{
				Code:    constant.ErrCodeRecordRun,
				Message: err.Error(),
				Type:    constant.ErrTypeHistory,
			},
			Data: map[string]interface{}{
				constant.DataRunID: run.ID,
			},
		})
	}
}

func (s *Service) warnInvalid(ctx context.Context, fn string, err error, base string, count int) {
	logger.CtxWarn(ctx, "Rejected label request", logger.LoggerInfo{
		ContextFunction: fn,
		Error: &logger.CustomError{
			Code:    validationCode(base, count),
			Message: err.Error(),
			Type:    constant.ErrTypeValidation,
		},
		Data: map[string]interface{}{
			constant.DataBase:  base,
			constant.DataCount: count,
		},
	})
}

func validationCode(base string, count int) string {
	switch {
	case strings.TrimSpace(base) == "":
		return constant.ErrCodeEmptyBase
	case count < 1:
		return constant.ErrCodeInvalidSplitCount
	default:
		return constant.ErrCodeInvalidLayout
	}
}
