// Package bootstrap builds the label service and its collaborators from a
// loaded configuration. The HTTP server and the CLI share it.
package bootstrap

import (
	"errors"
	"fmt"

	"github.com/prasetyowira/qrlabel/config"
	"github.com/prasetyowira/qrlabel/constant"
	"github.com/prasetyowira/qrlabel/domain/label"
	"github.com/prasetyowira/qrlabel/infrastructure/cache"
	"github.com/prasetyowira/qrlabel/infrastructure/db"
	"github.com/prasetyowira/qrlabel/infrastructure/fonts"
	appLogger "github.com/prasetyowira/qrlabel/infrastructure/logger"
	"github.com/prasetyowira/qrlabel/infrastructure/pdf"
	"github.com/prasetyowira/qrlabel/infrastructure/qrcode"
)

// DocumentTitle is written into the PDF metadata
const DocumentTitle = "QR Labels"

// App holds the wired service plus the standalone QR generator
type App struct {
	Service *label.Service
	QR      *qrcode.Generator
	Fonts   *fonts.Resolver

	repo *db.SQLiteRepository
}

// New wires every collaborator named by cfg. Run history is skipped when
// cfg.DatabaseURL is empty.
func New(cfg config.Config) (*App, error) {
	renderer, err := NewRenderer(cfg.QREngine)
	if err != nil {
		return nil, err
	}

	resolver := fonts.NewResolver(fonts.DefaultStrategies(cfg.FontPath)...)

	deps := label.Dependencies{
		Renderer: renderer,
		Decoder:  qrcode.NewDecoder(),
		Exporter: pdf.NewWriter(DocumentTitle),
		Fonts:    resolver,
	}
	if cfg.CacheSize > 0 {
		deps.Cache = cache.NewNamespaceLRU(cfg.CacheSize)
	}

	app := &App{
		QR:    qrcode.NewGenerator(qrcode.DefaultModuleSize),
		Fonts: resolver,
	}

	if cfg.DatabaseURL != "" {
		repo, err := db.NewSQLiteRepository(cfg.DatabaseURL)
		if err != nil {
			appLogger.Error(constant.MsgFailedToInitDB, appLogger.LoggerInfo{
				ContextFunction: constant.CtxMain,
				Error: &appLogger.CustomError{
					Code:    constant.ErrCodeAppDBInit,
					Message: err.Error(),
					Type:    constant.ErrTypeApp,
				},
				Data: map[string]interface{}{
					constant.DataDBPath: cfg.DatabaseURL,
				},
			})
			return nil, fmt.Errorf("open run history: %w", err)
		}
		app.repo = repo
		deps.Runs = repo
	} else {
		appLogger.Info(constant.MsgHistoryDisabled, appLogger.LoggerInfo{
			ContextFunction: constant.CtxMain,
		})
	}

	service, err := label.NewService(deps, label.Settings{
		Label:         cfg.Label,
		Sheet:         cfg.Sheet,
		MaxSplitCount: cfg.MaxSplitCount,
	})
	if err != nil {
		return nil, errors.Join(err, app.Close())
	}
	app.Service = service

	return app, nil
}

// NewRenderer returns the QR engine registered under name
func NewRenderer(name string) (label.Renderer, error) {
	switch name {
	case "", constant.QREngineSkip2:
		return qrcode.NewGenerator(qrcode.DefaultModuleSize), nil
	case constant.QREngineBoombuler:
		return qrcode.NewBarcodeGenerator(qrcode.DefaultModuleSize), nil
	}
	return nil, fmt.Errorf("unknown QR engine %q", name)
}

// Close releases the run history database, if one was opened
func (a *App) Close() error {
	if a.repo == nil {
		return nil
	}
	return a.repo.Close()
}
