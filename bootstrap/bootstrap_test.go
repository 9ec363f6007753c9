package bootstrap

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/prasetyowira/qrlabel/config"
	"github.com/prasetyowira/qrlabel/constant"
	"github.com/prasetyowira/qrlabel/domain/label"
	"github.com/prasetyowira/qrlabel/infrastructure/qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(dbPath, engine string) config.Config {
	return config.Config{
		DatabaseURL:    dbPath,
		CacheSize:      32,
		QREngine:       engine,
		MaxSplitCount:  50,
		MaxUploadBytes: 1 << 20,
		Label:          label.DefaultLabelConfig(),
		Sheet:          label.DefaultSheetConfig(),
	}
}

func TestNewRenderer(t *testing.T) {
	skip2, err := NewRenderer(constant.QREngineSkip2)
	require.NoError(t, err)
	assert.IsType(t, &qrcode.Generator{}, skip2)

	boombuler, err := NewRenderer(constant.QREngineBoombuler)
	require.NoError(t, err)
	assert.IsType(t, &qrcode.BarcodeGenerator{}, boombuler)

	_, err = NewRenderer("zxing")
	assert.Error(t, err)
}

func TestNew_WithoutHistory(t *testing.T) {
	// Arrange
	app, err := New(testConfig("", constant.QREngineSkip2))
	require.NoError(t, err)
	defer app.Close()

	// Act
	runs, err := app.Service.ListRuns(context.Background(), 10)

	// Assert
	require.NoError(t, err)
	assert.Empty(t, runs)
	assert.NotEmpty(t, app.Fonts.Name())
}

func TestNew_InvalidSettings(t *testing.T) {
	cfg := testConfig("", constant.QREngineSkip2)
	cfg.Label.BorderThickness = 9

	app, err := New(cfg)

	assert.ErrorIs(t, err, label.ErrInvalidInput)
	assert.Nil(t, app)
}

func TestPipeline_EndToEnd(t *testing.T) {
	for _, engine := range []string{constant.QREngineSkip2, constant.QREngineBoombuler} {
		t.Run(engine, func(t *testing.T) {
			// Arrange
			app, err := New(testConfig(filepath.Join(t.TempDir(), "runs.db"), engine))
			require.NoError(t, err)
			defer app.Close()
			ctx := context.Background()

			// Act
			result, err := app.Service.Generate(ctx, label.GenerateRequest{Text: "ABC", Count: 3})

			// Assert
			require.NoError(t, err)
			assert.Equal(t, []string{"ABC-1", "ABC-2", "ABC-3"}, result.Payloads)
			assert.Len(t, result.Document.Pages, 3)
			assert.True(t, bytes.HasPrefix(result.Bytes, []byte("%PDF-")))

			// each composed label still scans back to its own payload
			for i, lbl := range result.Labels {
				text, err := app.Service.Decode(ctx, lbl.Canvas)
				require.NoError(t, err)
				assert.Equal(t, result.Payloads[i], text)
			}

			runs, err := app.Service.ListRuns(ctx, 10)
			require.NoError(t, err)
			require.Len(t, runs, 1)
			assert.Equal(t, result.RunID, runs[0].ID)
			assert.Equal(t, 3, runs[0].Pages)
		})
	}
}

func TestPipeline_FromImage(t *testing.T) {
	// Arrange
	app, err := New(testConfig("", constant.QREngineSkip2))
	require.NoError(t, err)
	defer app.Close()
	ctx := context.Background()

	source, err := app.QR.Render("BIN-042")
	require.NoError(t, err)

	// Act
	result, err := app.Service.GenerateFromImage(ctx, source, label.GenerateRequest{Count: 2, Layout: label.LayoutStack})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []string{"BIN-042-1", "BIN-042-2"}, result.Payloads)
	assert.Len(t, result.Document.Pages, 1)
}

func TestNew_DefaultConfigPersistsNothing(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("DATABASE_URL", "")
	require.NoError(t, os.Unsetenv("DATABASE_URL"))
	t.Setenv("LAYOUT_FILE", "")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)
	app, err := New(cfg)
	require.NoError(t, err)
	defer app.Close()

	// Act
	_, err = app.Service.Generate(context.Background(), label.GenerateRequest{Text: "SECRET-SKU-77", Count: 1})

	// Assert
	require.NoError(t, err)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
