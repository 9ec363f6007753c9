package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/prasetyowira/qrlabel/constant"
	"github.com/prasetyowira/qrlabel/domain/label"
)

type Config struct {
	Port           int
	DatabaseURL    string
	AuthUser       string
	AuthPass       string
	CacheSize      int
	LogLevel       string
	LayoutFile     string
	FontPath       string
	QREngine       string
	MaxSplitCount  int
	MaxUploadBytes int64

	Label label.LabelConfig
	Sheet label.SheetConfig
}

// LoadConfig reads .env (when present), the environment, and the optional
// YAML layout file named by LAYOUT_FILE
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Config{
		Port:           getEnvInt("PORT", 8080),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		AuthUser:       getEnv("AUTH_USER", ""),
		AuthPass:       getEnv("AUTH_PASS", ""),
		CacheSize:      getEnvInt("CACHE_SIZE", 1000),
		LogLevel:       getEnv("LOG_LEVEL", "INFO"),
		LayoutFile:     getEnv("LAYOUT_FILE", ""),
		FontPath:       getEnv("FONT_PATH", ""),
		QREngine:       getEnv("QR_ENGINE", constant.QREngineSkip2),
		MaxSplitCount:  getEnvInt("MAX_SPLIT_COUNT", 500),
		MaxUploadBytes: int64(getEnvInt("MAX_UPLOAD_BYTES", 10<<20)),
		Label:          label.DefaultLabelConfig(),
		Sheet:          label.DefaultSheetConfig(),
	}

	if cfg.LayoutFile != "" {
		layout, err := LoadLayoutFile(cfg.LayoutFile)
		if err != nil {
			return Config{}, err
		}
		cfg.Label, cfg.Sheet = layout.Apply(cfg.Label, cfg.Sheet)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the values the service cannot start without
func (c Config) Validate() error {
	switch c.QREngine {
	case constant.QREngineSkip2, constant.QREngineBoombuler:
	default:
		return fmt.Errorf("QR_ENGINE must be %q or %q, got %q", constant.QREngineSkip2, constant.QREngineBoombuler, c.QREngine)
	}
	if c.MaxSplitCount < 1 {
		return fmt.Errorf("MAX_SPLIT_COUNT must be at least 1, got %d", c.MaxSplitCount)
	}
	if c.MaxUploadBytes < 1 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", c.MaxUploadBytes)
	}
	if err := c.Label.Validate(); err != nil {
		return fmt.Errorf("label layout: %w", err)
	}
	if err := c.Sheet.Validate(); err != nil {
		return fmt.Errorf("sheet layout: %w", err)
	}
	return nil
}

// IsProduction selects the JSON production logger
func (c Config) IsProduction() bool {
	return c.LogLevel == "INFO"
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return v
	}
	return defaultValue
}
