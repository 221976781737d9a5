package config

import (
	"fmt"
	"strings"

	"github.com/MarkoPoloResearchLab/tegticket/internal/legacy"
	"github.com/MarkoPoloResearchLab/tegticket/internal/render"
	"github.com/MarkoPoloResearchLab/tegticket/pkg/ticketing"
	"go.uber.org/zap/zapcore"
)

const (
	defaultDatabaseURL = "teg.db"
	defaultOutputDir   = "barcodes"
	defaultLegacyPath  = "TEG.accdb"
	defaultLogLevel    = "info"

	StoreEngineGorm = "gorm"
	StoreEnginePgx  = "pgx"
)

// Config aggregates runtime settings for the kiosk tool.
type Config struct {
	DatabaseURL     string
	StoreEngine     string
	OutputDir       string
	TokenPrefix     string
	FontPath        string
	TargetWidth     int
	DPI             int
	VehicleTypes    []string
	LegacyPath      string
	LegacyDriver    string
	LegacyDSNFormat string
	LegacyTable     string
	LogLevel        string
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		DatabaseURL:     defaultDatabaseURL,
		StoreEngine:     StoreEngineGorm,
		OutputDir:       defaultOutputDir,
		TokenPrefix:     ticketing.DefaultTokenPrefix,
		TargetWidth:     render.DefaultTargetWidth,
		DPI:             render.DefaultDPI,
		VehicleTypes:    append([]string(nil), ticketing.DefaultVehicleTypes...),
		LegacyPath:      defaultLegacyPath,
		LegacyDriver:    legacy.DefaultDriver,
		LegacyDSNFormat: legacy.DefaultDSNFormat,
		LegacyTable:     legacy.DefaultTable,
		LogLevel:        defaultLogLevel,
	}
}

// Validate ensures the configuration contains sane values.
func (cfg *Config) Validate() error {
	cfg.DatabaseURL = defaultIfEmpty(cfg.DatabaseURL, defaultDatabaseURL)
	cfg.StoreEngine = strings.ToLower(defaultIfEmpty(cfg.StoreEngine, StoreEngineGorm))
	cfg.OutputDir = defaultIfEmpty(cfg.OutputDir, defaultOutputDir)
	cfg.TokenPrefix = defaultIfEmpty(cfg.TokenPrefix, ticketing.DefaultTokenPrefix)
	cfg.FontPath = strings.TrimSpace(cfg.FontPath)
	cfg.LogLevel = defaultIfEmpty(cfg.LogLevel, defaultLogLevel)
	if cfg.TargetWidth == 0 {
		cfg.TargetWidth = render.DefaultTargetWidth
	}
	if cfg.DPI == 0 {
		cfg.DPI = render.DefaultDPI
	}
	if len(cfg.VehicleTypes) == 0 {
		cfg.VehicleTypes = append([]string(nil), ticketing.DefaultVehicleTypes...)
	}
	if cfg.StoreEngine != StoreEngineGorm && cfg.StoreEngine != StoreEnginePgx {
		return fmt.Errorf("store engine %q is not supported", cfg.StoreEngine)
	}
	if cfg.TargetWidth < 0 {
		return fmt.Errorf("target width must be positive")
	}
	if cfg.DPI < 0 {
		return fmt.Errorf("dpi must be positive")
	}
	if _, err := ticketing.NewTokenGenerator(cfg.TokenPrefix); err != nil {
		return err
	}
	if _, err := ticketing.NewVehicleCatalog(cfg.VehicleTypes); err != nil {
		return err
	}
	if _, err := zapcore.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	legacyConfig := cfg.LegacyConfig()
	if err := legacyConfig.Validate(); err != nil {
		return err
	}
	cfg.LegacyPath = legacyConfig.Path
	cfg.LegacyDriver = legacyConfig.Driver
	cfg.LegacyDSNFormat = legacyConfig.DSNFormat
	cfg.LegacyTable = legacyConfig.Table
	return nil
}

// RenderConfig returns the renderer settings.
func (cfg Config) RenderConfig() render.Config {
	return render.Config{
		OutputDir:   cfg.OutputDir,
		TargetWidth: cfg.TargetWidth,
		DPI:         cfg.DPI,
		FontPath:    cfg.FontPath,
	}
}

// LegacyConfig returns the legacy mirror settings.
func (cfg Config) LegacyConfig() legacy.Config {
	return legacy.Config{
		Path:      cfg.LegacyPath,
		Driver:    cfg.LegacyDriver,
		DSNFormat: cfg.LegacyDSNFormat,
		Table:     cfg.LegacyTable,
	}
}

func defaultIfEmpty(value string, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return strings.TrimSpace(value)
}

// ParseVehicleTypes splits a comma-delimited catalog into a slice.
func ParseVehicleTypes(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	normalized := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			normalized = append(normalized, trimmed)
		}
	}
	return normalized
}
