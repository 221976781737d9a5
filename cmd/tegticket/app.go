package main

import (
	"context"
	"errors"
	"time"

	"github.com/MarkoPoloResearchLab/tegticket/internal/config"
	"github.com/MarkoPoloResearchLab/tegticket/internal/legacy"
	"github.com/MarkoPoloResearchLab/tegticket/internal/oplog"
	"github.com/MarkoPoloResearchLab/tegticket/internal/render"
	"github.com/MarkoPoloResearchLab/tegticket/pkg/ticketing"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mirroredStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	primaryOnlyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	rejectedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

// application holds the wired service and everything that must be closed
// when the command finishes.
type application struct {
	service  *ticketing.Service
	renderer *render.Renderer
	logger   *zap.Logger
	closers  []func() error
}

func newLogger(level string) (*zap.Logger, error) {
	parsed, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	loggerConfig := zap.NewProductionConfig()
	loggerConfig.Level = zap.NewAtomicLevelAt(parsed)
	return loggerConfig.Build()
}

func newApplication(ctx context.Context, cfg config.Config) (*application, error) {
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	app := &application{logger: logger}

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.closers = append(app.closers, closeStore)

	mirror, err := legacy.New(cfg.LegacyConfig())
	if err != nil {
		app.Close()
		return nil, err
	}
	if available, reason := mirror.Available(); !available {
		logger.Info("legacy store unavailable", zap.String("path", cfg.LegacyPath), zap.String("reason", reason))
	}

	tokens, err := ticketing.NewTokenGenerator(cfg.TokenPrefix)
	if err != nil {
		app.Close()
		return nil, err
	}
	catalog, err := ticketing.NewVehicleCatalog(cfg.VehicleTypes)
	if err != nil {
		app.Close()
		return nil, err
	}

	app.renderer = render.New(cfg.RenderConfig())
	app.closers = append(app.closers, app.renderer.Close)
	logger.Debug("renderer ready",
		zap.String("output_dir", app.renderer.OutputDir()),
		zap.String("font", app.renderer.FontSource()),
	)

	service, err := ticketing.NewService(
		store,
		app.renderer,
		time.Now,
		ticketing.WithMirror(mirror),
		ticketing.WithTokenGenerator(tokens),
		ticketing.WithVehicleCatalog(catalog),
		ticketing.WithOperationLogger(oplog.New(logger)),
	)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.service = service
	return app, nil
}

// Close releases resources in reverse order of acquisition.
func (app *application) Close() error {
	var closeErr error
	for index := len(app.closers) - 1; index >= 0; index-- {
		closeErr = errors.Join(closeErr, app.closers[index]())
	}
	app.closers = nil
	_ = app.logger.Sync()
	return closeErr
}

func renderStatus(result ticketing.Result) string {
	if result.Mirror.Mirrored() {
		return mirroredStyle.Render(result.StatusMessage())
	}
	return primaryOnlyStyle.Render(result.StatusMessage())
}

func renderRejection(err error) string {
	return rejectedStyle.Render(err.Error())
}
