package config

import (
	"errors"
	"testing"

	"github.com/MarkoPoloResearchLab/tegticket/pkg/ticketing"
	"github.com/google/go-cmp/cmp"
)

func TestValidateFillsDefaults(t *testing.T) {
	t.Parallel()
	cfg := Config{}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	want := Default()
	want.LegacyPath = ""
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("unexpected config (-want +got):\n%s", diff)
	}
}

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if cfg.LegacyPath != defaultLegacyPath {
		t.Fatalf("expected legacy path %q, got %q", defaultLegacyPath, cfg.LegacyPath)
	}
}

func TestValidateRejectsInvalidValues(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr error
	}{
		{name: "store engine", mutate: func(cfg *Config) { cfg.StoreEngine = "mongo" }},
		{name: "width", mutate: func(cfg *Config) { cfg.TargetWidth = -5 }},
		{name: "dpi", mutate: func(cfg *Config) { cfg.DPI = -1 }},
		{name: "token prefix", mutate: func(cfg *Config) { cfg.TokenPrefix = "A B" }, wantErr: ticketing.ErrInvalidTokenPrefix},
		{name: "non-ascii token prefix", mutate: func(cfg *Config) { cfg.TokenPrefix = "ТЕГ-" }, wantErr: ticketing.ErrInvalidTokenPrefix},
		{name: "log level", mutate: func(cfg *Config) { cfg.LogLevel = "chatty" }},
		{name: "legacy table", mutate: func(cfg *Config) { cfg.LegacyTable = "Tickets;--" }},
		{name: "legacy dsn", mutate: func(cfg *Config) { cfg.LegacyDSNFormat = "no placeholder" }},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected validation error")
			}
			if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestValidateNormalizesStoreEngine(t *testing.T) {
	t.Parallel()
	cfg := Default()
	cfg.StoreEngine = " PGX "
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if cfg.StoreEngine != StoreEnginePgx {
		t.Fatalf("expected %q, got %q", StoreEnginePgx, cfg.StoreEngine)
	}
}

func TestParseVehicleTypes(t *testing.T) {
	t.Parallel()
	if diff := cmp.Diff([]string{"Car", "Van", "Bus"}, ParseVehicleTypes(" Car, Van ,, Bus ")); diff != "" {
		t.Fatalf("unexpected types (-want +got):\n%s", diff)
	}
	if got := ParseVehicleTypes("   "); len(got) != 0 {
		t.Fatalf("expected empty slice, got %v", got)
	}
}

func TestComponentConfigs(t *testing.T) {
	t.Parallel()
	cfg := Default()
	cfg.OutputDir = "out"
	cfg.FontPath = "/fonts/mono.ttf"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	renderConfig := cfg.RenderConfig()
	if renderConfig.OutputDir != "out" || renderConfig.FontPath != "/fonts/mono.ttf" || renderConfig.TargetWidth != 800 || renderConfig.DPI != 300 {
		t.Fatalf("unexpected render config %+v", renderConfig)
	}
	legacyConfig := cfg.LegacyConfig()
	if legacyConfig.Path != defaultLegacyPath || legacyConfig.Table != "Tickets" {
		t.Fatalf("unexpected legacy config %+v", legacyConfig)
	}
}
