package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/MarkoPoloResearchLab/tegticket/internal/config"
	"github.com/MarkoPoloResearchLab/tegticket/pkg/ticketing"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	flagConfig          = "config"
	flagDatabaseURL     = "database-url"
	flagStoreEngine     = "store-engine"
	flagOutputDir       = "output-dir"
	flagTokenPrefix     = "token-prefix"
	flagFontPath        = "font-path"
	flagTargetWidth     = "target-width"
	flagDPI             = "dpi"
	flagVehicleTypes    = "vehicle-types"
	flagLegacyPath      = "legacy-path"
	flagLegacyDriver    = "legacy-driver"
	flagLegacyDSNFormat = "legacy-dsn-format"
	flagLegacyTable     = "legacy-table"
	flagLogLevel        = "log-level"
	envPrefix           = "TEG"
)

var configFlags = []string{
	flagDatabaseURL,
	flagStoreEngine,
	flagOutputDir,
	flagTokenPrefix,
	flagFontPath,
	flagTargetWidth,
	flagDPI,
	flagVehicleTypes,
	flagLegacyPath,
	flagLegacyDriver,
	flagLegacyDSNFormat,
	flagLegacyTable,
	flagLogLevel,
}

func main() {
	rootCmd := newRootCommand()
	if err := rootCmd.Execute(); err != nil {
		message := err.Error()
		if ticketing.IsValidation(err) {
			message = renderRejection(err)
		}
		fmt.Fprintf(os.Stderr, "tegticket: %s\n", message)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cfg := config.Default()
	cmd := &cobra.Command{
		Use:           "tegticket",
		Short:         "Car-wash ticket generator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentPreRunE = func(subCmd *cobra.Command, args []string) error {
		return loadConfig(cmd, &cfg)
	}

	defaults := config.Default()
	flags := cmd.PersistentFlags()
	flags.String(flagConfig, "", "optional config file (yaml, toml or json)")
	flags.String(flagDatabaseURL, defaults.DatabaseURL, "primary store: sqlite path, sqlite:// URL or postgres:// URL")
	flags.String(flagStoreEngine, defaults.StoreEngine, "store implementation for postgres URLs (gorm or pgx)")
	flags.String(flagOutputDir, defaults.OutputDir, "directory for ticket images")
	flags.String(flagTokenPrefix, defaults.TokenPrefix, "prefix for sequential tokens")
	flags.String(flagFontPath, defaults.FontPath, "TrueType/OpenType font for the ticket text (falls back to Go Mono)")
	flags.Int(flagTargetWidth, defaults.TargetWidth, "ticket image width in pixels")
	flags.Int(flagDPI, defaults.DPI, "DPI recorded in the ticket image")
	flags.String(flagVehicleTypes, strings.Join(defaults.VehicleTypes, ","), "comma-separated vehicle catalog")
	flags.String(flagLegacyPath, defaults.LegacyPath, "legacy database file to mirror into (empty disables)")
	flags.String(flagLegacyDriver, defaults.LegacyDriver, "database/sql driver for the legacy file")
	flags.String(flagLegacyDSNFormat, defaults.LegacyDSNFormat, "legacy DSN; %s receives the absolute file path")
	flags.String(flagLegacyTable, defaults.LegacyTable, "legacy table name")
	flags.String(flagLogLevel, defaults.LogLevel, "log level (debug, info, warn, error)")

	cmd.AddCommand(
		newTicketCommand(&cfg),
		newMasterCommand(&cfg),
		newExportCommand(&cfg),
		newTypesCommand(&cfg),
	)
	return cmd
}

func loadConfig(rootCmd *cobra.Command, cfg *config.Config) error {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	flags := rootCmd.PersistentFlags()
	for _, flagName := range configFlags {
		if err := v.BindPFlag(flagName, flags.Lookup(flagName)); err != nil {
			return err
		}
	}

	configPath, err := flags.GetString(flagConfig)
	if err != nil {
		return err
	}
	if strings.TrimSpace(configPath) != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config: %w", err)
		}
	}

	cfg.DatabaseURL = strings.TrimSpace(v.GetString(flagDatabaseURL))
	cfg.StoreEngine = strings.TrimSpace(v.GetString(flagStoreEngine))
	cfg.OutputDir = strings.TrimSpace(v.GetString(flagOutputDir))
	cfg.TokenPrefix = v.GetString(flagTokenPrefix)
	cfg.FontPath = strings.TrimSpace(v.GetString(flagFontPath))
	cfg.TargetWidth = v.GetInt(flagTargetWidth)
	cfg.DPI = v.GetInt(flagDPI)
	cfg.VehicleTypes = vehicleTypes(v)
	cfg.LegacyPath = strings.TrimSpace(v.GetString(flagLegacyPath))
	cfg.LegacyDriver = strings.TrimSpace(v.GetString(flagLegacyDriver))
	cfg.LegacyDSNFormat = strings.TrimSpace(v.GetString(flagLegacyDSNFormat))
	cfg.LegacyTable = strings.TrimSpace(v.GetString(flagLegacyTable))
	cfg.LogLevel = strings.TrimSpace(v.GetString(flagLogLevel))

	return cfg.Validate()
}

// vehicleTypes accepts either a list (config file) or a comma-separated string.
func vehicleTypes(v *viper.Viper) []string {
	if values, ok := v.Get(flagVehicleTypes).([]interface{}); ok {
		types := make([]string, 0, len(values))
		for _, value := range values {
			types = append(types, fmt.Sprint(value))
		}
		return config.ParseVehicleTypes(strings.Join(types, ","))
	}
	return config.ParseVehicleTypes(v.GetString(flagVehicleTypes))
}
