package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/MarkoPoloResearchLab/tegticket/internal/config"
	"github.com/MarkoPoloResearchLab/tegticket/pkg/ticketing"
	"github.com/spf13/cobra"
)

const (
	flagVehicleType = "type"
	flagBrand       = "brand"
	flagPlate       = "plate"
	flagOut         = "out"
	stdoutPath      = "-"
)

var errMissingOutput = errors.New("export destination is required (use --out, - for stdout)")

type ticketFlags struct {
	vehicleType string
	brand       string
	plate       string
}

func (flags *ticketFlags) register(cmd *cobra.Command, typeUsage string) {
	cmd.Flags().StringVar(&flags.vehicleType, flagVehicleType, "", typeUsage)
	cmd.Flags().StringVar(&flags.brand, flagBrand, "", "vehicle brand")
	cmd.Flags().StringVar(&flags.plate, flagPlate, "", "license plate")
}

func (flags ticketFlags) input() ticketing.TicketInput {
	return ticketing.NewTicketInput(flags.vehicleType, flags.brand, flags.plate)
}

func newTicketCommand(cfg *config.Config) *cobra.Command {
	var flags ticketFlags
	cmd := &cobra.Command{
		Use:   "ticket",
		Short: "Generate the next sequential ticket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApplication(cmd, *cfg, func(ctx context.Context, app *application) error {
				result, err := app.service.GenerateTicket(ctx, flags.input())
				if err != nil {
					return err
				}
				return printResult(cmd.OutOrStdout(), result)
			})
		},
	}
	flags.register(cmd, "vehicle type from the catalog (required)")
	return cmd
}

func newMasterCommand(cfg *config.Config) *cobra.Command {
	var flags ticketFlags
	cmd := &cobra.Command{
		Use:   "master",
		Short: "Generate a MASTER ticket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApplication(cmd, *cfg, func(ctx context.Context, app *application) error {
				result, err := app.service.GenerateMaster(ctx, flags.input())
				if err != nil {
					return err
				}
				return printResult(cmd.OutOrStdout(), result)
			})
		},
	}
	flags.register(cmd, "vehicle type (any value, blank becomes N/A)")
	return cmd
}

func newExportCommand(cfg *config.Config) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every ticket as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outPath = strings.TrimSpace(outPath)
			if outPath == "" {
				return errMissingOutput
			}
			return withApplication(cmd, *cfg, func(ctx context.Context, app *application) error {
				if outPath == stdoutPath {
					_, err := app.service.Export(ctx, cmd.OutOrStdout())
					return err
				}
				if err := exportToFile(ctx, app.service, outPath); err != nil {
					return err
				}
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "Database exported to %s\n", outPath)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&outPath, flagOut, "", "CSV destination path (- for stdout)")
	return cmd
}

func newTypesCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List the configured vehicle types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := ticketing.NewVehicleCatalog(cfg.VehicleTypes)
			if err != nil {
				return err
			}
			for _, vehicleType := range catalog.Types() {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), vehicleType.String()); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func withApplication(cmd *cobra.Command, cfg config.Config, run func(ctx context.Context, app *application) error) (err error) {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := newApplication(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, app.Close())
	}()
	return run(ctx, app)
}

func exportToFile(ctx context.Context, service *ticketing.Service, path string) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	defer func() {
		err = errors.Join(err, file.Close())
	}()
	_, err = service.Export(ctx, file)
	return err
}

func printResult(writer io.Writer, result ticketing.Result) error {
	if _, err := fmt.Fprintln(writer, renderStatus(result)); err != nil {
		return err
	}
	_, err := fmt.Fprintf(writer, "Image: %s\n", result.ImagePath)
	return err
}
