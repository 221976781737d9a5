// Package legacy mirrors ticket records into a pre-existing desktop database
// file. Every outcome is reported as a ticketing.MirrorResult; nothing here
// returns an error to the ticket flow.
package legacy

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/MarkoPoloResearchLab/tegticket/pkg/ticketing"
	"github.com/jmoiron/sqlx"
)

const (
	DefaultDriver    = "odbc"
	DefaultDSNFormat = "Driver={Microsoft Access Driver (*.mdb, *.accdb)};DBQ=%s;"
	DefaultTable     = "Tickets"

	reasonNotConfigured = "legacy store not configured"
	reasonFileMissing   = "legacy database not found"
)

var (
	tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

	errInvalidTable     = errors.New("invalid legacy table name")
	errInvalidDSNFormat = errors.New("legacy dsn format must contain %s")
)

// Config locates the legacy database.
type Config struct {
	Path      string
	Driver    string
	DSNFormat string
	Table     string
}

// Validate fills defaults and rejects unusable settings.
func (cfg *Config) Validate() error {
	cfg.Path = strings.TrimSpace(cfg.Path)
	cfg.Driver = defaultIfEmpty(cfg.Driver, DefaultDriver)
	cfg.DSNFormat = defaultIfEmpty(cfg.DSNFormat, DefaultDSNFormat)
	cfg.Table = defaultIfEmpty(cfg.Table, DefaultTable)
	if strings.Count(cfg.DSNFormat, "%s") != 1 {
		return errInvalidDSNFormat
	}
	if !tableNamePattern.MatchString(cfg.Table) {
		return fmt.Errorf("%w: %q", errInvalidTable, cfg.Table)
	}
	return nil
}

func defaultIfEmpty(value string, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return strings.TrimSpace(value)
}

// Mirror implements ticketing.Mirror over database/sql via sqlx.
type Mirror struct {
	cfg         Config
	insertQuery string
}

// New validates cfg and returns a Mirror. A blank path yields a Mirror that
// always reports the store as not configured.
func New(cfg Config) (*Mirror, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	insertQuery := fmt.Sprintf(
		"INSERT INTO %s (Code, Client, CarType, Brand, Plate, CreatedAt, Filename) VALUES (:code, :client, :car_type, :brand, :plate, :created_at, :filename)",
		cfg.Table,
	)
	return &Mirror{cfg: cfg, insertQuery: insertQuery}, nil
}

type legacyRow struct {
	Code      string `db:"code"`
	Client    string `db:"client"`
	CarType   string `db:"car_type"`
	Brand     string `db:"brand"`
	Plate     string `db:"plate"`
	CreatedAt string `db:"created_at"`
	Filename  string `db:"filename"`
}

// Available reports whether a mirror attempt would be made, with the reason
// when it would not.
func (mirror *Mirror) Available() (bool, string) {
	if mirror.cfg.Path == "" {
		return false, reasonNotConfigured
	}
	if !slices.Contains(sql.Drivers(), mirror.cfg.Driver) {
		return false, fmt.Sprintf("driver %q not registered", mirror.cfg.Driver)
	}
	info, err := os.Stat(mirror.cfg.Path)
	if err != nil || info.IsDir() {
		return false, reasonFileMissing
	}
	return true, ""
}

// Mirror writes record into the legacy table.
func (mirror *Mirror) Mirror(ctx context.Context, record ticketing.MirrorRecord) ticketing.MirrorResult {
	if available, reason := mirror.Available(); !available {
		return ticketing.MirrorUnavailable(reason)
	}
	if err := mirror.insert(ctx, record); err != nil {
		return ticketing.MirrorFailed(err)
	}
	return ticketing.MirrorSucceeded()
}

func (mirror *Mirror) insert(ctx context.Context, record ticketing.MirrorRecord) error {
	absolutePath, err := filepath.Abs(mirror.cfg.Path)
	if err != nil {
		return err
	}
	db, err := sqlx.Open(mirror.cfg.Driver, fmt.Sprintf(mirror.cfg.DSNFormat, absolutePath))
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	if err := db.PingContext(ctx); err != nil {
		return err
	}
	query, args, err := sqlx.Named(mirror.insertQuery, legacyRow{
		Code:      record.Token.String(),
		Client:    "",
		CarType:   record.VehicleType.String(),
		Brand:     record.Brand,
		Plate:     record.Plate,
		CreatedAt: record.CreatedAt.Format(ticketing.TimestampLayout),
		Filename:  record.Filename,
	})
	if err != nil {
		return err
	}
	// Drivers sqlx does not know keep the ? placeholders.
	_, err = db.ExecContext(ctx, db.Rebind(query), args...)
	return err
}
