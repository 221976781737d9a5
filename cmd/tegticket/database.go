package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/MarkoPoloResearchLab/tegticket/internal/config"
	"github.com/MarkoPoloResearchLab/tegticket/internal/store/gormstore"
	"github.com/MarkoPoloResearchLab/tegticket/internal/store/pgstore"
	"github.com/MarkoPoloResearchLab/tegticket/pkg/ticketing"
	"github.com/glebarez/sqlite"
	"github.com/jackc/pgx/v5/pgxpool"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const (
	driverPostgres    = "postgres"
	driverSQLite      = "sqlite"
	sqliteMemory      = ":memory:"
	defaultSQLiteFile = "teg.db"
)

// schemaStore is a ticketing.Store that can create its own table.
type schemaStore interface {
	ticketing.Store
	InitSchema(ctx context.Context) error
}

// databaseTarget is the primary store location parsed from --database-url.
type databaseTarget struct {
	driver   string
	location string
}

func (target databaseTarget) isMemory() bool {
	return target.driver == driverSQLite && target.location == sqliteMemory
}

// openStore opens the primary store selected by cfg and makes sure the
// tickets table exists.
func openStore(ctx context.Context, cfg config.Config) (ticketing.Store, func() error, error) {
	target, err := parseDatabaseURL(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}

	var (
		store   schemaStore
		cleanup func() error
	)
	if target.driver == driverPostgres && cfg.StoreEngine == config.StoreEnginePgx {
		pool, err := pgxpool.New(ctx, target.location)
		if err != nil {
			return nil, nil, fmt.Errorf("pgx pool: %w", err)
		}
		store = pgstore.New(pool)
		cleanup = func() error {
			pool.Close()
			return nil
		}
	} else {
		db, err := openGorm(target)
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, err
		}
		store = gormstore.New(db)
		cleanup = sqlDB.Close
	}

	if err := store.InitSchema(ctx); err != nil {
		_ = cleanup()
		return nil, nil, err
	}
	return store, cleanup, nil
}

func openGorm(target databaseTarget) (*gorm.DB, error) {
	gormConfig := &gorm.Config{}
	if target.driver == driverPostgres {
		return gorm.Open(postgres.Open(target.location), gormConfig)
	}
	if !target.isMemory() {
		if err := os.MkdirAll(filepath.Dir(target.location), 0o755); err != nil {
			return nil, fmt.Errorf("sqlite directory: %w", err)
		}
	}
	db, err := gorm.Open(sqlite.Open(target.location), gormConfig)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// One writer keeps the embedded file free of lock contention.
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

// parseDatabaseURL maps a postgres URL, a sqlite:// URL or a bare file path
// onto a databaseTarget. It does not touch the filesystem.
func parseDatabaseURL(raw string) (databaseTarget, error) {
	raw = strings.TrimSpace(raw)
	scheme, _, hasScheme := strings.Cut(raw, "://")
	if !hasScheme {
		return sqliteTarget(raw), nil
	}
	switch strings.ToLower(scheme) {
	case "postgres", "postgresql":
		return databaseTarget{driver: driverPostgres, location: raw}, nil
	case driverSQLite:
		parsed, err := url.Parse(raw)
		if err != nil {
			return databaseTarget{}, fmt.Errorf("parse sqlite url: %w", err)
		}
		location := parsed.Host + parsed.Path
		if location == "" || location == "/" {
			location = defaultSQLiteFile
		}
		return sqliteTarget(location), nil
	default:
		return databaseTarget{}, fmt.Errorf("unsupported database scheme %q", scheme)
	}
}

func sqliteTarget(location string) databaseTarget {
	if location == "" {
		location = defaultSQLiteFile
	}
	if location != sqliteMemory {
		location = filepath.Clean(location)
	}
	return databaseTarget{driver: driverSQLite, location: location}
}
