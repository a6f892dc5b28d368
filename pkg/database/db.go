// Package database connects to the Postgres report archive and applies its migrations.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// ErrNotConnected is returned by Ping before Start has opened the pool.
var ErrNotConnected = errors.New("postgres not connected")

// DB is the subset of *sqlx.DB the repositories use.
type DB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

// Config holds Postgres connection settings.
type Config struct {
	DSN                 string
	DatabaseName        string
	MaxOpenConns        int
	ConnMaxLifetime     time.Duration
	MigrationFolderPath string
	MigrationVersion    uint
	AutoRollback        bool
}

// Database owns the connection pool and takes part in startup.
type Database struct {
	cfg    Config
	db     *sqlx.DB
	logger ectologger.Logger
}

// New creates a Database. The connection is opened by Start.
func New(cfg Config, logger ectologger.Logger) *Database {
	return &Database{
		cfg:    cfg,
		logger: logger,
	}
}

func (d *Database) GetName() string     { return "postgres" }
func (d *Database) DependsOn() []string { return nil }

// Start connects and migrates the schema.
func (d *Database) Start(ctx context.Context) error {
	db, err := sqlx.ConnectContext(ctx, "postgres", d.cfg.DSN)
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if d.cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(d.cfg.MaxOpenConns)
	}
	if d.cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(d.cfg.ConnMaxLifetime)
	}

	driver, err := postgres.WithInstance(db.DB, &postgres.Config{DatabaseName: d.cfg.DatabaseName})
	if err != nil {
		db.Close()
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	ms := NewMigrationService(d.logger, &MigrationConfig{
		MigrationFolderPath: d.cfg.MigrationFolderPath,
		Version:             d.cfg.MigrationVersion,
		AutoRollback:        d.cfg.AutoRollback,
	})
	if err := ms.Migrate(d.cfg.DatabaseName, driver); err != nil {
		db.Close()
		return err
	}

	d.db = db
	d.logger.WithContext(ctx).WithField("database", d.cfg.DatabaseName).Info("Connected to postgres")
	return nil
}

// Stop closes the pool.
func (d *Database) Stop(_ context.Context) error {
	if d.db == nil {
		return nil
	}
	err := d.db.Close()
	d.db = nil
	return err
}

// DB returns the open pool, or nil before Start.
func (d *Database) DB() DB {
	if d.db == nil {
		return nil
	}
	return d.db
}

// Ping checks the connection.
func (d *Database) Ping(ctx context.Context) error {
	if d.db == nil {
		return ErrNotConnected
	}
	return d.db.PingContext(ctx)
}
