package main

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/dukerupert/chorehub/internal/config"
	"github.com/dukerupert/chorehub/internal/database"
	"github.com/dukerupert/chorehub/internal/postgrest"
	"github.com/dukerupert/chorehub/internal/remote"
	"github.com/dukerupert/chorehub/internal/store"
)

// openSQL opens and migrates the database of a sql backend.
func openSQL(cfg *config.Config) (*sql.DB, string, error) {
	var driver, dsn string
	switch cfg.Backend {
	case config.BackendSQLite:
		driver, dsn = database.DriverSQLite, cfg.DBPath
	case config.BackendPostgres:
		driver, dsn = database.DriverPostgres, cfg.PostgresDSN
	default:
		return nil, "", fmt.Errorf("backend %q has no database", cfg.Backend)
	}
	db, err := database.Open(driver, dsn)
	if err != nil {
		return nil, "", fmt.Errorf("open database: %w", err)
	}
	return db, driver, nil
}

// openBackend returns the configured transport and a func releasing it.
func openBackend(cfg *config.Config) (remote.Backend, func(), error) {
	if cfg.Backend == config.BackendREST {
		slog.Info("using hosted rest backend", "url", cfg.RESTURL)
		c := postgrest.New(postgrest.Config{URL: cfg.RESTURL, APIKey: cfg.RESTKey, Timeout: cfg.RESTTimeout})
		return c, func() {}, nil
	}

	db, driver, err := openSQL(cfg)
	if err != nil {
		return nil, nil, err
	}
	slog.Info("using sql backend", "driver", driver)
	return store.New(db, driver), func() { db.Close() }, nil
}
