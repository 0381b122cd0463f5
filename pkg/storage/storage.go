// Package storage provides persistence backends for console preference blobs.
//
// Every backend stores opaque bytes under a string key. Callers own the encoding;
// the console stores one JSON document per viewer.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when no blob exists for a key.
var ErrNotFound = errors.New("storage: not found")

// Store reads and writes preference blobs.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Config selects and configures a backend.
type Config struct {
	// Driver is one of memory, file, sqlite3, postgres, pgx, redis.
	Driver string `yaml:"driver" json:"driver"`
	// DSN is the database connection string, the file directory, or the redis address.
	DSN      string `yaml:"dsn" json:"dsn"`
	Password string `yaml:"password" json:"password"`
	DB       int    `yaml:"db" json:"db"`
	// Table overrides the SQL table name.
	Table string `yaml:"table" json:"table"`
}

// Open builds the backend described by cfg.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", "memory":
		return NewMemoryStore(), nil
	case "file":
		return NewFileStore(cfg.DSN)
	case DriverSQLite, DriverPostgres, DriverPgx:
		return NewSQLStore(ctx, SQLConfig{Driver: strings.ToLower(cfg.Driver), DSN: cfg.DSN, Table: cfg.Table})
	case "redis":
		return NewRedisStore(ctx, RedisConfig{Addr: cfg.DSN, Password: cfg.Password, DB: cfg.DB})
	default:
		return nil, fmt.Errorf("storage: unsupported driver %q", cfg.Driver)
	}
}
