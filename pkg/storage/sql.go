package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	_ "github.com/lib/pq"              // registers the "postgres" driver
	_ "github.com/mattn/go-sqlite3"    // registers the "sqlite3" driver
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
	DriverPgx      = "pgx"

	defaultTable = "console_preferences"
)

var tableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// sqlOpenFunc can be overridden in tests.
var sqlOpenFunc = sql.Open

// SQLConfig configures a database/sql backed store.
type SQLConfig struct {
	Driver string
	DSN    string
	Table  string
}

// SQLStore keeps blobs in a single key/value table. The same statements serve
// SQLite and Postgres; only the placeholder style differs.
type SQLStore struct {
	db      *sql.DB
	dialect string
	table   string
}

// NewSQLStore opens the database, pings it and creates the table.
func NewSQLStore(ctx context.Context, cfg SQLConfig) (*SQLStore, error) {
	switch cfg.Driver {
	case DriverSQLite, DriverPostgres, DriverPgx:
	default:
		return nil, fmt.Errorf("storage: unsupported sql driver %q", cfg.Driver)
	}
	table := cfg.Table
	if table == "" {
		table = defaultTable
	}
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("storage: invalid table name %q", table)
	}
	db, err := sqlOpenFunc(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", cfg.Driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: ping %s: %w", cfg.Driver, err)
	}
	store := &SQLStore{db: db, dialect: cfg.Driver, table: table}
	if err := store.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migrate: %w", err)
	}
	return store, nil
}

func (s *SQLStore) migrate(ctx context.Context) error {
	valueType := "TEXT"
	if s.dialect != DriverSQLite {
		valueType = "JSONB"
	}
	stmt := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		key TEXT PRIMARY KEY,
		value %s NOT NULL,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`, s.table, valueType)
	_, err := s.db.ExecContext(ctx, stmt)
	return err
}

func (s *SQLStore) Load(ctx context.Context, key string) ([]byte, error) {
	var value string
	query := s.rebind(fmt.Sprintf(`SELECT value FROM %s WHERE key = ?`, s.table))
	err := s.db.QueryRowContext(ctx, query, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("storage: load %s: %w", key, err)
	}
	return []byte(value), nil
}

func (s *SQLStore) Save(ctx context.Context, key string, data []byte) error {
	query := s.rebind(fmt.Sprintf(`INSERT INTO %s (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`, s.table))
	if _, err := s.db.ExecContext(ctx, query, key, string(data), time.Now().UTC()); err != nil {
		return fmt.Errorf("storage: save %s: %w", key, err)
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, key string) error {
	query := s.rebind(fmt.Sprintf(`DELETE FROM %s WHERE key = ?`, s.table))
	if _, err := s.db.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("storage: delete %s: %w", key, err)
	}
	return nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

// rebind rewrites ? placeholders into $n for the Postgres drivers.
func (s *SQLStore) rebind(query string) string {
	if s.dialect == DriverSQLite {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
