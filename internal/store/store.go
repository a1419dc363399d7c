package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"
	"github.com/go-sql-driver/mysql"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Config selects and configures the backing database.
type Config struct {
	// Driver is "sqlite" (default) or "mysql".
	Driver string

	// Path is the SQLite file path or DSN.
	Path string

	MySQL MySQLConfig
}

// MySQLConfig holds connection settings for a shared MySQL activity store.
type MySQLConfig struct {
	Host            string
	Port            int
	Database        string
	Username        string
	Password        string
	TLS             bool
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

// Store holds the database handle and the ent SQL dialect used to build queries.
// Every repository is a thin view over the same Store.
type Store struct {
	db      *sql.DB
	drv     *entsql.Driver
	dialect string
}

// Open connects to the configured database and runs auto-migration.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	switch cfg.Driver {
	case "", "sqlite":
		return OpenSQLite(ctx, cfg.Path)
	case "mysql":
		return openMySQL(ctx, cfg.MySQL)
	default:
		return nil, fmt.Errorf("unknown store driver: %q", cfg.Driver)
	}
}

// OpenSQLite creates a new Store connected to the SQLite database at dsn.
// It applies recommended pragmas and runs auto-migration.
func OpenSQLite(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", withForeignKeys(dsn))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	s := New(db, dialect.SQLite)
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func openMySQL(ctx context.Context, cfg MySQLConfig) (*Store, error) {
	mysqlCfg := mysql.NewConfig()
	mysqlCfg.User = cfg.Username
	mysqlCfg.Passwd = cfg.Password
	mysqlCfg.Net = "tcp"
	mysqlCfg.Addr = fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	mysqlCfg.DBName = cfg.Database
	mysqlCfg.ParseTime = true
	mysqlCfg.Loc = time.UTC
	if cfg.TLS {
		mysqlCfg.TLSConfig = "true"
	}

	db, err := sql.Open("mysql", mysqlCfg.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("open database connection: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	s := New(db, dialect.MySQL)
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an already-open database. No migration is run.
func New(db *sql.DB, dialectName string) *Store {
	return &Store{
		db:      db,
		drv:     entsql.OpenDB(dialectName, db),
		dialect: dialectName,
	}
}

// Migrate creates or alters all tables to match the current schema.
func (s *Store) Migrate(ctx context.Context) error {
	m, err := schema.NewMigrate(s.drv)
	if err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	if err := m.Create(ctx, Tables...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.drv.Close()
}

// ActivityRepo returns the activity ledger backed by this store.
func (s *Store) ActivityRepo() ActivityRepo { return &activityRepo{s: s} }

// BadgeRepo returns the badge ledger backed by this store.
func (s *Store) BadgeRepo() BadgeRepo { return &badgeRepo{s: s} }

// StudentRepo returns the per-student summary table backed by this store.
func (s *Store) StudentRepo() StudentRepo { return &studentRepo{s: s} }

// UsageRepo returns the daily usage aggregates backed by this store.
func (s *Store) UsageRepo() UsageRepo { return &usageRepo{s: s} }

// LLMRepo returns the LLM request log backed by this store.
func (s *Store) LLMRepo() LLMRepo { return &llmRepo{s: s} }

func (s *Store) builder() *entsql.DialectBuilder {
	return entsql.Dialect(s.dialect)
}

// applyPragmas configures SQLite for concurrent readers and a single writer.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// withForeignKeys asks the driver to enable foreign keys on every pooled
// connection, not only the one applyPragmas happens to run on. The ent
// migrator refuses to run without it.
func withForeignKeys(dsn string) string {
	if strings.Contains(dsn, "foreign_keys") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)"
}

// DefaultDBPath resolves the database file path in priority order:
// 1. SEATUTOR_DB environment variable
// 2. $XDG_DATA_HOME/seatutor/seatutor.db
// 3. ~/.local/share/seatutor/seatutor.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("SEATUTOR_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "seatutor", "seatutor.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
