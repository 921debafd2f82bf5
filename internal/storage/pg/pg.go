// Package pg is the remote storage.Backend. Records live in Postgres, ids and
// timestamps are assigned by the database, and changes are pushed to
// subscribers through LISTEN/NOTIFY.
package pg

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/itchan-dev/askanon/internal/storage"
	"github.com/itchan-dev/askanon/shared/config"
	"github.com/itchan-dev/askanon/shared/domain"
	"github.com/itchan-dev/askanon/shared/logger"
)

const notifyChannel = "askanon_questions"

//go:embed migrations/init.sql
var schema string

type Storage struct {
	db      *sql.DB
	connStr string
}

// New connects, pings and applies the schema. A returned error means the
// remote handle is not available.
func New(ctx context.Context, cfg config.Pg) (*Storage, error) {
	logger.Log.Info("connecting to db", "component", "remote_store", "host", cfg.Host, "dbname", cfg.Dbname)
	connStr := ConnString(cfg)
	db, err := Connect(ctx, connStr)
	if err != nil {
		return nil, err
	}
	s := &Storage{db: db, connStr: connStr}
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	logger.Log.Info("successfully connected to db", "component", "remote_store")
	return s, nil
}

func ConnString(cfg config.Pg) string {
	sslmode := cfg.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Dbname, sslmode)
}

// ConnectionConfig holds database connection pool settings. Listeners use
// their own connections outside the pool.
type ConnectionConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
		ConnMaxIdleTime: 1 * time.Minute,
	}
}

func Connect(ctx context.Context, connStr string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	pool := DefaultConnectionConfig()
	db.SetMaxOpenConns(pool.MaxOpenConns)
	db.SetMaxIdleConns(pool.MaxIdleConns)
	db.SetConnMaxLifetime(pool.ConnMaxLifetime)
	db.SetConnMaxIdleTime(pool.ConnMaxIdleTime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// Migrate applies the idempotent schema.
func (s *Storage) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (s *Storage) Mode() storage.Mode {
	return storage.ModeRemote
}

// Now returns the server timestamp marker; Postgres resolves it at commit.
func (s *Storage) Now() domain.TimeValue {
	return domain.ServerTime()
}

// ReadAll is push-only for the remote backend.
func (s *Storage) ReadAll(ctx context.Context) (domain.Snapshot, error) {
	return nil, storage.ErrPushOnly
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Storage) Close() error {
	return s.db.Close()
}
