package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"

	"watchlist-gateway/internal/config"
	"watchlist-gateway/internal/repository"
	"watchlist-gateway/internal/session"
)

// Pool bounds for the credentialed connection. The client must fail fast on
// bad credentials rather than hang, and must not accumulate idle server-side
// resources across a long-running session.
const (
	maxOpenConns    = 5
	acquireTimeout  = 10 * time.Second
	connIdleTimeout = 300 * time.Second
	connMaxLifetime = 1800 * time.Second
)

// Connector opens credentialed, verified connection pools against the
// configured PostgreSQL endpoint.
type Connector struct {
	cfg config.DBConfig
}

// NewConnector creates a Connector for the given endpoint.
func NewConnector(cfg config.DBConfig) *Connector {
	return &Connector{cfg: cfg}
}

// Connect opens a bounded pool with the supplied credentials and verifies it
// before trusting it. Verification failures are wrapped in ErrVerification
// so callers can tell "wrong password" from "right password, wrong grants".
func (c *Connector) Connect(ctx context.Context, username, password string) (session.Store, error) {
	db, err := c.open(ctx, username, password)
	if err != nil {
		return nil, err
	}

	if err := c.verify(ctx, db); err != nil {
		db.Close()
		return nil, errors.Join(ErrVerification, err)
	}

	slog.Info("connected to PostgreSQL", "user", username, "db", c.cfg.DBName)
	return repository.NewWatchListRepository(db), nil
}

func (c *Connector) open(ctx context.Context, username, password string) (*sql.DB, error) {
	db, err := sql.Open("postgres", c.cfg.DSN(username, password))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxOpenConns)
	db.SetConnMaxIdleTime(connIdleTimeout)
	db.SetConnMaxLifetime(connMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, acquireTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", Classify(err))
	}

	return db, nil
}

// verify runs three escalating checks so that failure classes stay
// distinguishable: liveness, table existence, and a read against the table.
func (c *Connector) verify(ctx context.Context, db *sql.DB) error {
	var one int
	if err := db.QueryRowContext(ctx, `SELECT 1`).Scan(&one); err != nil {
		return fmt.Errorf("liveness check: %w", Classify(err))
	}

	var exists bool
	err := db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT FROM information_schema.tables
			WHERE table_schema = 'public'
			AND table_name = 'watch_list'
		)
	`).Scan(&exists)
	if err != nil {
		return fmt.Errorf("schema check: %w", Classify(err))
	}
	if !exists {
		return ErrSchemaMissing
	}

	var count int64
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM watch_list`).Scan(&count); err != nil {
		return fmt.Errorf("read check: %w", Classify(err))
	}

	return nil
}
