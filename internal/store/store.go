// Package store persists score reports, answer keys, and settings in
// PostgreSQL.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

// ErrNotFound is returned when a lookup matches no rows.
var ErrNotFound = errors.New("record not found")

// SQLExecutor is the query surface shared by *sqlx.DB and *sqlx.Tx.
type SQLExecutor interface {
	sqlx.ExtContext
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row
	Rebind(query string) string
}

// Store wraps a PostgreSQL connection pool.
type Store struct {
	q   SQLExecutor
	db  *sqlx.DB
	log *logrus.Logger
}

// Open connects to PostgreSQL and verifies the connection with a ping.
func Open(ctx context.Context, dsn string, log *logrus.Logger) (*Store, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		log.WithFields(logrus.Fields{
			"error": err.Error(),
		}).Error("Failed to connect to database")
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &Store{q: db, db: db, log: log}, nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate creates the schema if it does not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	for _, query := range migrations {
		if _, err := s.q.ExecContext(ctx, query); err != nil {
			s.log.WithFields(logrus.Fields{
				"error": err.Error(),
			}).Error("Migration failed")
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}
