// Package repository implements the reservation engine's Store over
// MySQL.  All timestamps are stored in UTC; the connection must use
// parseTime=true&loc=UTC so DATETIME columns scan into time.Time
// consistently.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/sethkline/studio-scheduler-sub004/internal/model"
	"github.com/sethkline/studio-scheduler-sub004/internal/reservation"
)

// Store is the MySQL-backed persistence layer.  Mutating flows run
// inside WithTx; row locks (SELECT ... FOR UPDATE) scope contention to
// the involved seat rows only.
type Store struct {
	db *sql.DB
}

// NewStore returns a Store bound to the given database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying handle for migrations and health checks.
func (s *Store) DB() *sql.DB { return s.db }

// GetEvent loads an event by id.
func (s *Store) GetEvent(ctx context.Context, eventID uint64) (*model.Event, error) {
	const q = `SELECT id, title, starts_at, status, created_at FROM events WHERE id = ?`
	var ev model.Event
	err := s.q(ctx).QueryRowContext(ctx, q, eventID).
		Scan(&ev.ID, &ev.Title, &ev.StartsAt, &ev.Status, &ev.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, reservation.ErrEventNotFound
		}
		return nil, err
	}
	return &ev, nil
}
