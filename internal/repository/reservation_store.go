package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/sethkline/studio-scheduler-sub004/internal/model"
	"github.com/sethkline/studio-scheduler-sub004/internal/reservation"
)

const reservationColumns = `id, event_id, session_id, email, phone, token,
	total_amount_cents, extension_count, is_active, created_at, expires_at`

// CreateReservation inserts a new reservation row.
func (s *Store) CreateReservation(ctx context.Context, r *model.Reservation) error {
	const q = `INSERT INTO reservations
	           (id, event_id, session_id, email, phone, token, total_amount_cents, extension_count, is_active, created_at, expires_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.q(ctx).ExecContext(ctx, q,
		r.ID, r.EventID, r.SessionID, r.Email, r.Phone, r.Token,
		r.TotalAmountCents, r.ExtensionCount, r.IsActive,
		r.CreatedAt.UTC(), r.ExpiresAt.UTC(),
	)
	return err
}

// AddReservationSeats inserts the join rows recording which seats the
// reservation holds, one statement for the whole set.
func (s *Store) AddReservationSeats(ctx context.Context, seats []model.ReservationSeat) error {
	if len(seats) == 0 {
		return nil
	}
	query := `INSERT INTO reservation_seats (reservation_id, event_id, seat_id, price_cents) VALUES `
	args := make([]interface{}, 0, len(seats)*4)
	for i, rs := range seats {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?)"
		args = append(args, rs.ReservationID, rs.EventID, rs.SeatID, rs.PriceCents)
	}
	_, err := s.q(ctx).ExecContext(ctx, query, args...)
	return err
}

// ReservationByToken looks a reservation up by its bearer token.
func (s *Store) ReservationByToken(ctx context.Context, token string) (*model.Reservation, error) {
	q := `SELECT ` + reservationColumns + ` FROM reservations WHERE token = ?`
	if inTx(ctx) {
		q += ` FOR UPDATE`
	}
	return s.scanReservation(s.q(ctx).QueryRowContext(ctx, q, token))
}

// ReservationByID looks a reservation up by its id.
func (s *Store) ReservationByID(ctx context.Context, id string) (*model.Reservation, error) {
	q := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`
	if inTx(ctx) {
		q += ` FOR UPDATE`
	}
	return s.scanReservation(s.q(ctx).QueryRowContext(ctx, q, id))
}

// ActiveReservationBySession returns the live hold a session has on an
// event, or nil when it has none.  One live hold per session per event
// is enforced on top of this by the manager.
func (s *Store) ActiveReservationBySession(ctx context.Context, eventID uint64, sessionID string) (*model.Reservation, error) {
	q := `SELECT ` + reservationColumns + ` FROM reservations
	      WHERE event_id = ? AND session_id = ? AND is_active = 1
	      LIMIT 1`
	if inTx(ctx) {
		q += ` FOR UPDATE`
	}
	res, err := s.scanReservation(s.q(ctx).QueryRowContext(ctx, q, eventID, sessionID))
	if errors.Is(err, reservation.ErrReservationNotFound) {
		return nil, nil
	}
	return res, err
}

// SeatIDsForReservation lists the seats recorded under a reservation,
// ordered for deterministic output.
func (s *Store) SeatIDsForReservation(ctx context.Context, reservationID string) ([]uint64, error) {
	const q = `SELECT seat_id FROM reservation_seats WHERE reservation_id = ? ORDER BY seat_id`
	rows, err := s.q(ctx).QueryContext(ctx, q, reservationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

// UpdateExtension stores a new extension count and deadline.
func (s *Store) UpdateExtension(ctx context.Context, reservationID string, count int, expiresAt time.Time) error {
	const q = `UPDATE reservations SET extension_count = ?, expires_at = ? WHERE id = ?`
	res, err := s.q(ctx).ExecContext(ctx, q, count, expiresAt.UTC(), reservationID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return reservation.ErrReservationNotFound
	}
	return nil
}

// DeactivateReservation marks the reservation inactive; inactive is
// terminal.
func (s *Store) DeactivateReservation(ctx context.Context, reservationID string) error {
	const q = `UPDATE reservations SET is_active = 0 WHERE id = ?`
	res, err := s.q(ctx).ExecContext(ctx, q, reservationID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return reservation.ErrReservationNotFound
	}
	return nil
}

// ExpiredReservations lists active reservations whose deadline has
// passed, locked for update inside a transaction so the sweep and a
// concurrent Reserve cannot release the same hold twice.
func (s *Store) ExpiredReservations(ctx context.Context, eventID uint64, now time.Time) ([]model.Reservation, error) {
	q := `SELECT ` + reservationColumns + ` FROM reservations
	      WHERE is_active = 1 AND expires_at <= ?`
	args := []interface{}{now.UTC()}
	if eventID != 0 {
		q += ` AND event_id = ?`
		args = append(args, eventID)
	}
	q += ` ORDER BY expires_at`
	if inTx(ctx) {
		q += ` FOR UPDATE`
	}
	rows, err := s.q(ctx).QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Reservation
	for rows.Next() {
		res, err := scanReservationRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (s *Store) scanReservation(row *sql.Row) (*model.Reservation, error) {
	res, err := scanReservationRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, reservation.ErrReservationNotFound
	}
	return res, err
}

func scanReservationRow(row rowScanner) (*model.Reservation, error) {
	var r model.Reservation
	var email, phone sql.NullString
	if err := row.Scan(
		&r.ID, &r.EventID, &r.SessionID, &email, &phone, &r.Token,
		&r.TotalAmountCents, &r.ExtensionCount, &r.IsActive,
		&r.CreatedAt, &r.ExpiresAt,
	); err != nil {
		return nil, err
	}
	if email.Valid {
		v := email.String
		r.Email = &v
	}
	if phone.Valid {
		v := phone.String
		r.Phone = &v
	}
	r.CreatedAt = r.CreatedAt.UTC()
	r.ExpiresAt = r.ExpiresAt.UTC()
	return &r, nil
}
