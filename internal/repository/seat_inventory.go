package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/sethkline/studio-scheduler-sub004/internal/model"
	"github.com/sethkline/studio-scheduler-sub004/internal/reservation"
)

// SeatsForEvent returns seat views for the event, joined with the
// owning reservation's bookkeeping so callers can apply the lazy
// expiration rule.  A nil or empty seatIDs selects the whole map.
// Inside a transaction the matched rows are locked for update.
func (s *Store) SeatsForEvent(ctx context.Context, eventID uint64, seatIDs []uint64) ([]reservation.SeatView, error) {
	query := `SELECT ss.seat_id, st.section, st.row_label, st.seat_number, st.seat_type, st.handicap_access,
	                 ss.status, ss.price_cents, ss.reservation_id,
	                 COALESCE(r.is_active, 0), r.expires_at
	          FROM show_seats ss
	          JOIN seats st ON st.id = ss.seat_id
	          LEFT JOIN reservations r ON r.id = ss.reservation_id
	          WHERE ss.event_id = ?`
	args := []interface{}{eventID}
	if len(seatIDs) > 0 {
		query += ` AND ss.seat_id IN (` + placeholders(len(seatIDs)) + `)`
		for _, id := range seatIDs {
			args = append(args, id)
		}
	}
	query += ` ORDER BY st.section, st.row_label, st.seat_number`
	if inTx(ctx) {
		query += ` FOR UPDATE`
	}

	rows, err := s.q(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []reservation.SeatView
	for rows.Next() {
		var sv reservation.SeatView
		var resID sql.NullString
		var holdExpires sql.NullTime
		if err := rows.Scan(
			&sv.SeatID, &sv.Section, &sv.RowLabel, &sv.SeatNumber, &sv.SeatType, &sv.HandicapAccess,
			&sv.Status, &sv.PriceCents, &resID,
			&sv.HoldActive, &holdExpires,
		); err != nil {
			return nil, err
		}
		if resID.Valid {
			id := resID.String
			sv.ReservationID = &id
		}
		if holdExpires.Valid {
			t := holdExpires.Time.UTC()
			sv.HoldExpiresAt = &t
		}
		out = append(out, sv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// TransitionSeats atomically moves every listed seat from t.From to
// t.To.  It locks the rows, re-checks current status under the lock
// (never trusting a pre-transaction read), and mutates nothing when any
// seat is missing or in the wrong status.
func (s *Store) TransitionSeats(ctx context.Context, t reservation.SeatTransition) error {
	if len(t.SeatIDs) == 0 {
		return nil
	}
	sel := `SELECT seat_id, status FROM show_seats WHERE event_id = ? AND seat_id IN (` +
		placeholders(len(t.SeatIDs)) + `)`
	args := make([]interface{}, 0, len(t.SeatIDs)+1)
	args = append(args, t.EventID)
	for _, id := range t.SeatIDs {
		args = append(args, id)
	}
	if inTx(ctx) {
		sel += ` FOR UPDATE`
	}
	rows, err := s.q(ctx).QueryContext(ctx, sel, args...)
	if err != nil {
		return err
	}
	statuses := make(map[uint64]string, len(t.SeatIDs))
	for rows.Next() {
		var id uint64
		var status string
		if err := rows.Scan(&id, &status); err != nil {
			rows.Close()
			return err
		}
		statuses[id] = status
	}
	if err := rows.Close(); err != nil {
		return err
	}
	for _, id := range t.SeatIDs {
		status, ok := statuses[id]
		if !ok {
			return reservation.ErrSeatNotFound
		}
		if status != t.From {
			return reservation.ErrSeatConflict
		}
	}

	upd := `UPDATE show_seats
	        SET status = ?, reservation_id = ?, reserved_until = ?, updated_at = CURRENT_TIMESTAMP
	        WHERE event_id = ? AND status = ? AND seat_id IN (` + placeholders(len(t.SeatIDs)) + `)`
	var resID, until interface{}
	if t.ReservationID != nil {
		resID = *t.ReservationID
	}
	if t.ReservedUntil != nil {
		until = t.ReservedUntil.UTC()
	}
	uargs := []interface{}{t.To, resID, until, t.EventID, t.From}
	for _, id := range t.SeatIDs {
		uargs = append(uargs, id)
	}
	res, err := s.q(ctx).ExecContext(ctx, upd, uargs...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if int(n) != len(t.SeatIDs) {
		// Cannot happen while the rows are locked; treated as a storage
		// fault rather than a conflict.
		return fmt.Errorf("transition updated %d of %d seats", n, len(t.SeatIDs))
	}
	return nil
}

// ReleaseSeats frees every seat still RESERVED under the reservation,
// clearing the hold bookkeeping, and reports how many rows changed.
// Seats already returned to the pool (or sold) are left untouched, so a
// second release is a no-op at the inventory level.
func (s *Store) ReleaseSeats(ctx context.Context, reservationID string) (int, error) {
	const q = `UPDATE show_seats
	           SET status = ?, reservation_id = NULL, reserved_until = NULL, updated_at = CURRENT_TIMESTAMP
	           WHERE reservation_id = ? AND status = ?`
	res, err := s.q(ctx).ExecContext(ctx, q, model.SeatAvailable, reservationID, model.SeatReserved)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// placeholders returns n comma-separated ? markers.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
