package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/sethkline/studio-scheduler-sub004/internal/clock"
	"github.com/sethkline/studio-scheduler-sub004/internal/model"
	"github.com/sethkline/studio-scheduler-sub004/internal/reservation"
)

var repoNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewStore(db), mock
}

func reservationRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "event_id", "session_id", "email", "phone", "token",
		"total_amount_cents", "extension_count", "is_active", "created_at", "expires_at",
	})
}

func TestStore_TransitionSeats(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	avail := model.SeatAvailable

	t.Run("updates the whole set", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery(`SELECT seat_id, status FROM show_seats`).
			WillReturnRows(sqlmock.NewRows([]string{"seat_id", "status"}).
				AddRow(1, avail).AddRow(2, avail))
		mock.ExpectExec(`UPDATE show_seats`).
			WillReturnResult(sqlmock.NewResult(0, 2))

		err := store.TransitionSeats(ctx, reservation.SeatTransition{
			EventID: 1, SeatIDs: []uint64{1, 2},
			From: avail, To: model.SeatReserved,
		})
		if err != nil {
			t.Fatalf("transition: %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("expectations: %v", err)
		}
	})

	t.Run("missing seat fails before any write", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery(`SELECT seat_id, status FROM show_seats`).
			WillReturnRows(sqlmock.NewRows([]string{"seat_id", "status"}).
				AddRow(1, avail))

		err := store.TransitionSeats(ctx, reservation.SeatTransition{
			EventID: 1, SeatIDs: []uint64{1, 2},
			From: avail, To: model.SeatReserved,
		})
		if !errors.Is(err, reservation.ErrSeatNotFound) {
			t.Fatalf("expected ErrSeatNotFound, got %v", err)
		}
		// No UPDATE may have been issued.
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("expectations: %v", err)
		}
	})

	t.Run("wrong status fails before any write", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery(`SELECT seat_id, status FROM show_seats`).
			WillReturnRows(sqlmock.NewRows([]string{"seat_id", "status"}).
				AddRow(1, avail).AddRow(2, model.SeatReserved))

		err := store.TransitionSeats(ctx, reservation.SeatTransition{
			EventID: 1, SeatIDs: []uint64{1, 2},
			From: avail, To: model.SeatReserved,
		})
		if !errors.Is(err, reservation.ErrSeatConflict) {
			t.Fatalf("expected ErrSeatConflict, got %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("expectations: %v", err)
		}
	})
}

// TestStore_ReserveStatementOrder drives a full Reserve through the real
// MySQL store and pins the statement sequence: the reservations INSERT
// must precede the show_seats UPDATE that references it, or the seat
// rows' foreign key rejects the write.
func TestStore_ReserveStatementOrder(t *testing.T) {
	t.Parallel()
	store, mock := newMockStore(t)
	m := reservation.NewManager(store, clock.NewFixed(repoNow))

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id, title, starts_at, status, created_at FROM events`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "starts_at", "status", "created_at"}).
			AddRow(1, "spring recital", repoNow, "SCHEDULED", repoNow))
	mock.ExpectQuery(`is_active = 1 AND expires_at`).
		WillReturnRows(reservationRows())
	mock.ExpectQuery(`AND session_id`).
		WillReturnRows(reservationRows())
	mock.ExpectQuery(`FROM show_seats ss`).
		WillReturnRows(sqlmock.NewRows([]string{
			"seat_id", "section", "row_label", "seat_number", "seat_type", "handicap_access",
			"status", "price_cents", "reservation_id", "is_active", "expires_at",
		}).AddRow(1, "CENTER", "A", 1, "STANDARD", false, model.SeatAvailable, 2500, nil, false, nil))
	mock.ExpectExec(`INSERT INTO reservations`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT seat_id, status FROM show_seats`).
		WillReturnRows(sqlmock.NewRows([]string{"seat_id", "status"}).
			AddRow(1, model.SeatAvailable))
	mock.ExpectExec(`UPDATE show_seats`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO reservation_seats`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	res, err := m.Reserve(context.Background(), reservation.ReserveInput{
		EventID: 1, SeatIDs: []uint64{1}, SessionID: "sess-a",
	})
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if res.SeatCount != 1 || res.TotalAmountCents != 2500 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("statement order: %v", err)
	}
}

func TestStore_ReleaseSeats(t *testing.T) {
	t.Parallel()
	store, mock := newMockStore(t)

	mock.ExpectExec(`UPDATE show_seats`).
		WithArgs(model.SeatAvailable, "res-1", model.SeatReserved).
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := store.ReleaseSeats(context.Background(), "res-1")
	if err != nil {
		t.Fatalf("release: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 freed, got %d", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestStore_ReservationByToken_NotFound(t *testing.T) {
	t.Parallel()
	store, mock := newMockStore(t)

	mock.ExpectQuery(`FROM reservations WHERE token`).
		WillReturnRows(reservationRows())

	_, err := store.ReservationByToken(context.Background(), "no-such-token")
	if !errors.Is(err, reservation.ErrReservationNotFound) {
		t.Fatalf("expected ErrReservationNotFound, got %v", err)
	}
}
