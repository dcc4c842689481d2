package reservation

import (
	"context"
	"errors"
	"time"

	"github.com/sethkline/studio-scheduler-sub004/internal/model"
)

// Sentinel errors surfaced by Store implementations.  The engine maps
// them onto the coded errors it returns to callers.
var (
	// ErrEventNotFound is returned when the referenced event does not exist.
	ErrEventNotFound = errors.New("event not found")
	// ErrSeatNotFound is returned by TransitionSeats when any seat id does
	// not exist for the event.  Nothing is mutated.
	ErrSeatNotFound = errors.New("seat not found for event")
	// ErrSeatConflict is returned by TransitionSeats when any seat is not
	// currently in the expected from-status.  Nothing is mutated.
	ErrSeatConflict = errors.New("seat not in expected status")
	// ErrReservationNotFound is returned when no reservation matches the
	// given token or id.
	ErrReservationNotFound = errors.New("reservation not found")
)

// SeatView joins a physical seat with its per-event state and, when the
// seat is held, the owning reservation's bookkeeping.  Status is the
// STORED status; callers that need the logical status must apply the
// lazy expiration rule via EffectiveStatus.
type SeatView struct {
	SeatID         uint64
	Section        string
	RowLabel       string
	SeatNumber     uint32
	SeatType       string
	HandicapAccess bool
	Status         string
	PriceCents     uint32
	ReservationID  *string
	// HoldActive and HoldExpiresAt mirror the owning reservation's
	// is_active flag and deadline; both are zero-valued when no
	// reservation holds the seat.
	HoldActive    bool
	HoldExpiresAt *time.Time
}

// EffectiveStatus resolves the logical status of the seat at the given
// instant.  A seat whose hold has lapsed or been deactivated is treated
// as available the moment anything inspects it, so a fresh Reserve is
// never blocked by a hold the sweep has not reclaimed yet.
func (s SeatView) EffectiveStatus(now time.Time) string {
	if s.Status != model.SeatReserved {
		return s.Status
	}
	if !s.HoldActive || s.HoldExpiresAt == nil || !s.HoldExpiresAt.After(now) {
		return model.SeatAvailable
	}
	return model.SeatReserved
}

// SeatTransition describes an all-or-nothing status change across a set
// of show seats.  ReservationID and ReservedUntil are applied to every
// row on success; pass nil to clear them.
type SeatTransition struct {
	EventID       uint64
	SeatIDs       []uint64
	From          string
	To            string
	ReservationID *string
	ReservedUntil *time.Time
}

// Store is the persistence boundary of the engine.  Implementations must
// make WithTx atomic and isolated: every method called inside the
// closure observes and mutates a single consistent snapshot, and a
// non-nil error rolls the whole unit back.  Methods re-check current
// state inside the transaction; a pre-transaction read is never trusted.
type Store interface {
	// WithTx runs fn inside one transaction.  Nested calls join the
	// enclosing transaction.
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error

	// GetEvent loads an event or returns ErrEventNotFound.
	GetEvent(ctx context.Context, eventID uint64) (*model.Event, error)

	// SeatsForEvent returns seat views for the event.  A nil or empty
	// seatIDs selects every seat.  Inside a transaction the rows are
	// locked for update.  Missing ids are simply absent from the result.
	SeatsForEvent(ctx context.Context, eventID uint64, seatIDs []uint64) ([]SeatView, error)

	// TransitionSeats atomically moves every listed seat from t.From to
	// t.To, failing the whole set with ErrSeatNotFound or ErrSeatConflict
	// without mutating anything.
	TransitionSeats(ctx context.Context, t SeatTransition) error

	// ReleaseSeats returns every seat still RESERVED under the
	// reservation to AVAILABLE, clearing hold bookkeeping, and reports
	// how many were freed.
	ReleaseSeats(ctx context.Context, reservationID string) (int, error)

	CreateReservation(ctx context.Context, r *model.Reservation) error
	AddReservationSeats(ctx context.Context, seats []model.ReservationSeat) error

	// ReservationByToken and ReservationByID return
	// ErrReservationNotFound when no row matches.
	ReservationByToken(ctx context.Context, token string) (*model.Reservation, error)
	ReservationByID(ctx context.Context, id string) (*model.Reservation, error)

	// ActiveReservationBySession returns the live hold a session has on
	// an event, or nil when it has none.
	ActiveReservationBySession(ctx context.Context, eventID uint64, sessionID string) (*model.Reservation, error)

	// SeatIDsForReservation lists the seats recorded under a reservation.
	SeatIDsForReservation(ctx context.Context, reservationID string) ([]uint64, error)

	// UpdateExtension stores a new extension count and deadline.
	UpdateExtension(ctx context.Context, reservationID string, count int, expiresAt time.Time) error

	// DeactivateReservation marks the reservation inactive.
	DeactivateReservation(ctx context.Context, reservationID string) error

	// ExpiredReservations lists active reservations whose deadline has
	// passed.  A zero eventID selects across all events.
	ExpiredReservations(ctx context.Context, eventID uint64, now time.Time) ([]model.Reservation, error)
}
