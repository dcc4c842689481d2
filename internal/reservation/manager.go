package reservation

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/sethkline/studio-scheduler-sub004/internal/audit"
	"github.com/sethkline/studio-scheduler-sub004/internal/clock"
	"github.com/sethkline/studio-scheduler-sub004/internal/model"
)

// Default hold timings.  These bound the worst-case time inventory can
// be starved by an abandoned hold: initial hold plus three extensions.
const (
	DefaultInitialHold        = 10 * time.Minute
	DefaultExtensionIncrement = 5 * time.Minute
	DefaultMaxSeats           = 10
)

// Manager implements the Reserve / Extend / Release protocol over a
// Store.  Every multi-seat mutation runs inside one store transaction so
// a failure partway through never leaves a partially reserved or
// partially released set of seats.
type Manager struct {
	store   Store
	clock   clock.Clock
	audit   audit.Publisher
	hold    time.Duration
	extend  time.Duration
	maxSeat int
}

// Option customises a Manager.
type Option func(*Manager)

// WithInitialHold overrides the hold duration granted by Reserve.
func WithInitialHold(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.hold = d
		}
	}
}

// WithExtensionIncrement overrides the duration granted by each Extend.
func WithExtensionIncrement(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.extend = d
		}
	}
}

// WithMaxSeats overrides the per-reservation seat limit.
func WithMaxSeats(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.maxSeat = n
		}
	}
}

// WithAuditPublisher attaches an audit sink.  Publishing is best-effort;
// a broker outage never fails a reservation.
func WithAuditPublisher(p audit.Publisher) Option {
	return func(m *Manager) { m.audit = p }
}

// NewManager constructs a Manager with the default timings.
func NewManager(store Store, clk clock.Clock, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		clock:   clk,
		hold:    DefaultInitialHold,
		extend:  DefaultExtensionIncrement,
		maxSeat: DefaultMaxSeats,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ReserveInput carries everything Reserve needs.  Email and Phone are
// optional contact details stamped onto the reservation.
type ReserveInput struct {
	EventID   uint64
	SeatIDs   []uint64
	SessionID string
	Email     *string
	Phone     *string
}

// ReserveResult is returned on a successful hold.
type ReserveResult struct {
	ReservationID    string
	Token            string
	ExpiresAt        time.Time
	SeatCount        int
	TotalAmountCents uint32
}

// ExtendResult reports the new deadline after a successful extension.
type ExtendResult struct {
	ExpiresAt           time.Time
	ExtensionsRemaining int
}

// ReleaseResult reports how many seats a release freed.
type ReleaseResult struct {
	SeatsReleased int
}

// CommitResult is returned when the checkout collaborator finalizes a
// hold into a sale.
type CommitResult struct {
	ReservationID    string
	SeatCount        int
	TotalAmountCents uint32
}

// CheckResult is a read-only snapshot of a reservation.
type CheckResult struct {
	ReservationID       string
	IsActive            bool
	ExpiresAt           time.Time
	TimeRemaining       time.Duration
	Seats               []SeatView
	SeatCount           int
	TotalAmountCents    uint32
	ExtensionsRemaining int
}

// Ref addresses a reservation either by bearer token or by id.  The
// token alone proves possession from an anonymous context; mutating
// calls additionally require the owning session.
type Ref struct {
	Token         string
	ReservationID string
}

// Reserve grants an exclusive time-boxed hold on the requested seats.
// Inside one transaction it reaps any lapsed holds on the event, rejects
// a second live hold for the same session, verifies every seat exists
// and is available, and transitions the whole set to RESERVED.  Nothing
// is mutated on any failure.
func (m *Manager) Reserve(ctx context.Context, in ReserveInput) (*ReserveResult, error) {
	if in.SessionID == "" || in.EventID == 0 {
		return nil, ErrInvalidInput
	}
	seatIDs := dedupeIDs(in.SeatIDs)
	if len(seatIDs) == 0 {
		return nil, ErrInvalidInput
	}
	if len(seatIDs) > m.maxSeat {
		return nil, ErrTooManySeats
	}

	token, err := newToken(32)
	if err != nil {
		log.Printf("reservation: token generation failed: %v", err)
		return nil, ErrInternal
	}

	now := m.clock.Now()
	res := &model.Reservation{
		ID:             uuid.NewString(),
		EventID:        in.EventID,
		SessionID:      in.SessionID,
		Email:          in.Email,
		Phone:          in.Phone,
		Token:          token,
		ExtensionCount: 0,
		IsActive:       true,
		CreatedAt:      now,
		ExpiresAt:      now.Add(m.hold),
	}

	var reaped []reapedHold
	txErr := m.store.WithTx(ctx, func(ctx context.Context) error {
		if _, err := m.store.GetEvent(ctx, in.EventID); err != nil {
			if errors.Is(err, ErrEventNotFound) {
				return ErrNotFound
			}
			return err
		}

		// Reclaim lapsed holds on this event first so a stale hold the
		// sweep has not visited yet can never block a fresh reserve.
		var err error
		reaped, err = m.reapInTx(ctx, in.EventID, now)
		if err != nil {
			return err
		}

		existing, err := m.store.ActiveReservationBySession(ctx, in.EventID, in.SessionID)
		if err != nil {
			return err
		}
		if existing != nil && !existing.Expired(now) {
			return ErrDuplicateReservation
		}

		seats, err := m.store.SeatsForEvent(ctx, in.EventID, seatIDs)
		if err != nil {
			return err
		}
		if len(seats) != len(seatIDs) {
			return ErrSeatsNotFound
		}
		var total uint32
		rows := make([]model.ReservationSeat, 0, len(seats))
		for _, s := range seats {
			if s.EffectiveStatus(now) != model.SeatAvailable {
				return ErrSeatsUnavailable
			}
			total += s.PriceCents
			rows = append(rows, model.ReservationSeat{
				ReservationID: res.ID,
				EventID:       in.EventID,
				SeatID:        s.SeatID,
				PriceCents:    s.PriceCents,
			})
		}
		res.TotalAmountCents = total

		// The reservation row must exist before any show_seats row
		// references it; the seat rows carry a foreign key to it.
		if err := m.store.CreateReservation(ctx, res); err != nil {
			return err
		}

		until := res.ExpiresAt
		err = m.store.TransitionSeats(ctx, SeatTransition{
			EventID:       in.EventID,
			SeatIDs:       seatIDs,
			From:          model.SeatAvailable,
			To:            model.SeatReserved,
			ReservationID: &res.ID,
			ReservedUntil: &until,
		})
		if errors.Is(err, ErrSeatNotFound) {
			return ErrSeatsNotFound
		}
		if errors.Is(err, ErrSeatConflict) {
			return ErrSeatsUnavailable
		}
		if err != nil {
			return err
		}

		return m.store.AddReservationSeats(ctx, rows)
	})
	if txErr != nil {
		return nil, m.classify(txErr, "reserve", in.EventID, res.ID, in.SessionID)
	}

	m.emitReaped(ctx, reaped)
	m.emit(ctx, audit.TypeReserved, res, seatIDs, len(seatIDs))

	return &ReserveResult{
		ReservationID:    res.ID,
		Token:            res.Token,
		ExpiresAt:        res.ExpiresAt,
		SeatCount:        len(seatIDs),
		TotalAmountCents: res.TotalAmountCents,
	}, nil
}

// Extend pushes the reservation deadline out by the configured
// increment.  The new deadline is measured from the call time, not added
// to the prior deadline: extending early therefore yields less total
// hold time than extending at the last moment.  At most
// model.MaxExtensions extensions are honoured.
func (m *Manager) Extend(ctx context.Context, token, sessionID string) (*ExtendResult, error) {
	if token == "" || sessionID == "" {
		return nil, ErrInvalidInput
	}
	now := m.clock.Now()
	var out *ExtendResult
	var extended *model.Reservation
	txErr := m.store.WithTx(ctx, func(ctx context.Context) error {
		res, err := m.store.ReservationByToken(ctx, token)
		if errors.Is(err, ErrReservationNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if res.SessionID != sessionID {
			return ErrPermissionDenied
		}
		if !res.IsActive {
			return ErrReservationInactive
		}
		if res.Expired(now) {
			return ErrReservationExpired
		}
		if res.ExtensionCount >= model.MaxExtensions {
			return ErrMaxExtensionsReached
		}
		count := res.ExtensionCount + 1
		expiresAt := now.Add(m.extend)
		if err := m.store.UpdateExtension(ctx, res.ID, count, expiresAt); err != nil {
			return err
		}
		res.ExtensionCount = count
		res.ExpiresAt = expiresAt
		extended = res
		out = &ExtendResult{ExpiresAt: expiresAt, ExtensionsRemaining: model.MaxExtensions - count}
		return nil
	})
	if txErr != nil {
		return nil, m.classify(txErr, "extend", 0, "", sessionID)
	}
	m.emit(ctx, audit.TypeExtended, extended, nil, 0)
	return out, nil
}

// Release returns every seat still held by the reservation to the
// available pool and deactivates it.  Releasing twice succeeds once and
// then reports ALREADY_INACTIVE; seats are freed exactly once.
func (m *Manager) Release(ctx context.Context, ref Ref, sessionID string) (*ReleaseResult, error) {
	if sessionID == "" || (ref.Token == "" && ref.ReservationID == "") {
		return nil, ErrInvalidInput
	}
	var out *ReleaseResult
	var released *model.Reservation
	txErr := m.store.WithTx(ctx, func(ctx context.Context) error {
		res, err := m.lookup(ctx, ref)
		if err != nil {
			return err
		}
		if res.SessionID != sessionID {
			return ErrPermissionDenied
		}
		if !res.IsActive {
			return ErrAlreadyInactive
		}
		freed, err := m.store.ReleaseSeats(ctx, res.ID)
		if err != nil {
			return err
		}
		if err := m.store.DeactivateReservation(ctx, res.ID); err != nil {
			return err
		}
		out = &ReleaseResult{SeatsReleased: freed}
		released = res
		return nil
	})
	if txErr != nil {
		return nil, m.classify(txErr, "release", 0, ref.ReservationID, sessionID)
	}
	m.emit(ctx, audit.TypeReleased, released, nil, out.SeatsReleased)
	return out, nil
}

// Commit finalizes a hold into a sale.  It is invoked only by the
// external payment collaborator after funds are captured; it is the sole
// path to SOLD, so a seat can never move AVAILABLE -> SOLD directly.
func (m *Manager) Commit(ctx context.Context, token string) (*CommitResult, error) {
	if token == "" {
		return nil, ErrInvalidInput
	}
	now := m.clock.Now()
	var out *CommitResult
	var committed *model.Reservation
	var committedSeats []uint64
	txErr := m.store.WithTx(ctx, func(ctx context.Context) error {
		res, err := m.store.ReservationByToken(ctx, token)
		if errors.Is(err, ErrReservationNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if !res.IsActive {
			return ErrReservationInactive
		}
		if res.Expired(now) {
			return ErrReservationExpired
		}
		seatIDs, err := m.store.SeatIDsForReservation(ctx, res.ID)
		if err != nil {
			return err
		}
		err = m.store.TransitionSeats(ctx, SeatTransition{
			EventID:       res.EventID,
			SeatIDs:       seatIDs,
			From:          model.SeatReserved,
			To:            model.SeatSold,
			ReservationID: &res.ID,
		})
		if errors.Is(err, ErrSeatConflict) || errors.Is(err, ErrSeatNotFound) {
			return ErrSeatsUnavailable
		}
		if err != nil {
			return err
		}
		if err := m.store.DeactivateReservation(ctx, res.ID); err != nil {
			return err
		}
		out = &CommitResult{
			ReservationID:    res.ID,
			SeatCount:        len(seatIDs),
			TotalAmountCents: res.TotalAmountCents,
		}
		committed = res
		committedSeats = seatIDs
		return nil
	})
	if txErr != nil {
		return nil, m.classify(txErr, "commit", 0, "", "")
	}
	m.emit(ctx, audit.TypeCommitted, committed, committedSeats, out.SeatCount)
	return out, nil
}

// Check returns a read-only snapshot of a reservation.  Possession of
// the token (or id) is sufficient; nothing is mutated, and an expired
// but unswept reservation reports inactive with zero time remaining.
func (m *Manager) Check(ctx context.Context, ref Ref) (*CheckResult, error) {
	if ref.Token == "" && ref.ReservationID == "" {
		return nil, ErrInvalidInput
	}
	res, err := m.lookup(ctx, ref)
	if err != nil {
		return nil, m.classify(err, "check", 0, ref.ReservationID, "")
	}
	seatIDs, err := m.store.SeatIDsForReservation(ctx, res.ID)
	if err != nil {
		return nil, m.classify(err, "check", res.EventID, res.ID, "")
	}
	seats, err := m.store.SeatsForEvent(ctx, res.EventID, seatIDs)
	if err != nil {
		return nil, m.classify(err, "check", res.EventID, res.ID, "")
	}
	now := m.clock.Now()
	resolveEffective(seats, now)
	active := res.IsActive && !res.Expired(now)
	remaining := time.Duration(0)
	if active {
		remaining = res.ExpiresAt.Sub(now)
	}
	return &CheckResult{
		ReservationID:       res.ID,
		IsActive:            active,
		ExpiresAt:           res.ExpiresAt,
		TimeRemaining:       remaining,
		Seats:               seats,
		SeatCount:           len(seats),
		TotalAmountCents:    res.TotalAmountCents,
		ExtensionsRemaining: model.MaxExtensions - res.ExtensionCount,
	}, nil
}

// Seats returns the seat map of an event with each seat's logical
// status already resolved under the lazy expiration rule.  Read-only.
func (m *Manager) Seats(ctx context.Context, eventID uint64) ([]SeatView, error) {
	if _, err := m.store.GetEvent(ctx, eventID); err != nil {
		if errors.Is(err, ErrEventNotFound) {
			return nil, ErrNotFound
		}
		return nil, m.classify(err, "seats", eventID, "", "")
	}
	seats, err := m.store.SeatsForEvent(ctx, eventID, nil)
	if err != nil {
		return nil, m.classify(err, "seats", eventID, "", "")
	}
	resolveEffective(seats, m.clock.Now())
	return seats, nil
}

// resolveEffective rewrites each view's stored status to the logical
// one, hiding stale hold bookkeeping from callers.
func resolveEffective(seats []SeatView, now time.Time) {
	for i := range seats {
		if st := seats[i].EffectiveStatus(now); st != seats[i].Status {
			seats[i].Status = st
			seats[i].ReservationID = nil
			seats[i].HoldExpiresAt = nil
			seats[i].HoldActive = false
		}
	}
}

// ReapExpired runs the sweep half of expiration: every active
// reservation past its deadline gets the exact release transaction,
// bringing stored seat status back in line with logical state.  Returns
// the number of reservations reclaimed.
func (m *Manager) ReapExpired(ctx context.Context) (int, error) {
	now := m.clock.Now()
	var reaped []reapedHold
	txErr := m.store.WithTx(ctx, func(ctx context.Context) error {
		var err error
		reaped, err = m.reapInTx(ctx, 0, now)
		return err
	})
	if txErr != nil {
		return 0, m.classify(txErr, "reap", 0, "", "")
	}
	m.emitReaped(ctx, reaped)
	return len(reaped), nil
}

type reapedHold struct {
	res   model.Reservation
	freed int
}

// reapInTx releases every lapsed active reservation (scoped to eventID
// when non-zero) inside the caller's transaction.
func (m *Manager) reapInTx(ctx context.Context, eventID uint64, now time.Time) ([]reapedHold, error) {
	expired, err := m.store.ExpiredReservations(ctx, eventID, now)
	if err != nil {
		return nil, err
	}
	reaped := make([]reapedHold, 0, len(expired))
	for _, res := range expired {
		freed, err := m.store.ReleaseSeats(ctx, res.ID)
		if err != nil {
			return nil, err
		}
		if err := m.store.DeactivateReservation(ctx, res.ID); err != nil {
			return nil, err
		}
		reaped = append(reaped, reapedHold{res: res, freed: freed})
	}
	return reaped, nil
}

func (m *Manager) lookup(ctx context.Context, ref Ref) (*model.Reservation, error) {
	var res *model.Reservation
	var err error
	if ref.Token != "" {
		res, err = m.store.ReservationByToken(ctx, ref.Token)
	} else {
		res, err = m.store.ReservationByID(ctx, ref.ReservationID)
	}
	if errors.Is(err, ErrReservationNotFound) {
		return nil, ErrNotFound
	}
	return res, err
}

// classify passes coded errors through untouched and converts anything
// else (storage faults, broken invariants) into INTERNAL_ERROR after
// logging it with enough context for an audit.
func (m *Manager) classify(err error, op string, eventID uint64, reservationID, sessionID string) error {
	var ce *Error
	if errors.As(err, &ce) {
		return ce
	}
	log.Printf("reservation: %s failed event=%d reservation=%s session=%s: %v",
		op, eventID, reservationID, sessionID, err)
	return ErrInternal
}

func (m *Manager) emit(ctx context.Context, typ string, res *model.Reservation, seatIDs []uint64, seatCount int) {
	if m.audit == nil {
		return
	}
	rec := audit.Record{
		ID:               uuid.NewString(),
		Type:             typ,
		ReservationID:    res.ID,
		EventID:          res.EventID,
		SessionID:        res.SessionID,
		SeatIDs:          seatIDs,
		SeatCount:        seatCount,
		TotalAmountCents: res.TotalAmountCents,
		OccurredAt:       m.clock.Now().Format(time.RFC3339),
	}
	if err := m.audit.Publish(ctx, rec); err != nil {
		log.Printf("reservation: audit publish failed type=%s reservation=%s: %v", typ, res.ID, err)
	}
}

func (m *Manager) emitReaped(ctx context.Context, reaped []reapedHold) {
	for _, r := range reaped {
		res := r.res
		m.emit(ctx, audit.TypeExpired, &res, nil, r.freed)
	}
}

// dedupeIDs drops zero and repeated seat ids while preserving order.
func dedupeIDs(ids []uint64) []uint64 {
	out := make([]uint64, 0, len(ids))
	seen := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// newToken returns a hex token from n bytes of crypto/rand output; 32
// bytes yields a 64 character token.
func newToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
