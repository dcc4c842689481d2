package reservation

import (
	"context"
	"sync"
	"time"

	"github.com/sethkline/studio-scheduler-sub004/internal/audit"
	"github.com/sethkline/studio-scheduler-sub004/internal/model"
)

// fakeStore is an in-memory Store for tests.  WithTx serializes on one
// mutex, which gives the same effective guarantee the MySQL store gets
// from row locks: two transactions never interleave on the same seats.
type fakeStore struct {
	mu           sync.Mutex
	events       map[uint64]*model.Event
	seats        map[uint64]map[uint64]*fakeSeat // eventID -> seatID
	reservations map[string]*model.Reservation   // by id
	tokens       map[string]string               // token -> id
	resSeats     map[string][]model.ReservationSeat
}

type fakeSeat struct {
	section        string
	rowLabel       string
	seatNumber     uint32
	seatType       string
	handicapAccess bool
	status         string
	priceCents     uint32
	reservationID  *string
	reservedUntil  *time.Time
}

type fakeTxKey struct{}

func newFakeStore() *fakeStore {
	return &fakeStore{
		events:       make(map[uint64]*model.Event),
		seats:        make(map[uint64]map[uint64]*fakeSeat),
		reservations: make(map[string]*model.Reservation),
		tokens:       make(map[string]string),
		resSeats:     make(map[string][]model.ReservationSeat),
	}
}

func (f *fakeStore) addEvent(id uint64, title string) {
	f.events[id] = &model.Event{ID: id, Title: title, Status: "SCHEDULED"}
	if f.seats[id] == nil {
		f.seats[id] = make(map[uint64]*fakeSeat)
	}
}

func (f *fakeStore) addSeat(eventID, seatID uint64, section, row string, number uint32, price uint32) {
	f.seats[eventID][seatID] = &fakeSeat{
		section:    section,
		rowLabel:   row,
		seatNumber: number,
		seatType:   "STANDARD",
		status:     model.SeatAvailable,
		priceCents: price,
	}
}

// lock takes the store mutex unless the context already carries the
// transaction, mirroring how the MySQL store joins an enclosing tx.
func (f *fakeStore) lock(ctx context.Context) func() {
	if ctx.Value(fakeTxKey{}) != nil {
		return func() {}
	}
	f.mu.Lock()
	return f.mu.Unlock
}

func (f *fakeStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(fakeTxKey{}) != nil {
		return fn(ctx)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return fn(context.WithValue(ctx, fakeTxKey{}, struct{}{}))
}

func (f *fakeStore) GetEvent(ctx context.Context, eventID uint64) (*model.Event, error) {
	defer f.lock(ctx)()
	ev, ok := f.events[eventID]
	if !ok {
		return nil, ErrEventNotFound
	}
	cp := *ev
	return &cp, nil
}

func (f *fakeStore) SeatsForEvent(ctx context.Context, eventID uint64, seatIDs []uint64) ([]SeatView, error) {
	defer f.lock(ctx)()
	rows := f.seats[eventID]
	var ids []uint64
	if len(seatIDs) > 0 {
		ids = seatIDs
	} else {
		for id := range rows {
			ids = append(ids, id)
		}
	}
	var out []SeatView
	for _, id := range ids {
		st, ok := rows[id]
		if !ok {
			continue
		}
		sv := SeatView{
			SeatID:         id,
			Section:        st.section,
			RowLabel:       st.rowLabel,
			SeatNumber:     st.seatNumber,
			SeatType:       st.seatType,
			HandicapAccess: st.handicapAccess,
			Status:         st.status,
			PriceCents:     st.priceCents,
			ReservationID:  st.reservationID,
		}
		if st.reservationID != nil {
			if res, ok := f.reservations[*st.reservationID]; ok {
				sv.HoldActive = res.IsActive
				exp := res.ExpiresAt
				sv.HoldExpiresAt = &exp
			}
		}
		out = append(out, sv)
	}
	return out, nil
}

func (f *fakeStore) TransitionSeats(ctx context.Context, t SeatTransition) error {
	defer f.lock(ctx)()
	rows := f.seats[t.EventID]
	// Verify the whole set before touching anything.
	for _, id := range t.SeatIDs {
		st, ok := rows[id]
		if !ok {
			return ErrSeatNotFound
		}
		if st.status != t.From {
			return ErrSeatConflict
		}
	}
	for _, id := range t.SeatIDs {
		st := rows[id]
		st.status = t.To
		st.reservationID = t.ReservationID
		st.reservedUntil = t.ReservedUntil
	}
	return nil
}

func (f *fakeStore) ReleaseSeats(ctx context.Context, reservationID string) (int, error) {
	defer f.lock(ctx)()
	freed := 0
	for _, rows := range f.seats {
		for _, st := range rows {
			if st.reservationID != nil && *st.reservationID == reservationID && st.status == model.SeatReserved {
				st.status = model.SeatAvailable
				st.reservationID = nil
				st.reservedUntil = nil
				freed++
			}
		}
	}
	return freed, nil
}

func (f *fakeStore) CreateReservation(ctx context.Context, r *model.Reservation) error {
	defer f.lock(ctx)()
	cp := *r
	f.reservations[r.ID] = &cp
	f.tokens[r.Token] = r.ID
	return nil
}

func (f *fakeStore) AddReservationSeats(ctx context.Context, seats []model.ReservationSeat) error {
	defer f.lock(ctx)()
	for _, rs := range seats {
		f.resSeats[rs.ReservationID] = append(f.resSeats[rs.ReservationID], rs)
	}
	return nil
}

func (f *fakeStore) ReservationByToken(ctx context.Context, token string) (*model.Reservation, error) {
	defer f.lock(ctx)()
	id, ok := f.tokens[token]
	if !ok {
		return nil, ErrReservationNotFound
	}
	cp := *f.reservations[id]
	return &cp, nil
}

func (f *fakeStore) ReservationByID(ctx context.Context, id string) (*model.Reservation, error) {
	defer f.lock(ctx)()
	res, ok := f.reservations[id]
	if !ok {
		return nil, ErrReservationNotFound
	}
	cp := *res
	return &cp, nil
}

func (f *fakeStore) ActiveReservationBySession(ctx context.Context, eventID uint64, sessionID string) (*model.Reservation, error) {
	defer f.lock(ctx)()
	for _, res := range f.reservations {
		if res.EventID == eventID && res.SessionID == sessionID && res.IsActive {
			cp := *res
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) SeatIDsForReservation(ctx context.Context, reservationID string) ([]uint64, error) {
	defer f.lock(ctx)()
	var ids []uint64
	for _, rs := range f.resSeats[reservationID] {
		ids = append(ids, rs.SeatID)
	}
	return ids, nil
}

func (f *fakeStore) UpdateExtension(ctx context.Context, reservationID string, count int, expiresAt time.Time) error {
	defer f.lock(ctx)()
	res, ok := f.reservations[reservationID]
	if !ok {
		return ErrReservationNotFound
	}
	res.ExtensionCount = count
	res.ExpiresAt = expiresAt
	return nil
}

func (f *fakeStore) DeactivateReservation(ctx context.Context, reservationID string) error {
	defer f.lock(ctx)()
	res, ok := f.reservations[reservationID]
	if !ok {
		return ErrReservationNotFound
	}
	res.IsActive = false
	return nil
}

func (f *fakeStore) ExpiredReservations(ctx context.Context, eventID uint64, now time.Time) ([]model.Reservation, error) {
	defer f.lock(ctx)()
	var out []model.Reservation
	for _, res := range f.reservations {
		if !res.IsActive || res.ExpiresAt.After(now) {
			continue
		}
		if eventID != 0 && res.EventID != eventID {
			continue
		}
		out = append(out, *res)
	}
	return out, nil
}

// seatStatus reads the stored status of a seat directly, for assertions.
func (f *fakeStore) seatStatus(eventID, seatID uint64) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seats[eventID][seatID].status
}

// fakePublisher captures audit records in publish order.
type fakePublisher struct {
	mu      sync.Mutex
	records []audit.Record
}

func (p *fakePublisher) Publish(ctx context.Context, rec audit.Record) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.records = append(p.records, rec)
	return nil
}

func (p *fakePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.records))
	for _, r := range p.records {
		out = append(out, r.Type)
	}
	return out
}
