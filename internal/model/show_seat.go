package model

import "time"

// Seat availability states for a show seat.  Transitions are only ever
// AVAILABLE -> RESERVED -> {AVAILABLE | SOLD}; SOLD is terminal within
// this subsystem.
const (
	SeatAvailable = "AVAILABLE"
	SeatReserved  = "RESERVED"
	SeatSold      = "SOLD"
)

// ShowSeat is the mutable per-event instance of a Seat.  One show_seat
// row exists for every seat offered at an event and tracks availability,
// pricing and the reservation currently holding it.
//
// Fields:
//  ID            – primary key identifier.
//  EventID       – the event to which this seat instance belongs.
//  SeatID        – the physical seat being offered.
//  Status        – availability status (AVAILABLE, RESERVED, SOLD).
//  PriceCents    – price in cents for this particular seat.
//  ReservedUntil – deadline of the current hold; nil unless RESERVED.
//  ReservationID – reservation currently holding the seat; nil unless
//                  RESERVED or SOLD.
//  UpdatedAt     – timestamp of the last status change.
type ShowSeat struct {
	ID            uint64     // show_seats.id
	EventID       uint64     // show_seats.event_id
	SeatID        uint64     // show_seats.seat_id
	Status        string     // show_seats.status
	PriceCents    uint32     // show_seats.price_cents
	ReservedUntil *time.Time // show_seats.reserved_until (nullable)
	ReservationID *string    // show_seats.reservation_id (nullable)
	UpdatedAt     time.Time  // show_seats.updated_at
}
