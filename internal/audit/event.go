// Package audit defines the reservation audit trail: every hold
// transition is published to a durable queue so downstream consumers can
// log, reconcile or alert without querying the primary database.
package audit

// Record types, one per hold transition.
const (
	TypeReserved  = "reservation.created"
	TypeExtended  = "reservation.extended"
	TypeReleased  = "reservation.released"
	TypeExpired   = "reservation.expired"
	TypeCommitted = "reservation.committed"
)

// Record is the message payload published for each transition.  It
// carries enough context (event, seats, session) that an audit of a
// disputed hold never needs the primary database.
type Record struct {
	ID               string   `json:"id"`
	Type             string   `json:"type"`
	ReservationID    string   `json:"reservation_id"`
	EventID          uint64   `json:"event_id"`
	SessionID        string   `json:"session_id,omitempty"`
	SeatIDs          []uint64 `json:"seat_ids,omitempty"`
	SeatCount        int      `json:"seat_count"`
	TotalAmountCents uint32   `json:"total_amount_cents,omitempty"`
	OccurredAt       string   `json:"occurred_at"`
}
