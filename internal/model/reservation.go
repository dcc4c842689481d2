package model

import "time"

// MaxExtensions bounds how many times a single reservation can be
// extended before it must be completed or allowed to lapse.
const MaxExtensions = 3

// Reservation is a time-boxed exclusive claim on one or more show seats.
// It is created by Reserve, mutated by Extend, and terminated by Release,
// by expiration, or implicitly superseded when the external checkout
// collaborator commits it.
//
// Fields:
//  ID               – UUID primary key.
//  EventID          – event whose seats are held.
//  SessionID        – opaque caller credential that created the hold.
//  Email, Phone     – optional contact info captured at reserve time.
//  Token            – unguessable bearer token proving possession.
//  TotalAmountCents – summed price of the held seats.
//  ExtensionCount   – extensions applied so far (0..MaxExtensions).
//  IsActive         – false once released, reaped or committed.
//  CreatedAt        – creation timestamp.
//  ExpiresAt        – current hold deadline.
type Reservation struct {
	ID               string    // reservations.id (uuid)
	EventID          uint64    // reservations.event_id
	SessionID        string    // reservations.session_id
	Email            *string   // reservations.email (nullable)
	Phone            *string   // reservations.phone (nullable)
	Token            string    // reservations.token
	TotalAmountCents uint32    // reservations.total_amount_cents
	ExtensionCount   int       // reservations.extension_count
	IsActive         bool      // reservations.is_active
	CreatedAt        time.Time // reservations.created_at
	ExpiresAt        time.Time // reservations.expires_at
}

// Expired reports whether the reservation's deadline has passed at the
// given instant.  An expired reservation is logically inactive even
// before the sweep has updated its stored state.
func (r *Reservation) Expired(now time.Time) bool {
	return !r.ExpiresAt.After(now)
}

// ReservationSeat links a reservation to an individual seat held for an
// event.  Together the rows of a reservation form the full set of seats
// covered by the hold.
type ReservationSeat struct {
	ReservationID string // reservation_seats.reservation_id
	EventID       uint64 // reservation_seats.event_id
	SeatID        uint64 // reservation_seats.seat_id
	PriceCents    uint32 // reservation_seats.price_cents
}
