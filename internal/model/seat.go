package model

import "time"

// Seat describes a physical seat in the venue.  Seats are immutable
// reference data: they are uniquely identified by section, row label and
// seat number, and never change while events are on sale.  The seat type
// indicates whether the seat is standard, premium or accessible for
// patrons with limited mobility.
//
// Fields:
//  ID             – primary key identifier.
//  Section        – named section of the house (e.g. CENTER, LEFT, RIGHT).
//  RowLabel       – letter or string designating the row.
//  SeatNumber     – number of the seat within the row (1-based).
//  SeatType       – type of seat (STANDARD, PREMIUM, ACCESSIBLE).
//  HandicapAccess – whether the seat offers wheelchair access.
//  CreatedAt      – creation timestamp.
type Seat struct {
	ID             uint64    // seats.id
	Section        string    // seats.section
	RowLabel       string    // seats.row_label
	SeatNumber     uint32    // seats.seat_number
	SeatType       string    // seats.seat_type
	HandicapAccess bool      // seats.handicap_access
	CreatedAt      time.Time // seats.created_at
}
