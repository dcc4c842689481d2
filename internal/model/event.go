package model

import "time"

// Event represents a single ticketed performance with its own seat map.
// The surrounding product manages event scheduling; this subsystem only
// needs the identity and on-sale status of an event to validate
// reservation requests against it.
type Event struct {
	ID        uint64    // events.id
	Title     string    // events.title
	StartsAt  time.Time // events.starts_at
	Status    string    // events.status (SCHEDULED, CANCELLED, FINISHED)
	CreatedAt time.Time // events.created_at
}
