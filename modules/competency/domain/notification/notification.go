// Package notification holds the in-app alert and outbound email records
// produced when subprocess transitions are consumed from the outbox.
package notification

import "time"

// Alert is an in-app notice addressed to one unit.
type Alert struct {
	ID           int64
	UnitID       int64
	SubprocessID int64
	Message      string
	CreatedAt    time.Time
	ReadAt       *time.Time
}

// Email is a queued outbound message. Rendering and delivery happen in the
// mailer, outside this core; only subject and template id are decided here.
type Email struct {
	ID           int64
	UnitID       int64
	SubprocessID int64
	Subject      string
	Template     string
	CreatedAt    time.Time
	SentAt       *time.Time
}
