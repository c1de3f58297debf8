// Package events defines the versioned payloads published through the
// workflow outbox. Payloads are additive-only within a version.
package events

import (
	"time"

	"github.com/google/uuid"
)

const TopicTransitionV1 = "competency.subprocess.transition.v1"

// TransitionEventV1 is emitted once per successful workflow step, inside
// the same transaction that changed the subprocess.
type TransitionEventV1 struct {
	EventID      uuid.UUID `json:"event_id"`
	SubprocessID int64     `json:"subprocess_id"`
	ProcessID    int64     `json:"process_id"`
	Kind         string    `json:"kind"`
	FromStatus   string    `json:"from_status"`
	ToStatus     string    `json:"to_status"`
	// ActorID is the acting subject; ActingUnitID the unit the transition
	// was performed on behalf of (alert placeholder source).
	ActorID      string    `json:"actor_id"`
	ActingUnitID int64     `json:"acting_unit_id"`
	// Reason carries the return/reopen justification when one was given.
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
