package goal

import (
	"time"

	"github.com/google/uuid"
)

// StatusChangedEvent is published whenever a goal transitions between
// statuses, either through a ledger operation or a sweep.
type StatusChangedEvent struct {
	GoalID     uuid.UUID `json:"goal_id"`
	OwnerID    uuid.UUID `json:"owner_id"`
	GoalName   string    `json:"goal_name"`
	Previous   Status    `json:"previous"`
	Current    Status    `json:"current"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewStatusChangedEvent builds an event for a transition on g from the
// previous status to the goal's current one.
func NewStatusChangedEvent(g *Goal, previous Status) *StatusChangedEvent {
	return &StatusChangedEvent{
		GoalID:     g.ID,
		OwnerID:    g.OwnerID,
		GoalName:   g.Name,
		Previous:   previous,
		Current:    g.Status,
		OccurredAt: time.Now().UTC(),
	}
}
