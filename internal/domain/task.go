package domain

import "time"

// TaskKind enumerates the delayed side effects the sweeper executes.
type TaskKind string

const (
	TaskConfirmationReminder TaskKind = "CONFIRMATION_REMINDER"
)

// ScheduledTask is a durable delayed side effect keyed by (MatchID, FireAt).
// The sweeper re-checks live match state at fire time, so a task persisted
// before a restart still fires, and a task for a dead match is a no-op.
type ScheduledTask struct {
	ID        string
	MatchID   string
	Kind      TaskKind
	FireAt    time.Time
	Done      bool
	CreatedAt time.Time
}
