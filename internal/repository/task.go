package repository

import (
	"context"
	"time"

	"campool/internal/domain"
)

// TaskRepository defines the persistence operations for scheduled tasks.
type TaskRepository interface {
	// Create persists a new scheduled task.
	Create(ctx context.Context, task *domain.ScheduledTask) error

	// ListDue retrieves undone tasks whose FireAt has passed.
	ListDue(ctx context.Context, now time.Time, limit int) ([]*domain.ScheduledTask, error)

	// MarkDone marks a task as executed. Marking twice is harmless.
	MarkDone(ctx context.Context, id string) error

	// CancelForMatch marks all undone tasks for a match as done, so a
	// cancelled match fires no leftover reminders.
	CancelForMatch(ctx context.Context, matchID string) error
}
