package postgres

import (
	"context"
	"database/sql"
	"time"

	"campool/internal/domain"
)

// TaskRepository is a PostgreSQL implementation of repository.TaskRepository.
type TaskRepository struct {
	q Querier
}

// NewTaskRepository creates a new PostgreSQL task repository.
func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{q: db}
}

// NewTaskRepositoryWithTx creates a task repository using a transaction.
func NewTaskRepositoryWithTx(tx *sql.Tx) *TaskRepository {
	return &TaskRepository{q: tx}
}

// Create persists a new scheduled task.
func (r *TaskRepository) Create(ctx context.Context, task *domain.ScheduledTask) error {
	query := `
		INSERT INTO scheduled_tasks (id, match_id, kind, fire_at, done, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.q.ExecContext(ctx, query,
		task.ID, task.MatchID, task.Kind, task.FireAt, task.Done, task.CreatedAt)
	return err
}

// ListDue retrieves undone tasks whose fire time has passed.
func (r *TaskRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]*domain.ScheduledTask, error) {
	query := `
		SELECT id, match_id, kind, fire_at, done, created_at
		FROM scheduled_tasks
		WHERE done = FALSE AND fire_at <= $1
		ORDER BY fire_at ASC
		LIMIT $2
	`
	rows, err := r.q.QueryContext(ctx, query, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []*domain.ScheduledTask
	for rows.Next() {
		var task domain.ScheduledTask
		if err := rows.Scan(&task.ID, &task.MatchID, &task.Kind, &task.FireAt, &task.Done, &task.CreatedAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, &task)
	}
	return tasks, rows.Err()
}

// MarkDone marks a task as executed.
func (r *TaskRepository) MarkDone(ctx context.Context, id string) error {
	query := `UPDATE scheduled_tasks SET done = TRUE WHERE id = $1`
	_, err := r.q.ExecContext(ctx, query, id)
	return err
}

// CancelForMatch marks all undone tasks for a match as done.
func (r *TaskRepository) CancelForMatch(ctx context.Context, matchID string) error {
	query := `UPDATE scheduled_tasks SET done = TRUE WHERE match_id = $1 AND done = FALSE`
	_, err := r.q.ExecContext(ctx, query, matchID)
	return err
}
