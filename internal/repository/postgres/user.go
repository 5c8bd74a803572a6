package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"campool/internal/domain"
	"campool/internal/repository"
)

// UserRepository is a PostgreSQL implementation of repository.UserRepository.
type UserRepository struct {
	q Querier
}

// NewUserRepository creates a new PostgreSQL user repository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{q: db}
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT id, name, gender, department, verified, push_token FROM users WHERE id = $1`

	var user domain.User
	var pushToken sql.NullString
	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&user.ID, &user.Name, &user.Gender, &user.Department, &user.Verified, &pushToken)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	if pushToken.Valid {
		user.PushToken = pushToken.String
	}
	return &user, nil
}

// GetByIDs retrieves several users in one query, keyed by id.
func (r *UserRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*domain.User, error) {
	if len(ids) == 0 {
		return map[string]*domain.User{}, nil
	}

	query := `SELECT id, name, gender, department, verified, push_token FROM users WHERE id = ANY($1)`
	rows, err := r.q.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make(map[string]*domain.User, len(ids))
	for rows.Next() {
		var user domain.User
		var pushToken sql.NullString
		if err := rows.Scan(&user.ID, &user.Name, &user.Gender, &user.Department, &user.Verified, &pushToken); err != nil {
			return nil, err
		}
		if pushToken.Valid {
			user.PushToken = pushToken.String
		}
		users[user.ID] = &user
	}
	return users, rows.Err()
}
