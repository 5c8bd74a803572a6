package postgres

import (
	"context"
	"database/sql"

	"campool/internal/domain"
)

// ChatRepository is a PostgreSQL implementation of repository.ChatRepository.
type ChatRepository struct {
	q Querier
}

// NewChatRepository creates a new PostgreSQL chat repository.
func NewChatRepository(db *sql.DB) *ChatRepository {
	return &ChatRepository{q: db}
}

// NewChatRepositoryWithTx creates a chat repository using a transaction.
func NewChatRepositoryWithTx(tx *sql.Tx) *ChatRepository {
	return &ChatRepository{q: tx}
}

// Create persists a chat message.
func (r *ChatRepository) Create(ctx context.Context, msg *domain.ChatMessage) error {
	query := `
		INSERT INTO chat_messages (id, chat_room_id, sender_id, body, is_system, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.q.ExecContext(ctx, query,
		msg.ID, msg.ChatRoomID, msg.SenderID, msg.Body, msg.System, msg.CreatedAt)
	return err
}
