package repository

import (
	"context"

	"campool/internal/domain"
)

// ChatRepository defines the persistence operations for chat messages. The
// engine only writes system messages; the chat UI reads through its own path.
type ChatRepository interface {
	// Create persists a chat message.
	Create(ctx context.Context, msg *domain.ChatMessage) error
}
