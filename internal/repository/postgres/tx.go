package postgres

import (
	"context"
	"database/sql"

	"campool/internal/repository"
)

// TxManager is a PostgreSQL implementation of repository.TxManager, handing
// the callback transaction-scoped repositories over one *sql.Tx.
type TxManager struct {
	db *sql.DB
}

// NewTxManager creates a new TxManager.
func NewTxManager(db *sql.DB) *TxManager {
	return &TxManager{db: db}
}

// WithinTx runs fn inside a transaction, committing on nil and rolling back
// on error or panic.
func (m *TxManager) WithinTx(ctx context.Context, fn func(uow *repository.UnitOfWork) error) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	uow := &repository.UnitOfWork{
		Requests:      NewRequestRepositoryWithTx(tx),
		Matches:       NewMatchRepositoryWithTx(tx),
		Notifications: NewNotificationRepositoryWithTx(tx),
		Tasks:         NewTaskRepositoryWithTx(tx),
		Chat:          NewChatRepositoryWithTx(tx),
	}

	if err := fn(uow); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Ensure interface is satisfied.
var _ repository.TxManager = (*TxManager)(nil)
