package repository

import "context"

// UnitOfWork bundles the repositories participating in one atomic write.
// Every multi-record lifecycle mutation (match + linked requests +
// notifications + tasks) goes through a single unit so partial application
// is never observable.
type UnitOfWork struct {
	Requests      RequestRepository
	Matches       MatchRepository
	Notifications NotificationRepository
	Tasks         TaskRepository
	Chat          ChatRepository
}

// TxManager runs a function inside a datastore transaction. The function's
// error aborts the transaction; nil commits it.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(uow *UnitOfWork) error) error
}
