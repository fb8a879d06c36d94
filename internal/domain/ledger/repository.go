package ledger

import (
	"context"

	"cryptoboost/internal/domain/store"
)

type Repository interface {
	// Append inserts a new entry; a (type, reference) collision returns ErrDuplicate.
	Append(ctx context.Context, tx *Transaction) error
	Find(ctx context.Context, q store.Query) ([]Transaction, error)
	GetByReference(ctx context.Context, typ Type, reference string) (*Transaction, error)
	// Transition moves the entry for (typ, reference) from one status to another.
	Transition(ctx context.Context, typ Type, reference string, from, to Status) (bool, error)
}
