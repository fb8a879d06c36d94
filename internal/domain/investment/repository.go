package investment

import (
	"context"

	"cryptoboost/internal/domain/store"
)

type Repository interface {
	Create(ctx context.Context, inv *Investment) error
	GetByID(ctx context.Context, id string) (*Investment, error)
	Find(ctx context.Context, q store.Query) ([]Investment, error)

	// CompareAndSet applies changes only if the row still matches guard.
	// false means another writer got there first.
	CompareAndSet(ctx context.Context, id string, guard []store.Filter, changes map[string]any) (bool, error)

	// CountByUser counts every investment ever created by the user, deleted ones included.
	CountByUser(ctx context.Context, userID string) (int64, error)

	// ListUnpaidComplete returns complete investments that have no profit ledger entry.
	ListUnpaidComplete(ctx context.Context) ([]Investment, error)
}
