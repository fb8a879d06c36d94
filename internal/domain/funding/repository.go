package funding

import (
	"context"
	"time"

	"cryptoboost/internal/domain/store"
)

type DepositRepository interface {
	Create(ctx context.Context, d *Deposit) error
	GetByID(ctx context.Context, id string) (*Deposit, error)
	Find(ctx context.Context, q store.Query) ([]Deposit, error)
	// Transition moves a request from one status to another, false if it was not in from.
	Transition(ctx context.Context, id string, from, to Status, at time.Time) (bool, error)
}

type WithdrawalRepository interface {
	Create(ctx context.Context, w *Withdrawal) error
	GetByID(ctx context.Context, id string) (*Withdrawal, error)
	Find(ctx context.Context, q store.Query) ([]Withdrawal, error)
	Transition(ctx context.Context, id string, from, to Status, at time.Time) (bool, error)
}
