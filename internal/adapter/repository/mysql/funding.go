package mysql

import (
	"context"
	"time"

	fundingDomain "cryptoboost/internal/domain/funding"
	"cryptoboost/internal/domain/store"
	"cryptoboost/pkg/id"

	"gorm.io/gorm"
)

type DepositRepository struct{ col *Collection[fundingDomain.Deposit] }

func NewDepositRepository(db *gorm.DB) *DepositRepository {
	return &DepositRepository{col: NewCollection[fundingDomain.Deposit](db)}
}

func (r *DepositRepository) Create(ctx context.Context, d *fundingDomain.Deposit) error {
	if d.ID == "" {
		d.ID = id.New()
	}
	return r.col.Insert(ctx, d)
}

func (r *DepositRepository) GetByID(ctx context.Context, depositID string) (*fundingDomain.Deposit, error) {
	d, err := r.col.ByID(ctx, depositID)
	return d, remap(err, fundingDomain.ErrDepositNotFound, nil)
}

func (r *DepositRepository) Find(ctx context.Context, q store.Query) ([]fundingDomain.Deposit, error) {
	return r.col.Find(ctx, q)
}

func (r *DepositRepository) Transition(ctx context.Context, depositID string, from, to fundingDomain.Status, at time.Time) (bool, error) {
	return r.col.UpdateIf(ctx, depositID,
		[]store.Filter{store.Eq(fundingDomain.ColStatus, from)},
		map[string]any{"status": to, "processed_at": at})
}

type WithdrawalRepository struct{ col *Collection[fundingDomain.Withdrawal] }

func NewWithdrawalRepository(db *gorm.DB) *WithdrawalRepository {
	return &WithdrawalRepository{col: NewCollection[fundingDomain.Withdrawal](db)}
}

func (r *WithdrawalRepository) Create(ctx context.Context, w *fundingDomain.Withdrawal) error {
	if w.ID == "" {
		w.ID = id.New()
	}
	return r.col.Insert(ctx, w)
}

func (r *WithdrawalRepository) GetByID(ctx context.Context, withdrawalID string) (*fundingDomain.Withdrawal, error) {
	w, err := r.col.ByID(ctx, withdrawalID)
	return w, remap(err, fundingDomain.ErrWithdrawalNotFound, nil)
}

func (r *WithdrawalRepository) Find(ctx context.Context, q store.Query) ([]fundingDomain.Withdrawal, error) {
	return r.col.Find(ctx, q)
}

func (r *WithdrawalRepository) Transition(ctx context.Context, withdrawalID string, from, to fundingDomain.Status, at time.Time) (bool, error) {
	return r.col.UpdateIf(ctx, withdrawalID,
		[]store.Filter{store.Eq(fundingDomain.ColStatus, from)},
		map[string]any{"status": to, "processed_at": at})
}
