package fundingmock

import (
	"context"
	"errors"
	"time"

	domain "cryptoboost/internal/domain/funding"
	"cryptoboost/internal/domain/store"
)

var (
	_ domain.DepositRepository    = (*Deposits)(nil)
	_ domain.WithdrawalRepository = (*Withdrawals)(nil)
)

var errUnimplemented = errors.New("fundingmock: method not implemented")

// Deposits is a function-backed mock that satisfies funding.DepositRepository.
type Deposits struct {
	CreateFn     func(ctx context.Context, d *domain.Deposit) error
	GetByIDFn    func(ctx context.Context, id string) (*domain.Deposit, error)
	FindFn       func(ctx context.Context, q store.Query) ([]domain.Deposit, error)
	TransitionFn func(ctx context.Context, id string, from, to domain.Status, at time.Time) (bool, error)
}

func (m *Deposits) Create(ctx context.Context, d *domain.Deposit) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, d)
	}
	return nil
}

func (m *Deposits) GetByID(ctx context.Context, id string) (*domain.Deposit, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, errUnimplemented
}

func (m *Deposits) Find(ctx context.Context, q store.Query) ([]domain.Deposit, error) {
	if m.FindFn != nil {
		return m.FindFn(ctx, q)
	}
	return nil, errUnimplemented
}

func (m *Deposits) Transition(ctx context.Context, id string, from, to domain.Status, at time.Time) (bool, error) {
	if m.TransitionFn != nil {
		return m.TransitionFn(ctx, id, from, to, at)
	}
	return false, errUnimplemented
}

// Withdrawals is a function-backed mock that satisfies funding.WithdrawalRepository.
type Withdrawals struct {
	CreateFn     func(ctx context.Context, w *domain.Withdrawal) error
	GetByIDFn    func(ctx context.Context, id string) (*domain.Withdrawal, error)
	FindFn       func(ctx context.Context, q store.Query) ([]domain.Withdrawal, error)
	TransitionFn func(ctx context.Context, id string, from, to domain.Status, at time.Time) (bool, error)
}

func (m *Withdrawals) Create(ctx context.Context, w *domain.Withdrawal) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, w)
	}
	return nil
}

func (m *Withdrawals) GetByID(ctx context.Context, id string) (*domain.Withdrawal, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, errUnimplemented
}

func (m *Withdrawals) Find(ctx context.Context, q store.Query) ([]domain.Withdrawal, error) {
	if m.FindFn != nil {
		return m.FindFn(ctx, q)
	}
	return nil, errUnimplemented
}

func (m *Withdrawals) Transition(ctx context.Context, id string, from, to domain.Status, at time.Time) (bool, error) {
	if m.TransitionFn != nil {
		return m.TransitionFn(ctx, id, from, to, at)
	}
	return false, errUnimplemented
}
