package usermock

import (
	"context"
	"errors"

	"cryptoboost/internal/domain/store"
	domain "cryptoboost/internal/domain/user"

	"github.com/shopspring/decimal"
)

var _ domain.Repository = (*Repo)(nil)

var errUnimplemented = errors.New("usermock: method not implemented")

// Repo is a function-backed mock that satisfies user.Repository.
// Unset lookups return errUnimplemented; unset writes are no-ops.
type Repo struct {
	CreateFn                func(ctx context.Context, u *domain.User) error
	GetByIDFn               func(ctx context.Context, id string) (*domain.User, error)
	GetByEmailFn            func(ctx context.Context, email string) (*domain.User, error)
	FindFn                  func(ctx context.Context, q store.Query) ([]domain.User, error)
	ApplyFn                 func(ctx context.Context, id string, d domain.Delta) error
	DebitFn                 func(ctx context.Context, id string, amount decimal.Decimal) error
	MarkInvestmentHistoryFn func(ctx context.Context, id string) error
	SetActiveFn             func(ctx context.Context, id string, active bool) error
}

func (m *Repo) Create(ctx context.Context, u *domain.User) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, u)
	}
	return nil
}

func (m *Repo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, errUnimplemented
}

func (m *Repo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.GetByEmailFn != nil {
		return m.GetByEmailFn(ctx, email)
	}
	return nil, errUnimplemented
}

func (m *Repo) Find(ctx context.Context, q store.Query) ([]domain.User, error) {
	if m.FindFn != nil {
		return m.FindFn(ctx, q)
	}
	return nil, errUnimplemented
}

func (m *Repo) Apply(ctx context.Context, id string, d domain.Delta) error {
	if m.ApplyFn != nil {
		return m.ApplyFn(ctx, id, d)
	}
	return nil
}

func (m *Repo) Debit(ctx context.Context, id string, amount decimal.Decimal) error {
	if m.DebitFn != nil {
		return m.DebitFn(ctx, id, amount)
	}
	return nil
}

func (m *Repo) MarkInvestmentHistory(ctx context.Context, id string) error {
	if m.MarkInvestmentHistoryFn != nil {
		return m.MarkInvestmentHistoryFn(ctx, id)
	}
	return nil
}

func (m *Repo) SetActive(ctx context.Context, id string, active bool) error {
	if m.SetActiveFn != nil {
		return m.SetActiveFn(ctx, id, active)
	}
	return nil
}
