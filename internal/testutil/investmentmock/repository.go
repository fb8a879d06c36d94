package investmentmock

import (
	"context"
	"errors"

	domain "cryptoboost/internal/domain/investment"
	"cryptoboost/internal/domain/store"
)

var _ domain.Repository = (*Repo)(nil)

var errUnimplemented = errors.New("investmentmock: method not implemented")

// Repo is a function-backed mock that satisfies investment.Repository.
type Repo struct {
	CreateFn             func(ctx context.Context, inv *domain.Investment) error
	GetByIDFn            func(ctx context.Context, id string) (*domain.Investment, error)
	FindFn               func(ctx context.Context, q store.Query) ([]domain.Investment, error)
	CompareAndSetFn      func(ctx context.Context, id string, guard []store.Filter, changes map[string]any) (bool, error)
	CountByUserFn        func(ctx context.Context, userID string) (int64, error)
	ListUnpaidCompleteFn func(ctx context.Context) ([]domain.Investment, error)
}

func (m *Repo) Create(ctx context.Context, inv *domain.Investment) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, inv)
	}
	return nil
}

func (m *Repo) GetByID(ctx context.Context, id string) (*domain.Investment, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, errUnimplemented
}

func (m *Repo) Find(ctx context.Context, q store.Query) ([]domain.Investment, error) {
	if m.FindFn != nil {
		return m.FindFn(ctx, q)
	}
	return nil, errUnimplemented
}

func (m *Repo) CompareAndSet(ctx context.Context, id string, guard []store.Filter, changes map[string]any) (bool, error) {
	if m.CompareAndSetFn != nil {
		return m.CompareAndSetFn(ctx, id, guard, changes)
	}
	return false, errUnimplemented
}

func (m *Repo) CountByUser(ctx context.Context, userID string) (int64, error) {
	if m.CountByUserFn != nil {
		return m.CountByUserFn(ctx, userID)
	}
	return 0, nil
}

func (m *Repo) ListUnpaidComplete(ctx context.Context) ([]domain.Investment, error) {
	if m.ListUnpaidCompleteFn != nil {
		return m.ListUnpaidCompleteFn(ctx)
	}
	return nil, nil
}
