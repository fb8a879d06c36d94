package ledgermock

import (
	"context"
	"errors"

	domain "cryptoboost/internal/domain/ledger"
	"cryptoboost/internal/domain/store"
)

var _ domain.Repository = (*Repo)(nil)

var errUnimplemented = errors.New("ledgermock: method not implemented")

// Repo is a function-backed mock that satisfies ledger.Repository.
type Repo struct {
	AppendFn         func(ctx context.Context, tx *domain.Transaction) error
	FindFn           func(ctx context.Context, q store.Query) ([]domain.Transaction, error)
	GetByReferenceFn func(ctx context.Context, typ domain.Type, reference string) (*domain.Transaction, error)
	TransitionFn     func(ctx context.Context, typ domain.Type, reference string, from, to domain.Status) (bool, error)
}

func (m *Repo) Append(ctx context.Context, tx *domain.Transaction) error {
	if m.AppendFn != nil {
		return m.AppendFn(ctx, tx)
	}
	return nil
}

func (m *Repo) Find(ctx context.Context, q store.Query) ([]domain.Transaction, error) {
	if m.FindFn != nil {
		return m.FindFn(ctx, q)
	}
	return nil, errUnimplemented
}

func (m *Repo) GetByReference(ctx context.Context, typ domain.Type, reference string) (*domain.Transaction, error) {
	if m.GetByReferenceFn != nil {
		return m.GetByReferenceFn(ctx, typ, reference)
	}
	return nil, errUnimplemented
}

func (m *Repo) Transition(ctx context.Context, typ domain.Type, reference string, from, to domain.Status) (bool, error) {
	if m.TransitionFn != nil {
		return m.TransitionFn(ctx, typ, reference, from, to)
	}
	return true, nil
}
