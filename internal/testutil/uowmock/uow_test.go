package uowmock

import (
	"context"
	"errors"
	"testing"

	"cryptoboost/internal/domain/investment"
	"cryptoboost/internal/domain/uow"
	"cryptoboost/internal/testutil/investmentmock"
	"cryptoboost/internal/testutil/usermock"
)

func TestUoW_WithinTx_Happy(t *testing.T) {
	ctx := context.Background()

	users := &usermock.Repo{}
	invs := &investmentmock.Repo{}
	repos := uow.Repos{Users: users, Investments: invs}

	innerCalled := false
	m := &UoW{
		WithinTxFn: func(gotCtx context.Context, fn func(r uow.Repos) error) error {
			if gotCtx != ctx {
				t.Fatalf("WithinTx: ctx mismatch")
			}
			return fn(repos)
		},
	}

	err := m.WithinTx(ctx, func(r uow.Repos) error {
		innerCalled = true
		if r.Users != users || r.Investments != invs {
			t.Fatalf("WithinTx: repos not forwarded correctly")
		}
		return nil
	})
	if err != nil || !innerCalled {
		t.Fatalf("WithinTx: err=%v called=%v", err, innerCalled)
	}
}

func TestUoW_Defaults_Unimplemented(t *testing.T) {
	ctx := context.Background()
	m := &UoW{}
	if err := m.WithinTx(ctx, func(uow.Repos) error { return nil }); !errors.Is(err, errUnimplemented) {
		t.Fatalf("WithinTx default: want errUnimplemented, got %v", err)
	}
	if err := m.WithinInvestmentTx(ctx, "inv-x", func(uow.Repos, *investment.Investment) error { return nil }); !errors.Is(err, errUnimplemented) {
		t.Fatalf("WithinInvestmentTx default: want errUnimplemented, got %v", err)
	}
}

func TestUoW_WithinInvestmentTx_PropagatesError(t *testing.T) {
	sentinel := errors.New("stop")
	m := New().WithWithinInvestmentTx(func(context.Context, string, func(uow.Repos, *investment.Investment) error) error {
		return sentinel
	})
	if err := m.WithinInvestmentTx(context.Background(), "inv-x", func(uow.Repos, *investment.Investment) error { return nil }); !errors.Is(err, sentinel) {
		t.Fatalf("want %v, got %v", sentinel, err)
	}
}

func TestPassthrough_LoadsInvestment(t *testing.T) {
	want := &investment.Investment{ID: "inv-7"}
	repos := uow.Repos{Investments: &investmentmock.Repo{
		GetByIDFn: func(_ context.Context, id string) (*investment.Investment, error) {
			if id != "inv-7" {
				return nil, investment.ErrNotFound
			}
			return want, nil
		},
	}}
	m := Passthrough(repos)

	var got *investment.Investment
	if err := m.WithinInvestmentTx(context.Background(), "inv-7", func(_ uow.Repos, inv *investment.Investment) error {
		got = inv
		return nil
	}); err != nil {
		t.Fatalf("WithinInvestmentTx: %v", err)
	}
	if got != want {
		t.Fatalf("investment not forwarded: %+v", got)
	}
	if err := m.WithinInvestmentTx(context.Background(), "missing", func(uow.Repos, *investment.Investment) error { return nil }); !errors.Is(err, investment.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestUoW_FluentSetters_And_Reset(t *testing.T) {
	m := New().
		WithWithinTx(func(context.Context, func(uow.Repos) error) error { return nil }).
		WithWithinInvestmentTx(func(context.Context, string, func(uow.Repos, *investment.Investment) error) error { return nil })
	if m.WithinTxFn == nil || m.WithinInvestmentTxFn == nil {
		t.Fatalf("fluent setters didn't assign funcs")
	}
	m.Reset()
	if m.WithinTxFn != nil || m.WithinInvestmentTxFn != nil {
		t.Fatalf("Reset should clear function fields")
	}
}
