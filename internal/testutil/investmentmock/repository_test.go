package investmentmock

import (
	"context"
	"errors"
	"testing"

	domain "cryptoboost/internal/domain/investment"
	"cryptoboost/internal/domain/store"
)

func TestRepo_CompareAndSet(t *testing.T) {
	ctx := context.Background()
	m := &Repo{
		CompareAndSetFn: func(_ context.Context, id string, guard []store.Filter, changes map[string]any) (bool, error) {
			if id != "inv-1" || len(guard) != 2 || changes[domain.ColIsComplete] != true {
				t.Fatalf("args not forwarded: %s %+v %+v", id, guard, changes)
			}
			return true, nil
		},
	}
	ok, err := m.CompareAndSet(ctx, "inv-1", domain.OpenFilters(), map[string]any{domain.ColIsComplete: true})
	if !ok || err != nil {
		t.Fatalf("CompareAndSet: ok=%v err=%v", ok, err)
	}

	// Default (nil func) → errUnimplemented
	m = &Repo{}
	if _, err := m.CompareAndSet(ctx, "inv-1", nil, nil); !errors.Is(err, errUnimplemented) {
		t.Fatalf("CompareAndSet default: want errUnimplemented, got %v", err)
	}
	if n, err := m.CountByUser(ctx, "u1"); n != 0 || err != nil {
		t.Fatalf("CountByUser default: n=%d err=%v", n, err)
	}
}
