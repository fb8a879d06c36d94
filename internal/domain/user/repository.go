package user

import (
	"context"

	"cryptoboost/internal/domain/store"

	"github.com/shopspring/decimal"
)

type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Find(ctx context.Context, q store.Query) ([]User, error)

	// Apply adds every field of d to the stored row in one UPDATE (no read-modify-write).
	Apply(ctx context.Context, id string, d Delta) error
	// Debit subtracts amount from the balance, flooring the result at zero.
	Debit(ctx context.Context, id string, amount decimal.Decimal) error
	// MarkInvestmentHistory sets the one-way investment history flag.
	MarkInvestmentHistory(ctx context.Context, id string) error
	SetActive(ctx context.Context, id string, active bool) error
}
