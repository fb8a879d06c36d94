package mysql

import (
	"context"

	"cryptoboost/internal/domain/store"
	userDomain "cryptoboost/internal/domain/user"
	"cryptoboost/pkg/id"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type UserRepository struct{ col *Collection[userDomain.User] }

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{col: NewCollection[userDomain.User](db)}
}

func (r *UserRepository) Create(ctx context.Context, u *userDomain.User) error {
	if u.ID == "" {
		u.ID = id.New()
	}
	return remap(r.col.Insert(ctx, u), nil, userDomain.ErrExists)
}

func (r *UserRepository) GetByID(ctx context.Context, userID string) (*userDomain.User, error) {
	u, err := r.col.ByID(ctx, userID)
	return u, remap(err, userDomain.ErrNotFound, nil)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*userDomain.User, error) {
	list, err := r.col.Find(ctx, store.Where(store.Eq(userDomain.ColEmail, email)).Take(1))
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, userDomain.ErrNotFound
	}
	return &list[0], nil
}

func (r *UserRepository) Find(ctx context.Context, q store.Query) ([]userDomain.User, error) {
	return r.col.Find(ctx, q)
}

func (r *UserRepository) Apply(ctx context.Context, userID string, d userDomain.Delta) error {
	updates := map[string]any{}
	if !d.Balance.IsZero() {
		updates["balance"] = gorm.Expr("balance + ?", d.Balance)
	}
	if !d.InvestedAmount.IsZero() {
		updates["invested_amount"] = gorm.Expr("invested_amount + ?", d.InvestedAmount)
	}
	if !d.TotalProfit.IsZero() {
		updates["total_profit"] = gorm.Expr("total_profit + ?", d.TotalProfit)
	}
	if len(updates) == 0 {
		return nil
	}
	return remap(r.col.Update(ctx, userID, updates), userDomain.ErrNotFound, nil)
}

func (r *UserRepository) Debit(ctx context.Context, userID string, amount decimal.Decimal) error {
	updates := map[string]any{
		"balance": gorm.Expr("CASE WHEN balance > ? THEN balance - ? ELSE 0 END", amount, amount),
	}
	return remap(r.col.Update(ctx, userID, updates), userDomain.ErrNotFound, nil)
}

func (r *UserRepository) MarkInvestmentHistory(ctx context.Context, userID string) error {
	return remap(r.col.Update(ctx, userID, map[string]any{"has_investment_history": true}), userDomain.ErrNotFound, nil)
}

func (r *UserRepository) SetActive(ctx context.Context, userID string, active bool) error {
	return remap(r.col.Update(ctx, userID, map[string]any{userDomain.ColIsActive: active}), userDomain.ErrNotFound, nil)
}
