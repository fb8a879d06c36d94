package mysql

import (
	"context"

	invDomain "cryptoboost/internal/domain/investment"
	"cryptoboost/internal/domain/ledger"
	"cryptoboost/internal/domain/store"
	"cryptoboost/pkg/id"

	"gorm.io/gorm"
)

type InvestmentRepository struct {
	db  *gorm.DB
	col *Collection[invDomain.Investment]
}

func NewInvestmentRepository(db *gorm.DB) *InvestmentRepository {
	return &InvestmentRepository{db: db, col: NewCollection[invDomain.Investment](db)}
}

func (r *InvestmentRepository) Create(ctx context.Context, inv *invDomain.Investment) error {
	if inv.ID == "" {
		inv.ID = id.New()
	}
	return r.col.Insert(ctx, inv)
}

func (r *InvestmentRepository) GetByID(ctx context.Context, investmentID string) (*invDomain.Investment, error) {
	inv, err := r.col.ByID(ctx, investmentID)
	return inv, remap(err, invDomain.ErrNotFound, nil)
}

func (r *InvestmentRepository) Find(ctx context.Context, q store.Query) ([]invDomain.Investment, error) {
	return r.col.Find(ctx, q)
}

func (r *InvestmentRepository) CompareAndSet(ctx context.Context, investmentID string, guard []store.Filter, changes map[string]any) (bool, error) {
	return r.col.UpdateIf(ctx, investmentID, guard, changes)
}

func (r *InvestmentRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Unscoped().
		Model(&invDomain.Investment{}).
		Where("user_id = ?", userID).
		Count(&n).Error
	return n, err
}

func (r *InvestmentRepository) ListUnpaidComplete(ctx context.Context) ([]invDomain.Investment, error) {
	var out []invDomain.Investment
	err := r.db.WithContext(ctx).
		Where("is_complete = ?", true).
		Where("NOT EXISTS (SELECT 1 FROM transactions t WHERE t.type = ? AND t.reference = investments.id)", ledger.TypeProfit).
		Order("completed_at ASC").
		Find(&out).Error
	return out, err
}
