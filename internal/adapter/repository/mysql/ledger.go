package mysql

import (
	"context"

	ledgerDomain "cryptoboost/internal/domain/ledger"
	"cryptoboost/internal/domain/store"
	"cryptoboost/pkg/id"

	"gorm.io/gorm"
)

type LedgerRepository struct {
	db  *gorm.DB
	col *Collection[ledgerDomain.Transaction]
}

func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db, col: NewCollection[ledgerDomain.Transaction](db)}
}

func (r *LedgerRepository) Append(ctx context.Context, tx *ledgerDomain.Transaction) error {
	if tx.ID == "" {
		tx.ID = id.New()
	}
	return remap(r.col.Insert(ctx, tx), nil, ledgerDomain.ErrDuplicate)
}

func (r *LedgerRepository) Find(ctx context.Context, q store.Query) ([]ledgerDomain.Transaction, error) {
	return r.col.Find(ctx, q)
}

func (r *LedgerRepository) GetByReference(ctx context.Context, typ ledgerDomain.Type, reference string) (*ledgerDomain.Transaction, error) {
	list, err := r.col.Find(ctx, store.Where(
		store.Eq(ledgerDomain.ColType, typ),
		store.Eq(ledgerDomain.ColReference, reference),
	).Take(1))
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, ledgerDomain.ErrNotFound
	}
	return &list[0], nil
}

func (r *LedgerRepository) Transition(ctx context.Context, typ ledgerDomain.Type, reference string, from, to ledgerDomain.Status) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&ledgerDomain.Transaction{}).
		Where("type = ? AND reference = ? AND status = ?", typ, reference, from).
		Updates(map[string]any{"status": to})
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected > 0, nil
}
