package mysql

import (
	"context"

	"cryptoboost/internal/domain/investment"
	"cryptoboost/internal/domain/uow"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormUoW struct{ db *gorm.DB }

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

// NewRepos binds every repository to db (a plain handle or a tx).
func NewRepos(db *gorm.DB) uow.Repos {
	return uow.Repos{
		Users:        NewUserRepository(db),
		Investments:  NewInvestmentRepository(db),
		Transactions: NewLedgerRepository(db),
		Deposits:     NewDepositRepository(db),
		Withdrawals:  NewWithdrawalRepository(db),
		Settings:     NewSettingRepository(db),
	}
}

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepos(tx))
	})
}

func (u *GormUoW) WithinInvestmentTx(ctx context.Context, investmentID string, fn func(r uow.Repos, inv *investment.Investment) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// lock the investment row up-front where the dialect supports it
		q := tx
		if tx.Dialector.Name() != "sqlite" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var inv investment.Investment
		if err := q.Where("id = ?", investmentID).First(&inv).Error; err != nil {
			return remap(translate(err), investment.ErrNotFound, nil)
		}
		return fn(NewRepos(tx), &inv)
	})
}
