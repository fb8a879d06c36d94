package uow

import (
	"context"

	"cryptoboost/internal/domain/funding"
	"cryptoboost/internal/domain/investment"
	"cryptoboost/internal/domain/ledger"
	"cryptoboost/internal/domain/setting"
	"cryptoboost/internal/domain/user"
)

// Repos bundles every repository bound to the same connection or transaction.
type Repos struct {
	Users        user.Repository
	Investments  investment.Repository
	Transactions ledger.Repository
	Deposits     funding.DepositRepository
	Withdrawals  funding.WithdrawalRepository
	Settings     setting.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// re-read the investment inside the tx, then pass it in
	WithinInvestmentTx(ctx context.Context, investmentID string, fn func(r Repos, inv *investment.Investment) error) error
}
