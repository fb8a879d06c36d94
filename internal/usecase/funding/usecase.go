package funding

import (
	"context"
	"errors"
	"strings"
	"time"

	"cryptoboost/internal/domain/funding"
	"cryptoboost/internal/domain/investment"
	"cryptoboost/internal/domain/ledger"
	"cryptoboost/internal/domain/setting"
	"cryptoboost/internal/domain/store"
	"cryptoboost/internal/domain/uow"
	"cryptoboost/internal/domain/user"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type Usecase struct {
	users       user.Repository
	investments investment.Repository
	deposits    funding.DepositRepository
	withdrawals funding.WithdrawalRepository
	settings    setting.Repository
	uow         uow.UnitOfWork
}

func NewUsecase(repos uow.Repos, tx uow.UnitOfWork) *Usecase {
	return &Usecase{
		users:       repos.Users,
		investments: repos.Investments,
		deposits:    repos.Deposits,
		withdrawals: repos.Withdrawals,
		settings:    repos.Settings,
		uow:         tx,
	}
}

func parseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || !d.IsPositive() {
		return decimal.Zero, funding.ErrInvalidAmount
	}
	return d, nil
}

// RequestDeposit validates the request and files a pending deposit with its
// pending ledger entry. Nothing is credited until an admin approves it.
func (u *Usecase) RequestDeposit(ctx context.Context, in DepositInput) (*DepositReceipt, error) {
	amount, err := parseAmount(in.Amount)
	if err != nil {
		return nil, err
	}
	crypto, err := funding.ParseCrypto(in.CryptoType)
	if err != nil {
		return nil, err
	}
	cfg, err := u.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	address, ok := cfg.DepositAddress(string(crypto))
	if !ok {
		return nil, funding.ErrUnsupportedCrypto
	}

	d := &funding.Deposit{UserID: in.UserID, Amount: amount, CryptoType: crypto, Status: funding.StatusPending}
	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if _, err := r.Users.GetByID(ctx, in.UserID); err != nil {
			return err
		}
		if err := r.Deposits.Create(ctx, d); err != nil {
			return err
		}
		return r.Transactions.Append(ctx, &ledger.Transaction{
			UserID:     in.UserID,
			Type:       ledger.TypeDeposit,
			Reference:  d.ID,
			Amount:     amount,
			Status:     ledger.StatusPending,
			CryptoType: string(crypto),
		})
	})
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"deposit_id": d.ID, "user_id": d.UserID, "crypto": crypto}).Info("deposit: requested")
	return &DepositReceipt{Deposit: *d, Address: address}, nil
}

// QuoteWithdrawal prices a withdrawal for the user. An empty amount means the
// whole balance. The fee only applies to users who ever created an investment.
func (u *Usecase) QuoteWithdrawal(ctx context.Context, userID, amount string) (*WithdrawalQuote, error) {
	usr, err := u.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return u.quote(ctx, usr, amount)
}

func (u *Usecase) quote(ctx context.Context, usr *user.User, amount string) (*WithdrawalQuote, error) {
	if !usr.Balance.IsPositive() {
		return nil, funding.ErrInsufficientFunds
	}
	want := usr.Balance
	if strings.TrimSpace(amount) != "" {
		a, err := parseAmount(amount)
		if err != nil {
			return nil, err
		}
		if a.GreaterThan(usr.Balance) {
			return nil, funding.ErrInsufficientFunds
		}
		want = a
	}

	rate := decimal.Zero
	history, err := u.hasInvestmentHistory(ctx, usr)
	if err != nil {
		return nil, err
	}
	if history {
		cfg, err := u.settings.Get(ctx)
		if err != nil {
			return nil, err
		}
		rate = cfg.WithdrawalFeeRate()
	}
	tax := want.Mul(rate).Round(8)
	return &WithdrawalQuote{Amount: want, Tax: tax, TaxRate: rate, Total: want.Add(tax)}, nil
}

// hasInvestmentHistory trusts the one-way flag, falling back to counting
// investment records for accounts created before the flag existed.
func (u *Usecase) hasInvestmentHistory(ctx context.Context, usr *user.User) (bool, error) {
	if usr.HasInvestmentHistory {
		return true, nil
	}
	n, err := u.investments.CountByUser(ctx, usr.ID)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// RequestWithdrawal files a pending withdrawal with the tax fixed at request time.
func (u *Usecase) RequestWithdrawal(ctx context.Context, in WithdrawalInput) (*funding.Withdrawal, error) {
	address := strings.TrimSpace(in.Address)
	if address == "" {
		return nil, funding.ErrAddressRequired
	}
	crypto, err := funding.ParseCrypto(in.CryptoType)
	if err != nil {
		return nil, err
	}
	usr, err := u.users.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	q, err := u.quote(ctx, usr, in.Amount)
	if err != nil {
		return nil, err
	}

	w := &funding.Withdrawal{
		UserID:     usr.ID,
		Amount:     q.Amount,
		Tax:        q.Tax,
		CryptoType: crypto,
		Address:    address,
		Status:     funding.StatusPending,
	}
	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if err := r.Withdrawals.Create(ctx, w); err != nil {
			return err
		}
		return r.Transactions.Append(ctx, &ledger.Transaction{
			UserID:     usr.ID,
			Type:       ledger.TypeWithdrawal,
			Reference:  w.ID,
			Amount:     w.Total().Neg(),
			Status:     ledger.StatusPending,
			CryptoType: string(crypto),
		})
	})
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"withdrawal_id": w.ID, "user_id": w.UserID, "tax": w.Tax}).Info("withdrawal: requested")
	return w, nil
}

// ApproveDeposit credits the deposit exactly once.
func (u *Usecase) ApproveDeposit(ctx context.Context, depositID string, now time.Time) error {
	return u.uow.WithinTx(ctx, func(r uow.Repos) error {
		d, err := r.Deposits.GetByID(ctx, depositID)
		if err != nil {
			return err
		}
		if err := transition(ctx, r.Deposits.Transition, depositID, funding.StatusApproved, now); err != nil {
			return err
		}
		if err := r.Users.Apply(ctx, d.UserID, user.Delta{Balance: d.Amount}); err != nil {
			return err
		}
		return settleEntry(ctx, r, ledger.TypeDeposit, d.ID, ledger.StatusApproved, &ledger.Transaction{
			UserID: d.UserID, Amount: d.Amount, CryptoType: string(d.CryptoType),
		})
	})
}

func (u *Usecase) RejectDeposit(ctx context.Context, depositID string, now time.Time) error {
	return u.uow.WithinTx(ctx, func(r uow.Repos) error {
		d, err := r.Deposits.GetByID(ctx, depositID)
		if err != nil {
			return err
		}
		if err := transition(ctx, r.Deposits.Transition, depositID, funding.StatusRejected, now); err != nil {
			return err
		}
		return settleEntry(ctx, r, ledger.TypeDeposit, d.ID, ledger.StatusRejected, &ledger.Transaction{
			UserID: d.UserID, Amount: d.Amount, CryptoType: string(d.CryptoType),
		})
	})
}

// ApproveWithdrawal debits amount+tax exactly once, flooring the balance at zero.
func (u *Usecase) ApproveWithdrawal(ctx context.Context, withdrawalID string, now time.Time) error {
	return u.uow.WithinTx(ctx, func(r uow.Repos) error {
		w, err := r.Withdrawals.GetByID(ctx, withdrawalID)
		if err != nil {
			return err
		}
		if err := transition(ctx, r.Withdrawals.Transition, withdrawalID, funding.StatusApproved, now); err != nil {
			return err
		}
		if err := r.Users.Debit(ctx, w.UserID, w.Total()); err != nil {
			return err
		}
		return settleEntry(ctx, r, ledger.TypeWithdrawal, w.ID, ledger.StatusApproved, &ledger.Transaction{
			UserID: w.UserID, Amount: w.Total().Neg(), CryptoType: string(w.CryptoType),
		})
	})
}

func (u *Usecase) RejectWithdrawal(ctx context.Context, withdrawalID string, now time.Time) error {
	return u.uow.WithinTx(ctx, func(r uow.Repos) error {
		w, err := r.Withdrawals.GetByID(ctx, withdrawalID)
		if err != nil {
			return err
		}
		if err := transition(ctx, r.Withdrawals.Transition, withdrawalID, funding.StatusRejected, now); err != nil {
			return err
		}
		return settleEntry(ctx, r, ledger.TypeWithdrawal, w.ID, ledger.StatusRejected, &ledger.Transaction{
			UserID: w.UserID, Amount: w.Total().Neg(), CryptoType: string(w.CryptoType),
		})
	})
}

// ListDeposits / ListWithdrawals filter by user and/or status; empty means any.
func (u *Usecase) ListDeposits(ctx context.Context, userID string, status funding.Status) ([]funding.Deposit, error) {
	return u.deposits.Find(ctx, requestQuery(userID, status))
}

func (u *Usecase) ListWithdrawals(ctx context.Context, userID string, status funding.Status) ([]funding.Withdrawal, error) {
	return u.withdrawals.Find(ctx, requestQuery(userID, status))
}

func requestQuery(userID string, status funding.Status) store.Query {
	var q store.Query
	if userID != "" {
		q.Filters = append(q.Filters, store.Eq(funding.ColUserID, userID))
	}
	if status != "" {
		q.Filters = append(q.Filters, store.Eq(funding.ColStatus, status))
	}
	return q.OrderBy("created_at", true)
}

type transitionFn func(ctx context.Context, id string, from, to funding.Status, at time.Time) (bool, error)

func transition(ctx context.Context, fn transitionFn, id string, to funding.Status, at time.Time) error {
	ok, err := fn(ctx, id, funding.StatusPending, to, at)
	if err != nil {
		return err
	}
	if !ok {
		return funding.ErrAlreadyProcessed
	}
	return nil
}

// settleEntry moves the pending ledger entry of a request to its final status.
// Requests filed before ledger entries existed get one appended instead.
func settleEntry(ctx context.Context, r uow.Repos, typ ledger.Type, ref string, to ledger.Status, fallback *ledger.Transaction) error {
	ok, err := r.Transactions.Transition(ctx, typ, ref, ledger.StatusPending, to)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	_, err = r.Transactions.GetByReference(ctx, typ, ref)
	switch {
	case err == nil:
		return nil
	case !errors.Is(err, ledger.ErrNotFound):
		return err
	}
	fallback.Type, fallback.Reference, fallback.Status = typ, ref, to
	return r.Transactions.Append(ctx, fallback)
}
