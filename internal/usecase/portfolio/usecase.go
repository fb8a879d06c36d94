package portfolio

import (
	"context"
	"fmt"
	"time"

	"cryptoboost/internal/domain/investment"
	"cryptoboost/internal/domain/ledger"
	"cryptoboost/internal/domain/store"
	"cryptoboost/internal/domain/uow"
	"cryptoboost/internal/domain/user"
	"cryptoboost/internal/usecase/accrual"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// DefaultTransactionLimit caps ListTransactions when no limit is given.
const DefaultTransactionLimit = 50

type Usecase struct {
	users        user.Repository
	investments  investment.Repository
	transactions ledger.Repository
	uow          uow.UnitOfWork
}

func NewUsecase(users user.Repository, investments investment.Repository, transactions ledger.Repository, tx uow.UnitOfWork) *Usecase {
	return &Usecase{users: users, investments: investments, transactions: transactions, uow: tx}
}

// CreateInvestment files a pending investment and sets the user's one-way
// investment history flag.
func (u *Usecase) CreateInvestment(ctx context.Context, in CreateInvestmentInput) (*InvestmentDTO, error) {
	terms, err := investment.LookupPlan(in.Plan)
	if err != nil {
		return nil, err
	}
	if !in.Amount.IsPositive() {
		return nil, investment.ErrInvalidAmount
	}
	if u.uow == nil {
		return nil, investment.ErrInvalidTransition
	}

	inv := &investment.Investment{
		UserID:         in.UserID,
		PlanName:       terms.Plan,
		Amount:         in.Amount,
		ExpectedProfit: terms.ExpectedProfit(in.Amount),
		DurationDays:   terms.DurationDays,
		Status:         investment.StatusPending,
	}
	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if _, err := r.Users.GetByID(ctx, in.UserID); err != nil {
			return err
		}
		if err := r.Investments.Create(ctx, inv); err != nil {
			return err
		}
		return r.Users.MarkInvestmentHistory(ctx, in.UserID)
	})
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"investment_id": inv.ID, "user_id": inv.UserID, "plan": inv.PlanName}).Info("investment: created")
	dto := toDTO(*inv, time.Time{})
	return &dto, nil
}

// ApproveInvestment moves pending -> approved and freezes the payout terms.
// The principal is locked in investedAmount; the balance is untouched until settlement.
func (u *Usecase) ApproveInvestment(ctx context.Context, investmentID string, now time.Time) (*InvestmentDTO, error) {
	if u.uow == nil {
		return nil, investment.ErrInvalidTransition
	}
	var out investment.Investment

	err := u.uow.WithinInvestmentTx(ctx, investmentID, func(r uow.Repos, inv *investment.Investment) error {
		switch inv.Status {
		case investment.StatusPending:
		case investment.StatusApproved:
			return investment.ErrAlreadyApproved
		default:
			return investment.ErrInvalidTransition
		}

		terms, err := investment.LookupPlan(string(inv.PlanName))
		if err != nil {
			return err
		}
		expected := terms.ExpectedProfit(inv.Amount)
		ok, err := r.Investments.CompareAndSet(ctx, inv.ID,
			[]store.Filter{store.Eq(investment.ColStatus, investment.StatusPending)},
			map[string]any{
				investment.ColStatus:         investment.StatusApproved,
				investment.ColApprovalDate:   now,
				investment.ColExpectedProfit: expected,
				investment.ColDurationDays:   terms.DurationDays,
			})
		if err != nil {
			return err
		}
		if !ok {
			return investment.ErrAlreadyApproved
		}

		if err := r.Users.Apply(ctx, inv.UserID, user.Delta{InvestedAmount: inv.Amount}); err != nil {
			return err
		}
		if err := r.Transactions.Append(ctx, &ledger.Transaction{
			UserID:    inv.UserID,
			Type:      ledger.TypeInvestment,
			Reference: inv.ID,
			Amount:    inv.Amount,
			Status:    ledger.StatusCompleted,
			Notes:     fmt.Sprintf("%s plan", inv.PlanName),
		}); err != nil {
			return err
		}

		inv.Status = investment.StatusApproved
		inv.ApprovalDate = &now
		inv.ExpectedProfit = expected
		inv.DurationDays = terms.DurationDays
		out = *inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"investment_id": out.ID, "user_id": out.UserID, "expected_profit": out.ExpectedProfit}).Info("investment: approved")
	dto := toDTO(out, now)
	return &dto, nil
}

// RejectInvestment moves pending -> rejected. No money moves.
func (u *Usecase) RejectInvestment(ctx context.Context, investmentID string) error {
	inv, err := u.investments.GetByID(ctx, investmentID)
	if err != nil {
		return err
	}
	if inv.Status != investment.StatusPending {
		return investment.ErrInvalidTransition
	}
	ok, err := u.investments.CompareAndSet(ctx, investmentID,
		[]store.Filter{store.Eq(investment.ColStatus, investment.StatusPending)},
		map[string]any{investment.ColStatus: investment.StatusRejected})
	if err != nil {
		return err
	}
	if !ok {
		return investment.ErrInvalidTransition
	}
	return nil
}

// StopInvestment ends an accruing investment without payout and releases the
// locked principal from investedAmount.
func (u *Usecase) StopInvestment(ctx context.Context, investmentID string) error {
	if u.uow == nil {
		return investment.ErrInvalidTransition
	}
	return u.uow.WithinInvestmentTx(ctx, investmentID, func(r uow.Repos, inv *investment.Investment) error {
		if inv.IsComplete {
			return investment.ErrAlreadyComplete
		}
		if !inv.IsOpen() {
			return investment.ErrInvalidTransition
		}
		ok, err := r.Investments.CompareAndSet(ctx, inv.ID, investment.OpenFilters(),
			map[string]any{investment.ColStatus: investment.StatusStopped})
		if err != nil {
			return err
		}
		if !ok {
			// lost to a settlement pass
			return investment.ErrAlreadyComplete
		}
		return r.Users.Apply(ctx, inv.UserID, user.Delta{InvestedAmount: inv.Amount.Neg()})
	})
}

// ListInvestments returns the user's investments, newest first.
func (u *Usecase) ListInvestments(ctx context.Context, userID string, now time.Time) ([]InvestmentDTO, error) {
	list, err := u.investments.Find(ctx, store.Where(
		store.Eq(investment.ColUserID, userID),
	).OrderBy(investment.ColCreatedAt, true))
	if err != nil {
		return nil, err
	}
	out := make([]InvestmentDTO, 0, len(list))
	for _, inv := range list {
		out = append(out, toDTO(inv, now))
	}
	return out, nil
}

// ListTransactions returns the user's ledger, newest first.
func (u *Usecase) ListTransactions(ctx context.Context, userID string, limit int) ([]ledger.Transaction, error) {
	if limit <= 0 {
		limit = DefaultTransactionLimit
	}
	return u.transactions.Find(ctx, store.Where(
		store.Eq(ledger.ColUserID, userID),
	).OrderBy(ledger.ColCreatedAt, true).Take(limit))
}

func (u *Usecase) Stats(ctx context.Context) (*Stats, error) {
	users, err := u.users.Find(ctx, store.Query{})
	if err != nil {
		return nil, err
	}
	invs, err := u.investments.Find(ctx, store.Query{})
	if err != nil {
		return nil, err
	}

	s := &Stats{Users: len(users), Investments: len(invs), InvestedAmount: decimal.Zero, ProfitPaid: decimal.Zero}
	for _, usr := range users {
		if usr.IsActive {
			s.ActiveUsers++
		}
	}
	for _, inv := range invs {
		switch {
		case inv.IsComplete:
			s.Completed++
			s.ProfitPaid = s.ProfitPaid.Add(inv.SettledProfit())
		case inv.IsOpen():
			s.ActiveInvestments++
			s.InvestedAmount = s.InvestedAmount.Add(inv.Amount)
		case inv.Status == investment.StatusPending:
			s.Pending++
		}
	}
	return s, nil
}

func toDTO(inv investment.Investment, now time.Time) InvestmentDTO {
	d := InvestmentDTO{
		ID:             inv.ID,
		PlanName:       inv.PlanName,
		Amount:         inv.Amount,
		ExpectedProfit: inv.ExpectedProfit,
		DurationDays:   inv.DurationDays,
		Status:         inv.Status,
		ApprovalDate:   inv.ApprovalDate,
		IsComplete:     inv.IsComplete,
		CompletedAt:    inv.CompletedAt,
		CurrentProfit:  decimal.Zero,
		ProgressPct:    decimal.Zero,
		CreatedAt:      inv.CreatedAt,
	}
	if inv.IsComplete {
		d.CurrentProfit = inv.SettledProfit()
		d.ProgressPct = decimal.NewFromInt(100)
		return d
	}
	if res, err := accrual.Compute(inv, now); err == nil {
		d.CurrentProfit = res.CurrentProfit
		d.ProgressPct = res.Progress.Mul(decimal.NewFromInt(100)).Round(2)
	}
	return d
}
