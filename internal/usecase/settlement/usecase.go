package settlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cryptoboost/internal/domain/investment"
	"cryptoboost/internal/domain/ledger"
	"cryptoboost/internal/domain/store"
	"cryptoboost/internal/domain/uow"
	"cryptoboost/internal/domain/user"
	"cryptoboost/internal/usecase/accrual"

	log "github.com/sirupsen/logrus"
)

type Usecase struct {
	investments investment.Repository
	uow         uow.UnitOfWork
}

func NewUsecase(investments investment.Repository, tx uow.UnitOfWork) *Usecase {
	return &Usecase{investments: investments, uow: tx}
}

// RunPass settles every open investment whose accrual has completed at now.
//
// Each investment is claimed with a compare-and-set on (status=approved,
// is_complete=false) before anything is credited, so concurrent passes over
// the same state pay out once. The claim, the profit entry and the balance
// credit share one transaction; the recovery sweep that runs first pays any
// complete investment still missing its profit entry.
//
// Only a failure to list candidates is returned; per-investment failures are
// logged and retried on the next pass.
func (u *Usecase) RunPass(ctx context.Context, now time.Time) (Report, error) {
	var rep Report
	if u.uow == nil {
		return rep, investment.ErrInvalidTransition
	}

	_ = u.sweep(ctx, &rep)

	q := store.Where(investment.OpenFilters()...).OrderBy(investment.ColApprovalDate, false)
	open, err := u.investments.Find(ctx, q)
	if err != nil {
		return rep, fmt.Errorf("list open investments: %w", err)
	}

	for _, inv := range open {
		rep.Scanned++
		res, err := accrual.Compute(inv, now)
		if err != nil {
			rep.Skipped++
			continue
		}
		if !res.Completed {
			rep.Accruing++
			continue
		}

		err = u.settle(ctx, inv.ID, now)
		switch {
		case err == nil:
			rep.Settled++
		case errors.Is(err, errSkip), errors.Is(err, investment.ErrNotFound):
			rep.Skipped++
			log.WithField("investment_id", inv.ID).Debug("settlement: already handled elsewhere")
		default:
			rep.Failed++
			log.WithError(err).WithField("investment_id", inv.ID).Warn("settlement: settle failed")
		}
	}

	log.WithFields(log.Fields{
		"scanned":   rep.Scanned,
		"accruing":  rep.Accruing,
		"settled":   rep.Settled,
		"skipped":   rep.Skipped,
		"recovered": rep.Recovered,
		"failed":    rep.Failed,
	}).Info("settlement: pass done")
	return rep, nil
}

// Reconcile runs the recovery sweep alone.
func (u *Usecase) Reconcile(ctx context.Context) (Report, error) {
	var rep Report
	if u.uow == nil {
		return rep, investment.ErrInvalidTransition
	}
	if err := u.sweep(ctx, &rep); err != nil {
		return rep, err
	}
	return rep, nil
}

func (u *Usecase) settle(ctx context.Context, investmentID string, now time.Time) error {
	return u.uow.WithinInvestmentTx(ctx, investmentID, func(r uow.Repos, cur *investment.Investment) error {
		// re-read inside the tx: a concurrent pass may have claimed it
		if !cur.IsOpen() {
			return errSkip
		}
		res, err := accrual.Compute(*cur, now)
		if err != nil || !res.Completed {
			return errSkip
		}

		ok, err := r.Investments.CompareAndSet(ctx, cur.ID, investment.OpenFilters(), map[string]any{
			investment.ColIsComplete:        true,
			investment.ColFinalProfitTarget: cur.ExpectedProfit,
			investment.ColCompletedAt:       now,
		})
		if err != nil {
			return err
		}
		if !ok {
			return errSkip
		}

		cur.IsComplete = true
		cur.FinalProfitTarget.Decimal, cur.FinalProfitTarget.Valid = cur.ExpectedProfit, true
		cur.CompletedAt = &now
		return payout(ctx, r, cur)
	})
}

// sweep pays complete investments that have no profit entry.
func (u *Usecase) sweep(ctx context.Context, rep *Report) error {
	unpaid, err := u.investments.ListUnpaidComplete(ctx)
	if err != nil {
		log.WithError(err).Warn("settlement: list unpaid investments failed")
		return fmt.Errorf("list unpaid investments: %w", err)
	}

	for _, inv := range unpaid {
		err := u.uow.WithinInvestmentTx(ctx, inv.ID, func(r uow.Repos, cur *investment.Investment) error {
			if !cur.IsComplete {
				return errSkip
			}
			_, err := r.Transactions.GetByReference(ctx, ledger.TypeProfit, cur.ID)
			switch {
			case err == nil:
				return errSkip
			case !errors.Is(err, ledger.ErrNotFound):
				return err
			}
			return payout(ctx, r, cur)
		})
		switch {
		case err == nil:
			rep.Recovered++
			log.WithFields(log.Fields{"investment_id": inv.ID, "user_id": inv.UserID}).Warn("settlement: recovered missing payout")
		case errors.Is(err, errSkip), errors.Is(err, investment.ErrNotFound):
		default:
			rep.Failed++
			log.WithError(err).WithField("investment_id", inv.ID).Warn("settlement: recovery failed")
		}
	}
	return nil
}

// payout writes the profit entry and credits the owner. The profit entry is
// keyed by the investment id, so a second payout fails on the unique index
// before any balance moves.
func payout(ctx context.Context, r uow.Repos, inv *investment.Investment) error {
	profit := inv.SettledProfit()
	entry := &ledger.Transaction{
		UserID:    inv.UserID,
		Type:      ledger.TypeProfit,
		Reference: inv.ID,
		Amount:    profit,
		Status:    ledger.StatusCompleted,
		Notes:     fmt.Sprintf("%s plan profit", inv.PlanName),
	}
	if err := r.Transactions.Append(ctx, entry); err != nil {
		if errors.Is(err, ledger.ErrDuplicate) {
			return errSkip
		}
		return fmt.Errorf("append profit entry: %w", err)
	}

	d := user.Delta{
		Balance:        profit.Add(inv.Amount),
		InvestedAmount: inv.Amount.Neg(),
		TotalProfit:    profit,
	}
	if err := r.Users.Apply(ctx, inv.UserID, d); err != nil {
		return fmt.Errorf("credit user %s: %w", inv.UserID, err)
	}
	return nil
}
