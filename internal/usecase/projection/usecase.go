package projection

import (
	"context"
	"time"

	"cryptoboost/internal/domain/investment"
	"cryptoboost/internal/domain/store"
	"cryptoboost/internal/domain/user"
	"cryptoboost/internal/usecase/accrual"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

type Usecase struct {
	users       user.Repository
	investments investment.Repository
	jitter      accrual.Jitter
}

// NewUsecase wires the projector; a nil jitter means no jitter.
func NewUsecase(users user.Repository, investments investment.Repository, jitter accrual.Jitter) *Usecase {
	if jitter == nil {
		jitter = accrual.NoJitter{}
	}
	return &Usecase{users: users, investments: investments, jitter: jitter}
}

// ProjectForUser loads the user and their investments and projects them at now.
func (u *Usecase) ProjectForUser(ctx context.Context, userID string, now time.Time) (*Projection, error) {
	usr, err := u.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	invs, err := u.investments.Find(ctx, store.Where(
		store.Eq(investment.ColUserID, userID),
	).OrderBy(investment.ColCreatedAt, true))
	if err != nil {
		return nil, err
	}
	p := Project(*usr, invs, now, u.jitter)
	return &p, nil
}

// Project derives the dashboard numbers.
//
// InvestedCapital sums principal of open investments. AIProfit adds the
// settled profit of completed investments to the jittered live accrual of
// open ones. TotalCapital is the stored balance, which already includes
// settled profit, so it is shown next to AIProfit and never summed with it.
func Project(u user.User, invs []investment.Investment, now time.Time, j accrual.Jitter) Projection {
	p := Projection{
		UserID:          u.ID,
		InvestedCapital: decimal.Zero,
		AIProfit:        decimal.Zero,
		TotalCapital:    u.Balance,
		TotalProfit:     u.TotalProfit,
		Positions:       make([]Position, 0, len(invs)),
		At:              now,
	}

	for _, inv := range invs {
		pos := Position{
			InvestmentID:   inv.ID,
			PlanName:       inv.PlanName,
			Status:         inv.Status,
			Amount:         inv.Amount,
			ExpectedProfit: inv.ExpectedProfit,
			LiveProfit:     decimal.Zero,
			ProgressPct:    decimal.Zero,
			IsComplete:     inv.IsComplete,
		}

		switch {
		case inv.IsComplete:
			pos.LiveProfit = inv.SettledProfit()
			pos.ProgressPct = hundred
			p.AIProfit = p.AIProfit.Add(pos.LiveProfit)

		case inv.IsOpen():
			p.InvestedCapital = p.InvestedCapital.Add(inv.Amount)
			res, err := accrual.Compute(inv, now)
			if err != nil {
				break
			}
			pos.LiveProfit = accrual.Live(res, j)
			pos.ProgressPct = res.Progress.Mul(hundred).Round(2)
			pos.DueForSettlement = res.Completed
			pos.Remaining = res.Remaining
			p.AIProfit = p.AIProfit.Add(pos.LiveProfit)
		}
		p.Positions = append(p.Positions, pos)
	}
	return p
}
