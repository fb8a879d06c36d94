package accrual

import (
	"errors"
	"time"

	"cryptoboost/internal/domain/investment"

	"github.com/shopspring/decimal"
)

// ErrNotAccruing is returned for investments that are not approved, have no
// approval date, or are already settled.
var ErrNotAccruing = errors.New("accrual: investment is not accruing")

const day = 24 * time.Hour

// Result is the deterministic accrual of one investment at a point in time.
type Result struct {
	CurrentProfit decimal.Decimal `json:"current_profit"`
	Completed     bool            `json:"completed"`
	// Progress is the clamped elapsed/target ratio in [0, 1].
	Progress  decimal.Decimal `json:"progress"`
	Remaining time.Duration   `json:"remaining"`
}

// Compute maps (investment, now) to the profit accrued so far.
// Profit grows linearly from zero at the approval date to ExpectedProfit after
// DurationDays, and is clamped to that range on both ends.
func Compute(inv investment.Investment, now time.Time) (Result, error) {
	if !inv.IsOpen() || inv.ApprovalDate == nil {
		return Result{}, ErrNotAccruing
	}

	target := time.Duration(inv.DurationDays) * day
	elapsed := now.Sub(*inv.ApprovalDate)

	if target <= 0 {
		return Result{CurrentProfit: inv.ExpectedProfit, Completed: true, Progress: decimal.NewFromInt(1)}, nil
	}

	ratio := clamp01(decimal.NewFromInt(int64(elapsed)).Div(decimal.NewFromInt(int64(target))))
	profit := inv.ExpectedProfit.Mul(ratio).Round(8)
	if profit.GreaterThan(inv.ExpectedProfit) {
		profit = inv.ExpectedProfit
	}

	res := Result{
		CurrentProfit: profit,
		Completed:     elapsed >= target || profit.GreaterThanOrEqual(inv.ExpectedProfit),
		Progress:      ratio,
	}
	if res.Completed {
		res.CurrentProfit = inv.ExpectedProfit
		return res, nil
	}
	res.Remaining = target - max(elapsed, 0)
	return res, nil
}

func clamp01(d decimal.Decimal) decimal.Decimal {
	one := decimal.NewFromInt(1)
	switch {
	case d.IsNegative():
		return decimal.Zero
	case d.GreaterThan(one):
		return one
	}
	return d
}
