package investment

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrUnknownPlan = errors.New("investment: unknown plan")

type Plan string

const (
	PlanStarter Plan = "starter"
	PlanPro     Plan = "pro"
	PlanExpert  Plan = "expert"
)

// daysPerMonth converts monthly rates into per-day accrual.
const daysPerMonth = 30

// Terms fixes the monthly rate and duration of a plan.
type Terms struct {
	Plan         Plan            `json:"plan"`
	MonthlyRate  decimal.Decimal `json:"monthly_rate"`
	DurationDays int             `json:"duration_days"`
}

var catalogue = map[Plan]Terms{
	PlanStarter: {Plan: PlanStarter, MonthlyRate: decimal.RequireFromString("0.15"), DurationDays: 30},
	PlanPro:     {Plan: PlanPro, MonthlyRate: decimal.RequireFromString("0.25"), DurationDays: 30},
	PlanExpert:  {Plan: PlanExpert, MonthlyRate: decimal.RequireFromString("0.40"), DurationDays: 30},
}

// LookupPlan resolves a plan name case-insensitively.
func LookupPlan(name string) (Terms, error) {
	t, ok := catalogue[Plan(strings.ToLower(strings.TrimSpace(name)))]
	if !ok {
		return Terms{}, ErrUnknownPlan
	}
	return t, nil
}

// Plans lists the catalogue in a stable order.
func Plans() []Terms {
	return []Terms{catalogue[PlanStarter], catalogue[PlanPro], catalogue[PlanExpert]}
}

// ExpectedProfit is the payout target for amount over the whole plan duration.
func (t Terms) ExpectedProfit(amount decimal.Decimal) decimal.Decimal {
	return amount.
		Mul(t.MonthlyRate).
		Mul(decimal.NewFromInt(int64(t.DurationDays))).
		Div(decimal.NewFromInt(daysPerMonth)).
		Round(8)
}
