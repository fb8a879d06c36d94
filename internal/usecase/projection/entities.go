package projection

import (
	"time"

	"cryptoboost/internal/domain/investment"

	"github.com/shopspring/decimal"
)

// Projection is the live, display-only view of a user's money.
// It is recomputed on every read and never persisted.
type Projection struct {
	UserID          string          `json:"user_id"`
	InvestedCapital decimal.Decimal `json:"invested_capital"`
	AIProfit        decimal.Decimal `json:"ai_profit"`
	TotalCapital    decimal.Decimal `json:"total_capital"`
	TotalProfit     decimal.Decimal `json:"total_profit"`
	Positions       []Position      `json:"positions"`
	At              time.Time       `json:"at"`
}

// Position is one investment as rendered on the dashboard.
type Position struct {
	InvestmentID   string            `json:"investment_id"`
	PlanName       investment.Plan   `json:"plan_name"`
	Status         investment.Status `json:"status"`
	Amount         decimal.Decimal   `json:"amount"`
	ExpectedProfit decimal.Decimal   `json:"expected_profit"`
	LiveProfit     decimal.Decimal   `json:"live_profit"`
	ProgressPct    decimal.Decimal   `json:"progress_pct"`
	IsComplete     bool              `json:"is_complete"`
	// DueForSettlement is set when accrual is done but no pass has run yet.
	DueForSettlement bool          `json:"due_for_settlement"`
	Remaining        time.Duration `json:"remaining_ns"`
}
