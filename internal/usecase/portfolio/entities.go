package portfolio

import (
	"time"

	"cryptoboost/internal/domain/investment"

	"github.com/shopspring/decimal"
)

type CreateInvestmentInput struct {
	UserID string
	Plan   string
	Amount decimal.Decimal
}

// InvestmentDTO is an investment with its unjittered accrual at read time.
type InvestmentDTO struct {
	ID             string            `json:"id"`
	PlanName       investment.Plan   `json:"plan_name"`
	Amount         decimal.Decimal   `json:"amount"`
	ExpectedProfit decimal.Decimal   `json:"expected_profit"`
	DurationDays   int               `json:"duration_days"`
	Status         investment.Status `json:"status"`
	ApprovalDate   *time.Time        `json:"approval_date,omitempty"`
	IsComplete     bool              `json:"is_complete"`
	CompletedAt    *time.Time        `json:"completed_at,omitempty"`
	CurrentProfit  decimal.Decimal   `json:"current_profit"`
	ProgressPct    decimal.Decimal   `json:"progress_pct"`
	CreatedAt      time.Time         `json:"created_at"`
}

// Stats is the admin overview.
type Stats struct {
	Users             int             `json:"users"`
	ActiveUsers       int             `json:"active_users"`
	Investments       int             `json:"investments"`
	ActiveInvestments int             `json:"active_investments"`
	Completed         int             `json:"completed_investments"`
	Pending           int             `json:"pending_investments"`
	InvestedAmount    decimal.Decimal `json:"invested_amount"`
	ProfitPaid        decimal.Decimal `json:"profit_paid"`
}
