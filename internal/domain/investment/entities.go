package investment

import (
	"errors"
	"fmt"
	"time"

	"cryptoboost/internal/domain/store"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrNotFound          = fmt.Errorf("investment: %w", store.ErrNotFound)
	ErrInvalidTransition = errors.New("investment: invalid state transition")
	ErrAlreadyApproved   = errors.New("investment: already approved")
	ErrAlreadyComplete   = errors.New("investment: already complete")
	ErrInvalidAmount     = errors.New("investment: amount must be positive")
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusStopped  Status = "stopped"
)

// Column names used in queries and guarded updates.
const (
	ColID                = "id"
	ColUserID            = "user_id"
	ColStatus            = "status"
	ColIsComplete        = "is_complete"
	ColApprovalDate      = "approval_date"
	ColExpectedProfit    = "expected_profit"
	ColDurationDays      = "duration_days"
	ColFinalProfitTarget = "final_profit_target"
	ColCompletedAt       = "completed_at"
	ColCreatedAt         = "created_at"
)

// Investment is immutable once IsComplete is set.
// ExpectedProfit and DurationDays are frozen at approval; FinalProfitTarget is
// the snapshot of ExpectedProfit taken when the settlement claims the record.
type Investment struct {
	ID                string              `gorm:"primaryKey;size:36" json:"id"`
	UserID            string              `gorm:"size:36;not null;index:idx_investments_user" json:"user_id"`
	PlanName          Plan                `gorm:"size:16;not null" json:"plan_name"`
	Amount            decimal.Decimal     `gorm:"type:decimal(20,8);not null" json:"amount"`
	ExpectedProfit    decimal.Decimal     `gorm:"type:decimal(20,8);not null" json:"expected_profit"`
	DurationDays      int                 `gorm:"not null" json:"duration_days"`
	Status            Status              `gorm:"size:16;not null;index:idx_investments_open" json:"status"`
	ApprovalDate      *time.Time          `json:"approval_date,omitempty"`
	IsComplete        bool                `gorm:"not null;index:idx_investments_open" json:"is_complete"`
	FinalProfitTarget decimal.NullDecimal `gorm:"type:decimal(20,8)" json:"final_profit_target"`
	CompletedAt       *time.Time          `json:"completed_at,omitempty"`
	CreatedAt         time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt         gorm.DeletedAt      `gorm:"index" json:"-"`
}

func (Investment) TableName() string { return "investments" }

// IsOpen reports whether the investment is accruing: approved and not yet settled.
func (i Investment) IsOpen() bool {
	return i.Status == StatusApproved && !i.IsComplete
}

// SettledProfit is the profit realised by the settlement, zero while open.
func (i Investment) SettledProfit() decimal.Decimal {
	if !i.IsComplete {
		return decimal.Zero
	}
	if i.FinalProfitTarget.Valid {
		return i.FinalProfitTarget.Decimal
	}
	return i.ExpectedProfit
}

// OpenFilters selects investments the settlement job has to look at.
func OpenFilters() []store.Filter {
	return []store.Filter{
		store.Eq(ColStatus, StatusApproved),
		store.Eq(ColIsComplete, false),
	}
}
