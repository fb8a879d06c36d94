package user

import (
	"fmt"
	"time"

	"cryptoboost/internal/domain/store"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound = fmt.Errorf("user: %w", store.ErrNotFound)
	ErrExists   = fmt.Errorf("user: %w", store.ErrDuplicate)
)

type Role string

const (
	RoleClient Role = "client"
	RoleAdmin  Role = "admin"
)

// Column names used in queries and partial updates.
const (
	ColEmail    = "email"
	ColIsActive = "is_active"
)

// User is the root aggregate for balance arithmetic.
// Balance only grows through approved deposits and settlements, and only
// shrinks through approved withdrawals. TotalProfit never decreases.
type User struct {
	ID                   string          `gorm:"primaryKey;size:36" json:"id"`
	Email                string          `gorm:"size:255;not null;uniqueIndex:ux_users_email" json:"email"`
	PasswordHash         []byte          `gorm:"column:password_hash" json:"-"`
	Role                 Role            `gorm:"size:16;not null" json:"role"`
	Balance              decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"balance"`
	InvestedAmount       decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"invested_amount"`
	TotalProfit          decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"total_profit"`
	HasInvestmentHistory bool            `gorm:"not null" json:"has_investment_history"`
	IsActive             bool            `gorm:"not null" json:"is_active"`
	CreatedAt            time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string { return "users" }

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// Delta is a set of signed increments applied atomically to a user row.
type Delta struct {
	Balance        decimal.Decimal
	InvestedAmount decimal.Decimal
	TotalProfit    decimal.Decimal
}

func (d Delta) IsZero() bool {
	return d.Balance.IsZero() && d.InvestedAmount.IsZero() && d.TotalProfit.IsZero()
}
