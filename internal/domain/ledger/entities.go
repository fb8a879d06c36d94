package ledger

import (
	"errors"
	"fmt"
	"time"

	"cryptoboost/internal/domain/store"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound  = fmt.Errorf("transaction: %w", store.ErrNotFound)
	ErrDuplicate = fmt.Errorf("transaction: %w", store.ErrDuplicate)
	ErrImmutable = errors.New("transaction: only pending entries can change status")
)

// Type is the explicit discriminant of a ledger entry, fixed at creation.
type Type string

const (
	TypeDeposit    Type = "deposit"
	TypeWithdrawal Type = "withdrawal"
	TypeProfit     Type = "profit"
	TypeInvestment Type = "investment"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCompleted Status = "completed"
)

const (
	ColUserID    = "user_id"
	ColType      = "type"
	ColReference = "reference"
	ColStatus    = "status"
	ColCreatedAt = "created_at"
)

// Transaction is an append-only ledger entry. Amount is signed: withdrawals are negative.
// Reference points at the record that produced the entry (deposit, withdrawal
// or investment id); (Type, Reference) is unique, so a settled investment can
// own at most one profit entry.
type Transaction struct {
	ID         string          `gorm:"primaryKey;size:36" json:"id"`
	UserID     string          `gorm:"size:36;not null;index:idx_transactions_user" json:"user_id"`
	Type       Type            `gorm:"size:16;not null;uniqueIndex:ux_transactions_type_reference" json:"type"`
	Reference  string          `gorm:"size:36;not null;uniqueIndex:ux_transactions_type_reference" json:"reference"`
	Amount     decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"amount"`
	Status     Status          `gorm:"size:16;not null" json:"status"`
	CryptoType string          `gorm:"size:8" json:"crypto_type,omitempty"`
	Notes      string          `gorm:"size:255" json:"notes,omitempty"`
	CreatedAt  time.Time       `gorm:"autoCreateTime;index:idx_transactions_user" json:"created_at"`
	UpdatedAt  time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Transaction) TableName() string { return "transactions" }
