package funding

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"cryptoboost/internal/domain/store"

	"github.com/shopspring/decimal"
)

var (
	ErrDepositNotFound    = fmt.Errorf("deposit: %w", store.ErrNotFound)
	ErrWithdrawalNotFound = fmt.Errorf("withdrawal: %w", store.ErrNotFound)
	ErrAlreadyProcessed   = errors.New("request already processed")
	ErrUnsupportedCrypto  = errors.New("unsupported crypto type")
	ErrInvalidAmount      = errors.New("amount must be a positive number")
	ErrAddressRequired    = errors.New("withdrawal address is required")
	ErrInsufficientFunds  = errors.New("insufficient balance")
)

// Status of a deposit or withdrawal request; approved and rejected are terminal.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

type Crypto string

const (
	CryptoBTC  Crypto = "BTC"
	CryptoETH  Crypto = "ETH"
	CryptoSOL  Crypto = "SOL"
	CryptoUSDT Crypto = "USDT"
)

// ParseCrypto normalises a crypto ticker.
func ParseCrypto(s string) (Crypto, error) {
	switch c := Crypto(strings.ToUpper(strings.TrimSpace(s))); c {
	case CryptoBTC, CryptoETH, CryptoSOL, CryptoUSDT:
		return c, nil
	}
	return "", ErrUnsupportedCrypto
}

const (
	ColID     = "id"
	ColUserID = "user_id"
	ColStatus = "status"
)

type Deposit struct {
	ID          string          `gorm:"primaryKey;size:36" json:"id"`
	UserID      string          `gorm:"size:36;not null;index" json:"user_id"`
	Amount      decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"amount"`
	CryptoType  Crypto          `gorm:"size:8;not null" json:"crypto_type"`
	Status      Status          `gorm:"size:16;not null;index" json:"status"`
	AdminNote   string          `gorm:"size:255" json:"admin_note,omitempty"`
	ProcessedAt *time.Time      `json:"processed_at,omitempty"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Deposit) TableName() string { return "deposits" }

type Withdrawal struct {
	ID          string          `gorm:"primaryKey;size:36" json:"id"`
	UserID      string          `gorm:"size:36;not null;index" json:"user_id"`
	Amount      decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"amount"`
	Tax         decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"tax"`
	CryptoType  Crypto          `gorm:"size:8;not null" json:"crypto_type"`
	Address     string          `gorm:"size:128;not null" json:"address"`
	Status      Status          `gorm:"size:16;not null;index" json:"status"`
	AdminNote   string          `gorm:"size:255" json:"admin_note,omitempty"`
	ProcessedAt *time.Time      `json:"processed_at,omitempty"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Withdrawal) TableName() string { return "withdrawals" }

// Total is what leaves the balance on approval.
func (w Withdrawal) Total() decimal.Decimal { return w.Amount.Add(w.Tax) }
