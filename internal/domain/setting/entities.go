package setting

import (
	"time"

	"github.com/shopspring/decimal"
)

// SingletonID keys the only settings row.
const SingletonID = "default"

// Settings holds platform-wide payment configuration.
type Settings struct {
	ID                   string          `gorm:"primaryKey;size:36" json:"id"`
	BTCAddress           string          `gorm:"column:btc_address;size:128" json:"btc_address"`
	ETHAddress           string          `gorm:"column:eth_address;size:128" json:"eth_address"`
	SOLAddress           string          `gorm:"column:sol_address;size:128" json:"sol_address"`
	USDTAddress          string          `gorm:"column:usdt_address;size:128" json:"usdt_address"`
	FeeWalletAddress     string          `gorm:"size:128" json:"fee_wallet_address"`
	WithdrawalFeePercent decimal.Decimal `gorm:"type:decimal(6,3);not null" json:"withdrawal_fee_percent"`
	CreatedAt            time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Settings) TableName() string { return "settings" }

// Defaults is what a fresh deployment starts with.
func Defaults() Settings {
	return Settings{
		ID:                   SingletonID,
		BTCAddress:           "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa",
		ETHAddress:           "0x0000000000000000000000000000000000000000",
		SOLAddress:           "So11111111111111111111111111111111111111112",
		USDTAddress:          "0x0000000000000000000000000000000000000000",
		FeeWalletAddress:     "1BvBMSEYstWetqTFn5Au4m4GFg7xJaNVN2",
		WithdrawalFeePercent: decimal.NewFromInt(3),
	}
}

// DepositAddress returns the platform address for a crypto ticker.
func (s Settings) DepositAddress(crypto string) (string, bool) {
	var a string
	switch crypto {
	case "BTC":
		a = s.BTCAddress
	case "ETH":
		a = s.ETHAddress
	case "SOL":
		a = s.SOLAddress
	case "USDT":
		a = s.USDTAddress
	}
	return a, a != ""
}

// WithdrawalFeeRate is WithdrawalFeePercent as a fraction (3 -> 0.03).
func (s Settings) WithdrawalFeeRate() decimal.Decimal {
	return s.WithdrawalFeePercent.Div(decimal.NewFromInt(100))
}
