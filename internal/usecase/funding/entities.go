package funding

import (
	"cryptoboost/internal/domain/funding"

	"github.com/shopspring/decimal"
)

type DepositInput struct {
	UserID     string
	Amount     string
	CryptoType string
}

// DepositReceipt tells the user where to send the funds.
type DepositReceipt struct {
	Deposit funding.Deposit `json:"deposit"`
	Address string          `json:"address"`
}

// WithdrawalInput leaves Amount empty to withdraw the whole balance.
type WithdrawalInput struct {
	UserID     string
	Address    string
	CryptoType string
	Amount     string
}

// WithdrawalQuote is what a withdrawal of Amount would cost right now.
type WithdrawalQuote struct {
	Amount  decimal.Decimal `json:"amount"`
	Tax     decimal.Decimal `json:"tax"`
	TaxRate decimal.Decimal `json:"tax_rate"`
	Total   decimal.Decimal `json:"total"`
}
