package funding

import (
	"context"
	"errors"
	"testing"
	"time"

	"cryptoboost/internal/adapter/repository/mysql"
	"cryptoboost/internal/domain/funding"
	"cryptoboost/internal/domain/investment"
	"cryptoboost/internal/domain/ledger"
	"cryptoboost/internal/domain/setting"
	"cryptoboost/internal/domain/uow"
	"cryptoboost/internal/domain/user"
	"cryptoboost/internal/testutil/sqlitedb"
	"cryptoboost/internal/usecase/settlement"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var now = time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	db    *gorm.DB
	repos uow.Repos
	uc    *Usecase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := sqlitedb.Open(t)
	repos := mysql.NewRepos(db)
	return &fixture{db: db, repos: repos, uc: NewUsecase(repos, mysql.NewGormUoW(db))}
}

func (f *fixture) user(t *testing.T, email string, balance string) *user.User {
	t.Helper()
	u := &user.User{Email: email, Role: user.RoleClient, Balance: decimal.RequireFromString(balance), IsActive: true}
	if err := f.repos.Users.Create(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func (f *fixture) balance(t *testing.T, userID string) decimal.Decimal {
	t.Helper()
	u, err := f.repos.Users.GetByID(context.Background(), userID)
	if err != nil {
		t.Fatalf("reload user: %v", err)
	}
	return u.Balance
}

func (f *fixture) entry(t *testing.T, typ ledger.Type, ref string) *ledger.Transaction {
	t.Helper()
	e, err := f.repos.Transactions.GetByReference(context.Background(), typ, ref)
	if err != nil {
		t.Fatalf("ledger entry %s/%s: %v", typ, ref, err)
	}
	return e
}

func TestRequestDeposit_Validation(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "v@example.com", "0")
	ctx := context.Background()

	tests := []struct {
		name   string
		amount string
		crypto string
		want   error
	}{
		{"non numeric amount", "abc", "BTC", funding.ErrInvalidAmount},
		{"negative amount", "-5", "BTC", funding.ErrInvalidAmount},
		{"zero amount", "0", "BTC", funding.ErrInvalidAmount},
		{"unknown crypto", "10", "DOGE", funding.ErrUnsupportedCrypto},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.uc.RequestDeposit(ctx, DepositInput{UserID: u.ID, Amount: tt.amount, CryptoType: tt.crypto})
			if !errors.Is(err, tt.want) {
				t.Fatalf("want %v, got %v", tt.want, err)
			}
		})
	}

	list, _ := f.uc.ListDeposits(ctx, u.ID, "")
	if len(list) != 0 {
		t.Fatalf("invalid requests must not persist anything, got %d deposits", len(list))
	}
}

func TestDeposit_ApproveCreditsOnce(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "d@example.com", "10")
	ctx := context.Background()

	rcpt, err := f.uc.RequestDeposit(ctx, DepositInput{UserID: u.ID, Amount: " 250.5 ", CryptoType: "btc"})
	if err != nil {
		t.Fatalf("RequestDeposit: %v", err)
	}
	if rcpt.Address != setting.Defaults().BTCAddress || rcpt.Deposit.CryptoType != funding.CryptoBTC {
		t.Fatalf("unexpected receipt: %+v", rcpt)
	}
	if e := f.entry(t, ledger.TypeDeposit, rcpt.Deposit.ID); e.Status != ledger.StatusPending {
		t.Fatalf("ledger entry status = %s", e.Status)
	}
	if !f.balance(t, u.ID).Equal(decimal.NewFromInt(10)) {
		t.Fatal("pending deposit must not credit")
	}

	if err := f.uc.ApproveDeposit(ctx, rcpt.Deposit.ID, now); err != nil {
		t.Fatalf("ApproveDeposit: %v", err)
	}
	if err := f.uc.ApproveDeposit(ctx, rcpt.Deposit.ID, now); !errors.Is(err, funding.ErrAlreadyProcessed) {
		t.Fatalf("second approve: want ErrAlreadyProcessed, got %v", err)
	}
	if err := f.uc.RejectDeposit(ctx, rcpt.Deposit.ID, now); !errors.Is(err, funding.ErrAlreadyProcessed) {
		t.Fatalf("reject after approve: want ErrAlreadyProcessed, got %v", err)
	}

	if got := f.balance(t, u.ID); !got.Equal(decimal.RequireFromString("260.5")) {
		t.Fatalf("balance = %s, want 260.5", got)
	}
	if e := f.entry(t, ledger.TypeDeposit, rcpt.Deposit.ID); e.Status != ledger.StatusApproved {
		t.Fatalf("ledger entry status = %s", e.Status)
	}
}

func TestDeposit_RejectHasNoBalanceEffect(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "r@example.com", "0")
	ctx := context.Background()

	rcpt, err := f.uc.RequestDeposit(ctx, DepositInput{UserID: u.ID, Amount: "99", CryptoType: "USDT"})
	if err != nil {
		t.Fatalf("RequestDeposit: %v", err)
	}
	if err := f.uc.RejectDeposit(ctx, rcpt.Deposit.ID, now); err != nil {
		t.Fatalf("RejectDeposit: %v", err)
	}
	if !f.balance(t, u.ID).IsZero() {
		t.Fatal("rejected deposit credited the balance")
	}
	if e := f.entry(t, ledger.TypeDeposit, rcpt.Deposit.ID); e.Status != ledger.StatusRejected {
		t.Fatalf("ledger entry status = %s", e.Status)
	}
	if err := f.uc.ApproveDeposit(ctx, "missing", now); !errors.Is(err, funding.ErrDepositNotFound) {
		t.Fatalf("want ErrDepositNotFound, got %v", err)
	}
}

func TestWithdrawal_NoInvestmentHistoryPaysNoTax(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "w0@example.com", "100")
	ctx := context.Background()

	w, err := f.uc.RequestWithdrawal(ctx, WithdrawalInput{UserID: u.ID, Address: "bc1qxyz", CryptoType: "BTC"})
	if err != nil {
		t.Fatalf("RequestWithdrawal: %v", err)
	}
	if !w.Amount.Equal(decimal.NewFromInt(100)) || !w.Tax.IsZero() {
		t.Fatalf("amount=%s tax=%s, want 100 / 0", w.Amount, w.Tax)
	}
	if err := f.uc.ApproveWithdrawal(ctx, w.ID, now); err != nil {
		t.Fatalf("ApproveWithdrawal: %v", err)
	}
	if !f.balance(t, u.ID).IsZero() {
		t.Fatalf("balance = %s, want 0", f.balance(t, u.ID))
	}
	e := f.entry(t, ledger.TypeWithdrawal, w.ID)
	if e.Status != ledger.StatusApproved || !e.Amount.Equal(decimal.NewFromInt(-100)) {
		t.Fatalf("ledger entry = %+v", e)
	}
}

func TestWithdrawal_InvestmentHistoryPaysThreePercent(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "w3@example.com", "100")
	ctx := context.Background()

	// a rejected investment still counts as history
	if err := f.repos.Investments.Create(ctx, &investment.Investment{
		UserID: u.ID, PlanName: investment.PlanStarter, Amount: decimal.NewFromInt(50), Status: investment.StatusRejected,
	}); err != nil {
		t.Fatalf("create investment: %v", err)
	}

	q, err := f.uc.QuoteWithdrawal(ctx, u.ID, "")
	if err != nil {
		t.Fatalf("QuoteWithdrawal: %v", err)
	}
	if !q.Tax.Equal(decimal.NewFromInt(3)) || !q.TaxRate.Equal(decimal.RequireFromString("0.03")) {
		t.Fatalf("quote = %+v, want tax 3 at 0.03", q)
	}

	w, err := f.uc.RequestWithdrawal(ctx, WithdrawalInput{UserID: u.ID, Address: "0xabc", CryptoType: "ETH"})
	if err != nil {
		t.Fatalf("RequestWithdrawal: %v", err)
	}
	if !w.Total().Equal(decimal.NewFromInt(103)) {
		t.Fatalf("total = %s, want 103", w.Total())
	}
	if err := f.uc.ApproveWithdrawal(ctx, w.ID, now); err != nil {
		t.Fatalf("ApproveWithdrawal: %v", err)
	}
	if got := f.balance(t, u.ID); !got.IsZero() {
		t.Fatalf("balance = %s, want floored at 0", got)
	}
	if err := f.uc.ApproveWithdrawal(ctx, w.ID, now); !errors.Is(err, funding.ErrAlreadyProcessed) {
		t.Fatalf("second approve: want ErrAlreadyProcessed, got %v", err)
	}
}

func TestWithdrawal_RequestValidation(t *testing.T) {
	f := newFixture(t)
	rich := f.user(t, "rich@example.com", "50")
	broke := f.user(t, "broke@example.com", "0")
	ctx := context.Background()

	tests := []struct {
		name string
		in   WithdrawalInput
		want error
	}{
		{"empty address", WithdrawalInput{UserID: rich.ID, Address: "  ", CryptoType: "BTC"}, funding.ErrAddressRequired},
		{"bad crypto", WithdrawalInput{UserID: rich.ID, Address: "x", CryptoType: "XRP"}, funding.ErrUnsupportedCrypto},
		{"more than balance", WithdrawalInput{UserID: rich.ID, Address: "x", CryptoType: "BTC", Amount: "50.01"}, funding.ErrInsufficientFunds},
		{"bad amount", WithdrawalInput{UserID: rich.ID, Address: "x", CryptoType: "BTC", Amount: "ten"}, funding.ErrInvalidAmount},
		{"empty balance", WithdrawalInput{UserID: broke.ID, Address: "x", CryptoType: "BTC"}, funding.ErrInsufficientFunds},
		{"unknown user", WithdrawalInput{UserID: "ghost", Address: "x", CryptoType: "BTC"}, user.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.uc.RequestWithdrawal(ctx, tt.in); !errors.Is(err, tt.want) {
				t.Fatalf("want %v, got %v", tt.want, err)
			}
		})
	}
}

func TestWithdrawal_RejectKeepsBalance(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "keep@example.com", "80")
	ctx := context.Background()

	w, err := f.uc.RequestWithdrawal(ctx, WithdrawalInput{UserID: u.ID, Address: "addr", CryptoType: "SOL", Amount: "30"})
	if err != nil {
		t.Fatalf("RequestWithdrawal: %v", err)
	}
	if err := f.uc.RejectWithdrawal(ctx, w.ID, now); err != nil {
		t.Fatalf("RejectWithdrawal: %v", err)
	}
	if !f.balance(t, u.ID).Equal(decimal.NewFromInt(80)) {
		t.Fatalf("balance changed on reject: %s", f.balance(t, u.ID))
	}
	pending, _ := f.uc.ListWithdrawals(ctx, "", funding.StatusPending)
	if len(pending) != 0 {
		t.Fatalf("pending withdrawals = %d", len(pending))
	}
}

// Balance after settling equals initial + principal + profit, minus approved
// withdrawals (amount + tax).
func TestBalanceConservation_SettleThenWithdraw(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "c@example.com", "0")
	ctx := context.Background()

	rcpt, err := f.uc.RequestDeposit(ctx, DepositInput{UserID: u.ID, Amount: "1000", CryptoType: "USDT"})
	if err != nil {
		t.Fatalf("RequestDeposit: %v", err)
	}
	if err := f.uc.ApproveDeposit(ctx, rcpt.Deposit.ID, now); err != nil {
		t.Fatalf("ApproveDeposit: %v", err)
	}

	approved := now.Add(-31 * 24 * time.Hour)
	inv := &investment.Investment{
		UserID: u.ID, PlanName: investment.PlanStarter, Amount: decimal.NewFromInt(500), ExpectedProfit: decimal.NewFromInt(75),
		DurationDays: 30, Status: investment.StatusApproved, ApprovalDate: &approved,
	}
	if err := f.repos.Investments.Create(ctx, inv); err != nil {
		t.Fatalf("create investment: %v", err)
	}
	if err := f.repos.Users.MarkInvestmentHistory(ctx, u.ID); err != nil {
		t.Fatalf("mark history: %v", err)
	}

	if _, err := settlement.NewUsecase(f.repos.Investments, mysql.NewGormUoW(f.db)).RunPass(ctx, now); err != nil {
		t.Fatalf("RunPass: %v", err)
	}
	if got := f.balance(t, u.ID); !got.Equal(decimal.NewFromInt(1575)) {
		t.Fatalf("balance after settlement = %s, want 1575", got)
	}

	w, err := f.uc.RequestWithdrawal(ctx, WithdrawalInput{UserID: u.ID, Address: "a", CryptoType: "USDT", Amount: "1000"})
	if err != nil {
		t.Fatalf("RequestWithdrawal: %v", err)
	}
	if err := f.uc.ApproveWithdrawal(ctx, w.ID, now); err != nil {
		t.Fatalf("ApproveWithdrawal: %v", err)
	}
	// 1000 + 500 + 75 - (1000 + 30)
	if got := f.balance(t, u.ID); !got.Equal(decimal.NewFromInt(545)) {
		t.Fatalf("final balance = %s, want 545", got)
	}
}
