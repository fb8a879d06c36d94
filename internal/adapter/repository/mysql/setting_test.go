package mysql

import (
	"context"
	"testing"

	settingDomain "cryptoboost/internal/domain/setting"
	"cryptoboost/internal/testutil/sqlitedb"

	"github.com/shopspring/decimal"
)

func TestSetting_GetSeedsDefaults(t *testing.T) {
	repo := NewSettingRepository(sqlitedb.Open(t))
	ctx := context.Background()

	s, err := repo.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	def := settingDomain.Defaults()
	if s.BTCAddress != def.BTCAddress || !s.WithdrawalFeePercent.Equal(decimal.NewFromInt(3)) {
		t.Fatalf("defaults not seeded: %+v", s)
	}

	s.WithdrawalFeePercent = decimal.RequireFromString("2.5")
	s.SOLAddress = "sol-wallet"
	if err := repo.Save(ctx, s); err != nil {
		t.Fatalf("Save: %v", err)
	}
	again, err := repo.Get(ctx)
	if err != nil {
		t.Fatalf("Get after Save: %v", err)
	}
	if !again.WithdrawalFeeRate().Equal(decimal.RequireFromString("0.025")) {
		t.Fatalf("fee rate = %s", again.WithdrawalFeeRate())
	}
	if addr, ok := again.DepositAddress("SOL"); !ok || addr != "sol-wallet" {
		t.Fatalf("SOL address = %q ok=%v", addr, ok)
	}
}
