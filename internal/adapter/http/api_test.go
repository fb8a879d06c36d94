package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cryptoboost/internal/adapter/middleware"
	"cryptoboost/internal/adapter/repository/mysql"
	"cryptoboost/internal/domain/investment"
	"cryptoboost/internal/testutil/sqlitedb"
	"cryptoboost/internal/usecase/funding"
	"cryptoboost/internal/usecase/identity"
	"cryptoboost/internal/usecase/portfolio"
	"cryptoboost/internal/usecase/projection"
	"cryptoboost/internal/usecase/settlement"
	"cryptoboost/pkg/id"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	adminEmail    = "admin@cryptoboost.test"
	adminPassword = "admin-secret"
	cronKey       = "cron-secret"
)

type app struct {
	e  *echo.Echo
	db *gorm.DB
}

func newApp(t *testing.T) *app {
	t.Helper()
	db := sqlitedb.Open(t)
	repos := mysql.NewRepos(db)
	tx := mysql.NewGormUoW(db)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	ident := identity.NewUsecase(repos.Users, rdb, identity.Options{
		Secret:     []byte("handler-test-secret"),
		SessionTTL: time.Hour,
		BcryptCost: bcrypt.MinCost,
	})
	if err := ident.EnsureAdmin(context.Background(), adminEmail, adminPassword); err != nil {
		t.Fatalf("EnsureAdmin: %v", err)
	}
	proj := projection.NewUsecase(repos.Users, repos.Investments, nil)
	pf := portfolio.NewUsecase(repos.Users, repos.Investments, repos.Transactions, tx)
	fd := funding.NewUsecase(repos, tx)
	st := settlement.NewUsecase(repos.Investments, tx)

	e := echo.New()
	e.Validator = NewValidator()
	RegisterRoutes(e, Handlers{
		Health: NewHandler(),
		Auth:   NewAuthHandler(ident),
		Me:     NewMeHandler(proj, pf, fd),
		Stream: NewStreamHandler(proj, st, 20*time.Millisecond),
		Admin:  NewAdminHandler(pf, fd, st, ident),
	}, RouteConfig{Sessions: ident, Redis: rdb, IdempTTL: time.Minute, CronKey: cronKey})
	return &app{e: e, db: db}
}

type call struct {
	method, path, token string
	body                any
	header              map[string]string
}

func (a *app) do(t *testing.T, cl call) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if cl.body != nil {
		if err := json.NewEncoder(&buf).Encode(cl.body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(cl.method, cl.path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if cl.token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+cl.token)
	}
	if cl.method == http.MethodPost && strings.HasPrefix(cl.path, "/api/me/") {
		req.Header.Set(middleware.HeaderRequestID, id.New())
		req.Header.Set(middleware.HeaderRequestAt, time.Now().UTC().Format(time.RFC3339))
	}
	for k, v := range cl.header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func (a *app) expect(t *testing.T, cl call, code int, out any) {
	t.Helper()
	rec := a.do(t, cl)
	if rec.Code != code {
		t.Fatalf("%s %s: status = %d, want %d; body=%s", cl.method, cl.path, rec.Code, code, rec.Body.String())
	}
	if out != nil {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			t.Fatalf("%s %s: bad json: %v; body=%s", cl.method, cl.path, err, rec.Body.String())
		}
	}
}

func (a *app) signUp(t *testing.T, email string) identity.Session {
	t.Helper()
	var s identity.Session
	a.expect(t, call{method: http.MethodPost, path: "/api/auth/signup", body: map[string]string{"email": email, "password": "secret1"}}, http.StatusCreated, &s)
	return s
}

func (a *app) adminToken(t *testing.T) string {
	t.Helper()
	var s identity.Session
	a.expect(t, call{method: http.MethodPost, path: "/api/auth/signin", body: map[string]string{"email": adminEmail, "password": adminPassword}}, http.StatusOK, &s)
	return s.AccessToken
}

func (a *app) fundUser(t *testing.T, userToken, adminToken, amount string) {
	t.Helper()
	var receipt funding.DepositReceipt
	a.expect(t, call{method: http.MethodPost, path: "/api/me/deposits", token: userToken,
		body: map[string]string{"amount": amount, "crypto_type": "usdt"}}, http.StatusCreated, &receipt)
	if receipt.Address == "" {
		t.Fatal("deposit receipt should carry the platform address")
	}
	a.expect(t, call{method: http.MethodPost, path: "/api/admin/deposits/" + receipt.Deposit.ID + "/approve", token: adminToken}, http.StatusOK, nil)
}

func TestAuthFlow(t *testing.T) {
	a := newApp(t)
	s := a.signUp(t, "alice@example.com")

	var got identity.Session
	a.expect(t, call{method: http.MethodGet, path: "/api/auth/session", token: s.AccessToken}, http.StatusOK, &got)
	if got.User.Email != "alice@example.com" {
		t.Fatalf("session user = %+v", got.User)
	}

	a.expect(t, call{method: http.MethodPost, path: "/api/auth/signup", body: map[string]string{"email": "alice@example.com", "password": "secret1"}}, http.StatusConflict, nil)
	a.expect(t, call{method: http.MethodPost, path: "/api/auth/signup", body: map[string]string{"email": "bob@example.com", "password": "123"}}, http.StatusUnprocessableEntity, nil)
	a.expect(t, call{method: http.MethodPost, path: "/api/auth/signin", body: map[string]string{"email": "alice@example.com", "password": "wrong!!"}}, http.StatusUnauthorized, nil)
	a.expect(t, call{method: http.MethodPost, path: "/api/auth/signin", body: map[string]string{"email": "alice@example.com"}}, http.StatusUnprocessableEntity, nil)

	a.expect(t, call{method: http.MethodPost, path: "/api/auth/signout", token: s.AccessToken}, http.StatusNoContent, nil)
	a.expect(t, call{method: http.MethodGet, path: "/api/me/balance", token: s.AccessToken}, http.StatusUnauthorized, nil)
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	a := newApp(t)
	s := a.signUp(t, "alice@example.com")

	a.expect(t, call{method: http.MethodGet, path: "/api/admin/stats"}, http.StatusUnauthorized, nil)
	a.expect(t, call{method: http.MethodGet, path: "/api/admin/stats", token: s.AccessToken}, http.StatusForbidden, nil)

	var st portfolio.Stats
	a.expect(t, call{method: http.MethodGet, path: "/api/admin/stats", token: a.adminToken(t)}, http.StatusOK, &st)
	if st.Users != 2 {
		t.Fatalf("stats users = %d, want 2", st.Users)
	}
}

func TestDepositApproval_Once(t *testing.T) {
	a := newApp(t)
	user := a.signUp(t, "alice@example.com")
	admin := a.adminToken(t)

	var receipt funding.DepositReceipt
	a.expect(t, call{method: http.MethodPost, path: "/api/me/deposits", token: user.AccessToken,
		body: map[string]string{"amount": "1000", "crypto_type": "BTC"}}, http.StatusCreated, &receipt)

	var pending []json.RawMessage
	a.expect(t, call{method: http.MethodGet, path: "/api/admin/deposits", token: admin}, http.StatusOK, &pending)
	if len(pending) != 1 {
		t.Fatalf("pending deposits = %d, want 1", len(pending))
	}

	path := "/api/admin/deposits/" + receipt.Deposit.ID + "/approve"
	a.expect(t, call{method: http.MethodPost, path: path, token: admin}, http.StatusOK, nil)
	a.expect(t, call{method: http.MethodPost, path: path, token: admin}, http.StatusConflict, nil)
	a.expect(t, call{method: http.MethodPost, path: "/api/admin/deposits/" + id.New() + "/approve", token: admin}, http.StatusNotFound, nil)

	var p projection.Projection
	a.expect(t, call{method: http.MethodGet, path: "/api/me/balance", token: user.AccessToken}, http.StatusOK, &p)
	if !p.TotalCapital.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("total capital = %s, want 1000", p.TotalCapital)
	}
}

func TestRequestValidation(t *testing.T) {
	a := newApp(t)
	user := a.signUp(t, "alice@example.com")

	rec := a.do(t, call{method: http.MethodPost, path: "/api/me/deposits", token: user.AccessToken,
		body: map[string]string{"amount": "abc", "crypto_type": "DOGE"}})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	var er ErrorResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &er)
	if !containsFieldMsg(er.Details, "amount", "positive") || !containsFieldMsg(er.Details, "crypto_type", "BTC") {
		t.Fatalf("details = %+v", er.Details)
	}

	a.expect(t, call{method: http.MethodPost, path: "/api/me/withdrawals", token: user.AccessToken,
		body: map[string]string{"address": "", "crypto_type": "BTC"}}, http.StatusUnprocessableEntity, nil)
	a.expect(t, call{method: http.MethodPost, path: "/api/me/investments", token: user.AccessToken,
		body: map[string]string{"plan": "platinum", "amount": "100"}}, http.StatusUnprocessableEntity, nil)
	a.expect(t, call{method: http.MethodGet, path: "/api/me/transactions?limit=x", token: user.AccessToken}, http.StatusBadRequest, nil)

	// mutating /me routes need idempotency headers
	a.expect(t, call{method: http.MethodPost, path: "/api/me/deposits", token: user.AccessToken,
		body:   map[string]string{"amount": "10", "crypto_type": "BTC"},
		header: map[string]string{middleware.HeaderRequestID: "nope"}}, http.StatusBadRequest, nil)
}

func TestInvestmentLifecycle_SettledThroughAdminAndCron(t *testing.T) {
	a := newApp(t)
	user := a.signUp(t, "alice@example.com")
	admin := a.adminToken(t)

	var inv portfolio.InvestmentDTO
	a.expect(t, call{method: http.MethodPost, path: "/api/me/investments", token: user.AccessToken,
		body: map[string]string{"plan": "starter", "amount": "500"}}, http.StatusCreated, &inv)
	if inv.Status != investment.StatusPending {
		t.Fatalf("status = %s, want pending", inv.Status)
	}

	var approved portfolio.InvestmentDTO
	a.expect(t, call{method: http.MethodPost, path: "/api/admin/investments/" + inv.ID + "/approve", token: admin}, http.StatusOK, &approved)
	if !approved.ExpectedProfit.Equal(decimal.NewFromInt(75)) {
		t.Fatalf("expected profit = %s, want 75", approved.ExpectedProfit)
	}
	a.expect(t, call{method: http.MethodPost, path: "/api/admin/investments/" + inv.ID + "/approve", token: admin}, http.StatusConflict, nil)

	// age the investment past its duration
	past := time.Now().UTC().Add(-31 * 24 * time.Hour)
	if err := a.db.Model(&investment.Investment{}).Where("id = ?", inv.ID).Update(investment.ColApprovalDate, past).Error; err != nil {
		t.Fatalf("backdate: %v", err)
	}

	var p projection.Projection
	a.expect(t, call{method: http.MethodGet, path: "/api/me/balance", token: user.AccessToken}, http.StatusOK, &p)
	if len(p.Positions) != 1 || !p.Positions[0].DueForSettlement {
		t.Fatalf("position should be due: %+v", p.Positions)
	}

	a.expect(t, call{method: http.MethodPost, path: "/internal/settlements/run"}, http.StatusUnauthorized, nil)

	var rep settlement.Report
	a.expect(t, call{method: http.MethodPost, path: "/internal/settlements/run", header: map[string]string{middleware.HeaderCronKey: cronKey}}, http.StatusOK, &rep)
	if rep.Settled != 1 {
		t.Fatalf("cron pass settled %d, want 1", rep.Settled)
	}
	a.expect(t, call{method: http.MethodPost, path: "/api/admin/settlements/run", token: admin}, http.StatusOK, &rep)
	if rep.Settled != 0 {
		t.Fatalf("second pass settled %d, want 0", rep.Settled)
	}

	a.expect(t, call{method: http.MethodGet, path: "/api/me/balance", token: user.AccessToken}, http.StatusOK, &p)
	if !p.TotalCapital.Equal(decimal.NewFromInt(575)) {
		t.Fatalf("total capital = %s, want 575", p.TotalCapital)
	}
	if !p.InvestedCapital.IsZero() {
		t.Fatalf("invested capital = %s, want 0", p.InvestedCapital)
	}

	a.expect(t, call{method: http.MethodPost, path: "/api/admin/investments/" + inv.ID + "/stop", token: admin}, http.StatusConflict, nil)

	var txs []struct {
		Type   string          `json:"type"`
		Amount decimal.Decimal `json:"amount"`
	}
	a.expect(t, call{method: http.MethodGet, path: "/api/me/transactions", token: user.AccessToken}, http.StatusOK, &txs)
	var profit int
	for _, tx := range txs {
		if tx.Type == "profit" {
			profit++
			if !tx.Amount.Equal(decimal.NewFromInt(75)) {
				t.Fatalf("profit entry = %s, want 75", tx.Amount)
			}
		}
	}
	if profit != 1 {
		t.Fatalf("profit entries = %d, want 1", profit)
	}
}

func TestWithdrawal_TaxOnlyWithInvestmentHistory(t *testing.T) {
	a := newApp(t)
	admin := a.adminToken(t)

	plain := a.signUp(t, "plain@example.com")
	investor := a.signUp(t, "investor@example.com")
	a.fundUser(t, plain.AccessToken, admin, "100")
	a.fundUser(t, investor.AccessToken, admin, "100")

	var inv portfolio.InvestmentDTO
	a.expect(t, call{method: http.MethodPost, path: "/api/me/investments", token: investor.AccessToken,
		body: map[string]string{"plan": "pro", "amount": "50"}}, http.StatusCreated, &inv)
	a.expect(t, call{method: http.MethodPost, path: "/api/admin/investments/" + inv.ID + "/reject", token: admin}, http.StatusOK, nil)

	var q funding.WithdrawalQuote
	a.expect(t, call{method: http.MethodGet, path: "/api/me/withdrawals/quote?amount=100", token: plain.AccessToken}, http.StatusOK, &q)
	if !q.Tax.IsZero() {
		t.Fatalf("plain user tax = %s, want 0", q.Tax)
	}
	a.expect(t, call{method: http.MethodGet, path: "/api/me/withdrawals/quote?amount=100", token: investor.AccessToken}, http.StatusOK, &q)
	if !q.Tax.Equal(decimal.NewFromInt(3)) {
		t.Fatalf("investor tax = %s, want 3", q.Tax)
	}

	var w struct {
		ID  string          `json:"id"`
		Tax decimal.Decimal `json:"tax"`
	}
	a.expect(t, call{method: http.MethodPost, path: "/api/me/withdrawals", token: investor.AccessToken,
		body: map[string]string{"address": "bc1qexample", "crypto_type": "BTC"}}, http.StatusCreated, &w)
	a.expect(t, call{method: http.MethodPost, path: "/api/admin/withdrawals/" + w.ID + "/approve", token: admin}, http.StatusOK, nil)
	a.expect(t, call{method: http.MethodPost, path: "/api/admin/withdrawals/" + w.ID + "/reject", token: admin}, http.StatusConflict, nil)

	var p projection.Projection
	a.expect(t, call{method: http.MethodGet, path: "/api/me/balance", token: investor.AccessToken}, http.StatusOK, &p)
	if !p.TotalCapital.IsZero() {
		t.Fatalf("balance after full withdrawal = %s, want 0 (floored)", p.TotalCapital)
	}
}

func TestSuspendUser(t *testing.T) {
	a := newApp(t)
	user := a.signUp(t, "alice@example.com")
	admin := a.adminToken(t)

	a.expect(t, call{method: http.MethodPost, path: "/api/admin/users/" + user.User.ID + "/suspend", token: admin}, http.StatusOK, nil)
	a.expect(t, call{method: http.MethodPost, path: "/api/auth/signin", body: map[string]string{"email": "alice@example.com", "password": "secret1"}}, http.StatusForbidden, nil)
	a.expect(t, call{method: http.MethodPost, path: "/api/admin/users/" + user.User.ID + "/activate", token: admin}, http.StatusOK, nil)
	a.expect(t, call{method: http.MethodPost, path: "/api/auth/signin", body: map[string]string{"email": "alice@example.com", "password": "secret1"}}, http.StatusOK, nil)
	a.expect(t, call{method: http.MethodPost, path: "/api/admin/users/" + id.New() + "/suspend", token: admin}, http.StatusNotFound, nil)
}

func TestBalanceStream(t *testing.T) {
	a := newApp(t)
	user := a.signUp(t, "alice@example.com")
	a.fundUser(t, user.AccessToken, a.adminToken(t), "250")

	srv := httptest.NewServer(a.e)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/me/balance/stream?access_token=" + user.AccessToken
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	if resp.StatusCode != http.StatusSwitchingProtocols {
		t.Fatalf("status = %d, want 101", resp.StatusCode)
	}

	for i := 0; i < 2; i++ {
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var msg streamMessage
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read %d: %v", i, err)
		}
		if msg.Type != "projection" || msg.Projection == nil {
			t.Fatalf("message %d = %+v", i, msg)
		}
		if !msg.Projection.TotalCapital.Equal(decimal.NewFromInt(250)) {
			t.Fatalf("streamed total capital = %s, want 250", msg.Projection.TotalCapital)
		}
	}

	if _, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/api/me/balance/stream", nil); err == nil {
		t.Fatal("stream without a token should be refused")
	}
}
