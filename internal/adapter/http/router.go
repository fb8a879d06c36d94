package http

import (
	"time"

	"cryptoboost/internal/adapter/middleware"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

type Handlers struct {
	Health *Handler
	Auth   *AuthHandler
	Me     *MeHandler
	Stream *StreamHandler
	Admin  *AdminHandler
}

type RouteConfig struct {
	Sessions middleware.SessionResolver
	Redis    *redis.Client
	IdempTTL time.Duration
	CronKey  string
}

func RegisterRoutes(e *echo.Echo, h Handlers, cfg RouteConfig) {
	auth := middleware.Auth(cfg.Sessions)

	e.GET("/health", h.Health.Health)

	api := e.Group("/api")
	api.GET("/plans", Plans)

	a := api.Group("/auth")
	a.POST("/signup", h.Auth.SignUp)
	a.POST("/signin", h.Auth.SignIn)
	a.POST("/signout", h.Auth.SignOut, auth)
	a.GET("/session", h.Auth.Session, auth)

	me := api.Group("/me", auth, middleware.Idempotency(cfg.Redis, cfg.IdempTTL))
	me.GET("/balance", h.Me.Balance)
	me.GET("/balance/stream", h.Stream.BalanceStream)
	me.GET("/investments", h.Me.Investments)
	me.POST("/investments", h.Me.CreateInvestment)
	me.GET("/transactions", h.Me.Transactions)
	me.GET("/deposits", h.Me.Deposits)
	me.POST("/deposits", h.Me.CreateDeposit)
	me.GET("/withdrawals", h.Me.Withdrawals)
	me.GET("/withdrawals/quote", h.Me.WithdrawalQuote)
	me.POST("/withdrawals", h.Me.CreateWithdrawal)

	adm := api.Group("/admin", auth, middleware.RequireAdmin)
	adm.GET("/deposits", h.Admin.PendingDeposits)
	adm.POST("/deposits/:id/approve", h.Admin.ApproveDeposit)
	adm.POST("/deposits/:id/reject", h.Admin.RejectDeposit)
	adm.GET("/withdrawals", h.Admin.PendingWithdrawals)
	adm.POST("/withdrawals/:id/approve", h.Admin.ApproveWithdrawal)
	adm.POST("/withdrawals/:id/reject", h.Admin.RejectWithdrawal)
	adm.POST("/investments/:id/approve", h.Admin.ApproveInvestment)
	adm.POST("/investments/:id/reject", h.Admin.RejectInvestment)
	adm.POST("/investments/:id/stop", h.Admin.StopInvestment)
	adm.POST("/settlements/run", h.Admin.RunSettlement)
	adm.POST("/settlements/reconcile", h.Admin.Reconcile)
	adm.GET("/stats", h.Admin.Stats)
	adm.POST("/users/:id/suspend", h.Admin.SuspendUser)
	adm.POST("/users/:id/activate", h.Admin.ActivateUser)

	e.POST("/internal/settlements/run", h.Admin.RunSettlement, middleware.CronKey(cfg.CronKey))
}
