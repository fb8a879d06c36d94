package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadp "cryptoboost/internal/adapter/http"
	"cryptoboost/internal/adapter/middleware"
	"cryptoboost/internal/adapter/repository/mysql"
	"cryptoboost/internal/config"
	"cryptoboost/internal/infrastructure/cache"
	"cryptoboost/internal/infrastructure/db"
	"cryptoboost/internal/jobs"
	"cryptoboost/internal/usecase/accrual"
	"cryptoboost/internal/usecase/funding"
	"cryptoboost/internal/usecase/identity"
	"cryptoboost/internal/usecase/portfolio"
	"cryptoboost/internal/usecase/projection"
	"cryptoboost/internal/usecase/settlement"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm/logger"
)

func main() {
	setupLogging()

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("load config")
	}
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}
	if cfg.IsProduction() {
		log.SetFormatter(&log.JSONFormatter{})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gormLevel := logger.Info
	if cfg.IsProduction() {
		gormLevel = logger.Warn
	}
	gdb, err := db.OpenGorm(cfg.DBDriver, cfg.DSN(), gormLevel)
	if err != nil {
		log.WithError(err).Fatal("open database")
	}
	sqlDB, _ := gdb.DB()
	defer sqlDB.Close()
	if cfg.DBAutoMigrate {
		if err := db.Migrate(gdb); err != nil {
			log.WithError(err).Fatal("migrate")
		}
	}

	rdb, err := cache.OpenRedis(ctx, cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		log.WithError(err).Fatal("open redis")
	}
	defer rdb.Close()

	repos := mysql.NewRepos(gdb)
	tx := mysql.NewGormUoW(gdb)

	ident := identity.NewUsecase(repos.Users, rdb, identity.Options{
		Secret:     []byte(cfg.JWTSecret),
		SessionTTL: cfg.SessionTTL,
		BcryptCost: bcrypt.DefaultCost,
	})
	ident.OnAuthChange(func(ev identity.Event, s identity.Session) {
		log.WithFields(log.Fields{"event": ev, "user_id": s.User.ID}).Info("auth change")
	})
	if cfg.AdminEmail != "" {
		if err := ident.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			log.WithError(err).Fatal("seed admin")
		}
	}

	seed := uint64(time.Now().UnixNano())
	proj := projection.NewUsecase(repos.Users, repos.Investments, accrual.NewRandomJitter(seed, seed>>17|1))
	pf := portfolio.NewUsecase(repos.Users, repos.Investments, repos.Transactions, tx)
	fd := funding.NewUsecase(repos, tx)
	st := settlement.NewUsecase(repos.Investments, tx)

	sched, err := jobs.NewScheduler(st, cfg.SettlementSchedule, cfg.SettlementOnStart)
	if err != nil {
		log.WithError(err).Fatal("settlement scheduler")
	}
	sched.Start(ctx)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(echomw.Recover(), echomw.RequestID(), middleware.RequestLogger())

	httpadp.RegisterRoutes(e, httpadp.Handlers{
		Health: httpadp.NewHandler(
			httpadp.Check{Name: "db", Ping: sqlDB.PingContext},
			httpadp.Check{Name: "redis", Ping: func(ctx context.Context) error { return rdb.Ping(ctx).Err() }},
		),
		Auth:   httpadp.NewAuthHandler(ident),
		Me:     httpadp.NewMeHandler(proj, pf, fd),
		Stream: httpadp.NewStreamHandler(proj, st, cfg.ProjectionRefresh),
		Admin:  httpadp.NewAdminHandler(pf, fd, st, ident),
	}, httpadp.RouteConfig{
		Sessions: ident,
		Redis:    rdb,
		IdempTTL: cfg.IdempTTL,
		CronKey:  cfg.CronKey,
	})

	go func() {
		addr := ":" + cfg.AppPort
		log.WithField("addr", addr).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("http server")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("http shutdown")
	}
	sched.Stop()
}

func setupLogging() {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	log.SetOutput(os.Stdout)
	log.SetLevel(log.InfoLevel)
}
