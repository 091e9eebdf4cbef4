package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/subosito/gotenv"
	"golang.org/x/sync/errgroup"

	"bizledger/internal/config"
	"bizledger/internal/domain/businesses"
	"bizledger/internal/domain/inventory"
	"bizledger/internal/domain/reports"
	"bizledger/internal/domain/transactions"
	"bizledger/internal/domain/users"
	"bizledger/internal/infra/db"
	httpx "bizledger/internal/infra/http"
	"bizledger/internal/infra/logger"
	"bizledger/internal/predict"
	"bizledger/internal/service"
)

func runMigrations(dsn string) error {
	sqlDB, err := goose.OpenDBWithDriver("pgx", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = sqlDB.Close() }()
	return goose.Up(sqlDB, "migrations")
}

func main() {
	_ = gotenv.Load()

	cfg, err := config.Load("config/example.yaml")
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.App.Env)

	if err := runMigrations(cfg.Postgres.DSN); err != nil {
		log.Error("migrations failed", "err", err)
		return
	}
	log.Info("migrations applied")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.Postgres.DSN)
	if err != nil {
		log.Error("db connect failed", "err", err)
		return
	}
	defer pool.Close()
	log.Info("db connected")

	usersRepo := users.NewRepo(pool)
	bizRepo := businesses.NewRepo(pool)
	invRepo := inventory.NewRepo(pool)
	txRepo := transactions.NewRepo(pool, invRepo)
	repRepo := reports.NewRepo(pool, log)
	estimator := predict.NewEstimator(cfg.Predict.MinMonths)

	svc := service.New(log, bizRepo, usersRepo, invRepo, txRepo, repRepo, estimator, cfg.Stock.LowStockThreshold)

	srv := httpx.New(cfg.HTTP.Addr, cfg.Metrics.Enabled, log, svc)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("HTTP server started", "addr", cfg.HTTP.Addr)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "err", err)
		return
	}
	log.Info("graceful shutdown complete")
}
