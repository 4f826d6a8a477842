package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"

	"refpay/internal/config"
	handler "refpay/internal/handler/http"
	"refpay/internal/repository/migration"
	"refpay/internal/repository/postgresql"
	"refpay/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load configuration:", err)
	}

	logger := log.New(os.Stdout, "", log.LstdFlags)

	db, err := sql.Open("postgres", cfg.DB.DatabaseURL)
	if err != nil {
		logger.Fatalf("db open error: %v", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(cfg.DB.MaxOpenConnection)
	db.SetMaxIdleConns(cfg.DB.MaxIdleConnection)
	db.SetConnMaxLifetime(cfg.DB.ConnectionLifetime * time.Second)

	if err := db.Ping(); err != nil {
		logger.Fatalf("db ping error: %v", err)
	}

	if err := migration.RunMigrations(db); err != nil {
		logger.Fatalf("migration error: %v", err)
	}

	requestRepo := postgresql.NewRequestRepository(db)
	balanceRepo := postgresql.NewBalanceRepository(db)
	txManager := postgresql.NewTxManager(db)

	withdrawSvc := service.NewWithdrawService(
		requestRepo,
		balanceRepo,
		decimal.NewFromFloat(cfg.Withdraw.MinAmount),
		cfg.Withdraw.CurrencySymbol,
		logger,
	)
	reviewSvc := service.NewReviewService(requestRepo, balanceRepo, txManager, cfg.Review.PageSize, logger)

	srv := handler.NewServer(withdrawSvc, reviewSvc, balanceRepo, cfg.Token.AdminToken, logger)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Printf("listening on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(ctxShutdown)
}
