package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/createhub/banking-system/internal/audit"
	"github.com/createhub/banking-system/internal/config"
	"github.com/createhub/banking-system/internal/handler"
	"github.com/createhub/banking-system/internal/integrations/cbr"
	"github.com/createhub/banking-system/internal/ledger"
	"github.com/createhub/banking-system/internal/middleware"
	"github.com/createhub/banking-system/internal/notify"
	"github.com/createhub/banking-system/internal/repository"
	"github.com/createhub/banking-system/internal/service"
	"github.com/createhub/banking-system/internal/store"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	// Initialize layers
	repo := repository.NewRepository(db)

	accounts, err := repo.LoadAccounts(context.Background())
	if err != nil {
		logger.Fatalf("Failed to load accounts: %v", err)
	}
	logger.Infof("Loaded %d accounts", len(accounts))

	accountStore := store.NewAccountStore(accounts)
	engine := ledger.NewEngine(accountStore, repo, repo, logger)

	sender := notify.NewSender(cfg, logger)
	dispatcher := notify.NewDispatcher(sender, logger)
	dispatcher.Start()
	defer dispatcher.Stop()

	rates := cbr.NewClient(cfg, logger)
	svc := service.NewService(repo, engine, dispatcher, rates, logger, cfg)
	h := handler.NewHandler(svc, logger)

	// Scheduled jobs: conservation audit and savings-rate refresh
	auditor := audit.NewAuditor(accountStore, repo, logger)
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.AuditSchedule, func() {
		if _, err := auditor.Run(context.Background()); err != nil {
			logger.WithError(err).Error("conservation audit failed")
		}
	}); err != nil {
		logger.Fatalf("Failed to schedule audit: %v", err)
	}
	if _, err := scheduler.AddFunc(cfg.RateSchedule, func() {
		if err := svc.RefreshSavingsRate(context.Background()); err != nil {
			logger.WithError(err).Warn("savings rate refresh failed")
		}
	}); err != nil {
		logger.Fatalf("Failed to schedule rate refresh: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Setup router
	r := mux.NewRouter()
	// Public routes
	r.HandleFunc("/register", h.Register).Methods("POST")
	r.HandleFunc("/login", h.Login).Methods("POST")
	// Protected routes
	authRouter := r.PathPrefix("/").Subrouter()
	authRouter.Use(middleware.AuthMiddleware(cfg))
	authRouter.HandleFunc("/accounts", h.CreateAccount).Methods("POST")
	authRouter.HandleFunc("/accounts", h.ListAccounts).Methods("GET")
	authRouter.HandleFunc("/accounts/{id:[0-9]+}/transactions", h.Transactions).Methods("GET")
	authRouter.HandleFunc("/branches", h.ListBranches).Methods("GET")
	authRouter.HandleFunc("/deposit", h.Deposit).Methods("POST")
	authRouter.HandleFunc("/withdraw", h.Withdraw).Methods("POST")
	authRouter.HandleFunc("/transfer", h.Transfer).Methods("POST")

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	logger.Infof("Starting server on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server failed: %v", err)
	}
}
