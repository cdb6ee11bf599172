package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/segyhp/gym-membership/internal/app"
	"github.com/segyhp/gym-membership/internal/config"
	"github.com/segyhp/gym-membership/internal/handler"
	"github.com/segyhp/gym-membership/internal/scheduler"
	"github.com/segyhp/gym-membership/internal/telemetry"
	"github.com/segyhp/gym-membership/pkg/logger"
	"github.com/segyhp/gym-membership/pkg/response"
)

type handlers struct {
	auth      *handler.AuthHandler
	members   *handler.MemberHandler
	payments  *handler.PaymentHandler
	alerts    *handler.AlertHandler
	dashboard *handler.DashboardHandler
	health    *handler.HealthHandler
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zl, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zl.Sync()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		zl.Fatal("Failed to initialize tracing", zap.Error(err))
	}

	c, err := app.New(ctx, cfg, zl)
	if err != nil {
		zl.Fatal("Failed to initialize application", zap.Error(err))
	}
	defer c.Close()

	h := handlers{
		auth:      handler.NewAuthHandler(c.Auth),
		members:   handler.NewMemberHandler(c.Members),
		payments:  handler.NewPaymentHandler(c.Payments),
		alerts:    handler.NewAlertHandler(c.Alerts, c.Sweeper),
		dashboard: handler.NewDashboardHandler(c.Dashboard),
		health: handler.NewHealthHandler(map[string]handler.Pinger{
			"database": c.DB,
			"redis":    handler.PingFunc(c.Store.Ping),
		}, cfg.Health.Timeout),
	}

	limiter := handler.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, cfg.TrustedProxies()...)
	go limiter.RunEviction(ctx, time.Minute, 10*time.Minute)

	// Setup routes
	router := setupRoutes(h, handler.RequireAuth(c.Auth), limiter)
	root := response.CORSMiddleware(cfg.Server.CORSAllowedOrigin)(response.LoggingMiddleware(zl)(router))

	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		sched, err = scheduler.New(c.Sweeper, cfg, zl)
		if err != nil {
			zl.Fatal("Failed to initialize scheduler", zap.Error(err))
		}
		sched.Start()
		zl.Info("Alert sweep scheduled", zap.String("next", sched.Next()))
	}

	// Start server
	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      root,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	go func() {
		zl.Info("Server starting", zap.String("addr", server.Addr), zap.String("env", cfg.Server.Env))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zl.Info("Shutting down server...")
	stop()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if sched != nil {
		sched.Stop(shutdownCtx)
	}

	if err := server.Shutdown(shutdownCtx); err != nil {
		zl.Error("Server forced to shutdown", zap.Error(err))
	}

	if err := shutdownTracing(shutdownCtx); err != nil {
		zl.Warn("Tracer shutdown failed", zap.Error(err))
	}

	zl.Info("Server exited")
}

func setupRoutes(h handlers, requireAuth mux.MiddlewareFunc, limiter *handler.RateLimiter) *mux.Router {
	router := mux.NewRouter()

	// Health check
	router.HandleFunc("/health", h.health.Health).Methods("GET")
	router.HandleFunc("/health/ready", h.health.Ready).Methods("GET")

	// API routes
	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(limiter.Middleware)

	api.HandleFunc("/auth/login", h.auth.Login).Methods("POST")

	secured := api.NewRoute().Subrouter()
	secured.Use(requireAuth)

	secured.HandleFunc("/auth/verify", h.auth.Verify).Methods("GET")
	secured.HandleFunc("/auth/change-password", h.auth.ChangePassword).Methods("POST")

	secured.HandleFunc("/members", h.members.List).Methods("GET")
	secured.HandleFunc("/members", h.members.Create).Methods("POST")
	secured.HandleFunc("/members/{id}", h.members.Get).Methods("GET")
	secured.HandleFunc("/members/{id}", h.members.Update).Methods("PUT")
	secured.HandleFunc("/members/{id}", h.members.Delete).Methods("DELETE")
	secured.HandleFunc("/members/{id}/toggle-status", h.members.ToggleStatus).Methods("PATCH")
	secured.HandleFunc("/members/{id}/alerts", h.alerts.ListByMember).Methods("GET")

	secured.HandleFunc("/payments/reports/monthly", h.payments.MonthlyReport).Methods("GET")
	secured.HandleFunc("/payments", h.payments.List).Methods("GET")
	secured.HandleFunc("/payments", h.payments.Post).Methods("POST")
	secured.HandleFunc("/payments/{id}", h.payments.Get).Methods("GET")
	secured.HandleFunc("/payments/{id}", h.payments.Update).Methods("PUT")
	secured.HandleFunc("/payments/{id}", h.payments.Delete).Methods("DELETE")

	secured.HandleFunc("/alerts", h.alerts.List).Methods("GET")
	secured.HandleFunc("/alerts/summary", h.alerts.Summary).Methods("GET")
	secured.HandleFunc("/alerts/mark-all-read", h.alerts.MarkAllRead).Methods("PATCH")
	secured.HandleFunc("/alerts/read/all", h.alerts.DeleteRead).Methods("DELETE")
	secured.HandleFunc("/alerts/sweep", h.alerts.Sweep).Methods("POST")
	secured.HandleFunc("/alerts/{id}/read", h.alerts.MarkRead).Methods("PATCH")
	secured.HandleFunc("/alerts/{id}", h.alerts.Delete).Methods("DELETE")

	secured.HandleFunc("/dashboard", h.dashboard.Get).Methods("GET")
	secured.HandleFunc("/dashboard/monthly-stats/{year}", h.dashboard.MonthlyStats).Methods("GET")

	return router
}
