package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/segyhp/gym-membership/internal/app"
	"github.com/segyhp/gym-membership/internal/config"
	"github.com/segyhp/gym-membership/internal/scheduler"
	"github.com/segyhp/gym-membership/internal/telemetry"
	"github.com/segyhp/gym-membership/pkg/logger"
)

// The standalone scheduler runs only the daily alert sweep. Deploy it alongside servers
// started with SCHEDULER_ENABLED=false; the redis lock keeps concurrent runs apart.
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

	ctx := context.Background()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		zl.Fatal("Failed to initialize tracing", zap.Error(err))
	}

	c, err := app.New(ctx, cfg, zl)
	if err != nil {
		zl.Fatal("Failed to initialize application", zap.Error(err))
	}
	defer c.Close()

	sched, err := scheduler.New(c.Sweeper, cfg, zl)
	if err != nil {
		zl.Fatal("Failed to initialize scheduler", zap.Error(err))
	}

	// Start the scheduler
	sched.Start()
	zl.Info("Scheduler started",
		zap.String("sweepTime", cfg.Scheduler.SweepTime),
		zap.String("timezone", cfg.Scheduler.Timezone),
		zap.String("next", sched.Next()),
	)

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info("Shutting down scheduler...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sched.Stop(shutdownCtx)
	if err := shutdownTracing(shutdownCtx); err != nil {
		zl.Warn("Tracer shutdown failed", zap.Error(err))
	}
	zl.Info("Scheduler stopped")
}
