package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amirasaad/smartbank/app"
	"github.com/amirasaad/smartbank/infra/initializer"
	"github.com/amirasaad/smartbank/pkg/config"
	"github.com/amirasaad/smartbank/pkg/notification"
	"github.com/amirasaad/smartbank/pkg/service/ledger"
	log "github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load(".env")
	if err != nil {
		return fmt.Errorf("failed to load application configuration: %w", err)
	}

	deps, err := initializer.InitializeDependencies(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	logger := deps.Logger

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc := ledger.NewService(deps.Deps)
	svc.Limiter().StartSweeper(ctx, cfg.RateLimit.IdleTTL/2, cfg.RateLimit.IdleTTL)
	fiberApp := app.NewWithService(deps.Deps, svc)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("Starting server",
		"env", cfg.Env,
		"address", addr,
		"scheme", cfg.Server.Scheme,
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return fiberApp.Listen(addr)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down", "timeout", cfg.Server.ShutdownTimeout)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		httpErr := fiberApp.ShutdownWithContext(shutdownCtx)

		drainCtx, cancelDrain := context.WithTimeout(context.Background(),
			cfg.Notification.GracePeriod+time.Second)
		defer cancelDrain()
		closeErr := deps.Close(drainCtx)
		if errors.Is(closeErr, notification.ErrDrainTimeout) {
			logger.Warn("notification queue abandoned", "pending", deps.Dispatcher.QueueDepth())
		}
		return errors.Join(httpErr, closeErr)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, notification.ErrDrainTimeout) {
		return err
	}
	logger.Info("server stopped")
	return nil
}
