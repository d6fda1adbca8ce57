package initializer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/amirasaad/smartbank/infra"
	"github.com/amirasaad/smartbank/infra/notify"
	infra_repository "github.com/amirasaad/smartbank/infra/repository"
	"github.com/amirasaad/smartbank/infra/repository/memory"
	"github.com/amirasaad/smartbank/pkg/config"
	"github.com/amirasaad/smartbank/pkg/metrics"
	"github.com/amirasaad/smartbank/pkg/notification"
	"github.com/amirasaad/smartbank/pkg/repository"
	"gorm.io/gorm"
)

// Dependencies is everything the server needs to run and shut down.
type Dependencies struct {
	config.Deps
	Dispatcher *notification.Dispatcher

	closers []func() error
}

// Close drains the notification queue and releases backend connections.
// The dispatcher error, if any, is returned together with closer errors.
func (d *Dependencies) Close(ctx context.Context) error {
	var errs []error
	if d.Dispatcher != nil {
		if err := d.Dispatcher.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// InitializeDependencies initializes all the application dependencies.
// An empty DATABASE_URL selects the in-memory store.
func InitializeDependencies(cfg *config.App) (*Dependencies, error) {
	logger := SetupLogger(cfg.Log)
	return initialize(cfg, logger)
}

func initialize(cfg *config.App, logger *slog.Logger) (deps *Dependencies, err error) {
	deps = &Dependencies{}
	deps.Config = cfg
	deps.Logger = logger
	deps.Metrics = metrics.NewCollector("smartbank")

	var closeStore func() error
	deps.Uow, closeStore, err = newUnitOfWork(cfg, logger)
	if err != nil {
		return nil, err
	}
	if closeStore != nil {
		deps.closers = append(deps.closers, closeStore)
	}

	sender, closeSender, err := notify.NewSender(cfg, logger)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("failed to create notification sender: %w", err), deps.Close(context.Background()))
	}
	deps.closers = append(deps.closers, closeSender)

	n := cfg.Notification
	if n == nil {
		n = &config.Notification{}
	}
	deps.Dispatcher = notification.NewDispatcher(deps.Uow, sender, notification.Options{
		QueueSize:   n.QueueSize,
		Workers:     n.Workers,
		GracePeriod: n.GracePeriod,
		SendTimeout: n.SendTimeout,
	}, deps.Metrics, logger)
	deps.Notifications = deps.Dispatcher
	deps.Dispatcher.Start()

	logger.Info("dependencies initialized",
		"store", storeName(cfg),
		"notification_sender", n.Sender,
		"notification_workers", n.Workers,
	)
	return deps, nil
}

func storeName(cfg *config.App) string {
	if cfg.DB == nil || cfg.DB.Url == "" {
		return "memory"
	}
	return "postgres"
}

// newUnitOfWork returns the configured store and, for postgres, the func
// that closes its connection pool.
func newUnitOfWork(cfg *config.App, logger *slog.Logger) (repository.UnitOfWork, func() error, error) {
	var lockOpts []memory.Option
	var dbOpts []infra_repository.UoWOption
	if cfg.Lock != nil && cfg.Lock.Timeout > 0 {
		lockOpts = append(lockOpts, memory.WithLockTimeout(cfg.Lock.Timeout))
		dbOpts = append(dbOpts, infra_repository.WithLockTimeout(cfg.Lock.Timeout))
	}

	if storeName(cfg) == "memory" {
		logger.Warn("DATABASE_URL is not set, using the in-memory store")
		return memory.NewUoW(memory.NewStore(lockOpts...)), nil, nil
	}

	db, err := infra.NewDBConnection(cfg.DB, cfg.Env)
	if err != nil {
		logger.Error("Failed to initialize database", "error", err)
		return nil, nil, err
	}
	return infra_repository.NewUoW(db, dbOpts...), closeDB(db), nil
}

func closeDB(db *gorm.DB) func() error {
	return func() error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
}
