package config

import (
	"log/slog"
	"time"

	"github.com/amirasaad/smartbank/pkg/metrics"
	"github.com/amirasaad/smartbank/pkg/notification"
	"github.com/amirasaad/smartbank/pkg/repository"
)

// Deps holds all infrastructure dependencies for building the app and services.
type Deps struct {
	Uow           repository.UnitOfWork
	Notifications notification.Submitter
	Metrics       *metrics.Collector
	Logger        *slog.Logger
	Config        *App
	// Clock defaults to time.Now in UTC.
	Clock func() time.Time
}
