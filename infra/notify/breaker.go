package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/amirasaad/smartbank/pkg/config"
	"github.com/amirasaad/smartbank/pkg/domain"
	"github.com/amirasaad/smartbank/pkg/notification"
	"github.com/sony/gobreaker"
)

// BreakerSender fails fast while the wrapped backend keeps failing.
type BreakerSender struct {
	next    notification.Sender
	breaker *gobreaker.CircuitBreaker
	logger  *slog.Logger
}

// NewBreakerSender wraps next in a breaker named name.
func NewBreakerSender(name string, next notification.Sender, cfg *config.Breaker, logger *slog.Logger) *BreakerSender {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg == nil {
		cfg = &config.Breaker{MaxRequests: 1, ConsecutiveFailures: 5}
	}
	logger = logger.With("breaker", name)
	threshold := cfg.ConsecutiveFailures
	if threshold == 0 {
		threshold = 5
	}
	settings := gobreaker.Settings{
		Name:        "notify-" + name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "from", from.String(), "to", to.String())
		},
	}
	return &BreakerSender{
		next:    next,
		breaker: gobreaker.NewCircuitBreaker(settings),
		logger:  logger,
	}
}

func (s *BreakerSender) Send(ctx context.Context, n *domain.Notification) error {
	_, err := s.breaker.Execute(func() (any, error) {
		return nil, s.next.Send(ctx, n)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("notification backend unavailable (circuit breaker %s): %w", s.breaker.State(), err)
	}
	return err
}

// State reports the breaker state.
func (s *BreakerSender) State() gobreaker.State {
	return s.breaker.State()
}
