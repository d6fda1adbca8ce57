// Package notification delivers best-effort messages off the funds path.
//
// A Dispatcher owns a bounded FIFO queue and a fixed pool of workers.
// Submit persists a PENDING record and enqueues it without blocking; a full
// queue fails the submission immediately. Workers deliver through a Sender
// and persist the outcome. A fault while handling one item never stops the
// worker that handled it.
package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/amirasaad/smartbank/pkg/domain"
	"github.com/amirasaad/smartbank/pkg/metrics"
	"github.com/amirasaad/smartbank/pkg/repository"
)

// Sender delivers one notification to an external channel.
type Sender interface {
	Send(ctx context.Context, n *domain.Notification) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, n *domain.Notification) error

func (f SenderFunc) Send(ctx context.Context, n *domain.Notification) error { return f(ctx, n) }

// Submitter is the producer side of a Dispatcher.
type Submitter interface {
	Submit(ctx context.Context, recipient, channel, message string) (*domain.Notification, error)
}

// ErrDrainTimeout is returned by Shutdown when the grace period elapsed
// before the queue drained.
var ErrDrainTimeout = errors.New("notification queue did not drain before the grace period")

// Options sizes the queue and the worker pool.
type Options struct {
	QueueSize   int
	Workers     int
	GracePeriod time.Duration
	SendTimeout time.Duration
}

const (
	defaultQueueSize   = 10000
	defaultWorkers     = 3
	defaultGracePeriod = 10 * time.Second
	defaultSendTimeout = 5 * time.Second
)

func (o Options) withDefaults() Options {
	if o.QueueSize <= 0 {
		o.QueueSize = defaultQueueSize
	}
	if o.Workers <= 0 {
		o.Workers = defaultWorkers
	}
	if o.GracePeriod <= 0 {
		o.GracePeriod = defaultGracePeriod
	}
	if o.SendTimeout <= 0 {
		o.SendTimeout = defaultSendTimeout
	}
	return o
}

// Dispatcher is a bounded producer/consumer queue of notifications.
type Dispatcher struct {
	opts    Options
	queue   chan *domain.Notification
	uow     repository.UnitOfWork
	sender  Sender
	metrics *metrics.Collector
	logger  *slog.Logger
	now     func() time.Time

	mu      sync.RWMutex
	closed  bool
	started bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewDispatcher returns a dispatcher. Workers run once Start is called.
func NewDispatcher(
	uow repository.UnitOfWork,
	sender Sender,
	opts Options,
	collector *metrics.Collector,
	logger *slog.Logger,
) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	opts = opts.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		opts:    opts,
		queue:   make(chan *domain.Notification, opts.QueueSize),
		uow:     uow,
		sender:  sender,
		metrics: collector,
		logger:  logger.With("component", "notification-dispatcher"),
		now:     func() time.Time { return time.Now().UTC() },
		ctx:     ctx,
		cancel:  cancel,
	}
	collector.RegisterQueueDepth("", d.QueueDepth)
	return d
}

// WithClock replaces the timestamp source. Call before Start.
func (d *Dispatcher) WithClock(now func() time.Time) *Dispatcher {
	d.now = now
	return d
}

// Start launches the worker pool. Calling it twice is a no-op.
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.closed {
		return
	}
	d.started = true
	for i := 0; i < d.opts.Workers; i++ {
		d.wg.Add(1)
		go d.work(i)
	}
	d.logger.Info("notification workers started", "workers", d.opts.Workers, "queue_size", d.opts.QueueSize)
}

// Submit persists a PENDING notification and enqueues it. A full queue
// returns domain.ErrQueueSaturated and leaves the record FAILED.
func (d *Dispatcher) Submit(ctx context.Context, recipient, channel, message string) (*domain.Notification, error) {
	n, err := domain.NewNotification(recipient, channel, message, d.now())
	if err != nil {
		return nil, err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return nil, domain.ErrDispatcherClosed
	}

	repo, err := d.uow.NotificationRepository()
	if err != nil {
		return nil, err
	}
	if err := repo.Save(ctx, n); err != nil {
		return nil, fmt.Errorf("persist notification: %w", err)
	}

	queued := *n
	select {
	case d.queue <- &queued:
		d.logger.Debug("notification queued", "id", n.ID, "channel", n.Channel, "depth", len(d.queue))
		return n, nil
	default:
	}

	d.metrics.RecordQueueSaturated()
	d.logger.Warn("notification queue saturated", "id", n.ID, "capacity", cap(d.queue))
	failed := *n
	failed.MarkFailed(domain.ErrQueueSaturated.Error())
	if err := repo.Save(ctx, &failed); err != nil {
		d.logger.Error("failed to mark saturated notification", "id", n.ID, "error", err)
	}
	return &failed, domain.ErrQueueSaturated
}

// QueueDepth returns the number of notifications waiting for a worker.
func (d *Dispatcher) QueueDepth() int {
	return len(d.queue)
}

// Shutdown stops accepting work and waits for the queue to drain. When the
// grace period or ctx ends first, in-flight deliveries are cancelled and
// ErrDrainTimeout is returned.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.queue)
	started := d.started
	d.mu.Unlock()

	if !started {
		d.cancel()
		return nil
	}

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	grace := time.NewTimer(d.opts.GracePeriod)
	defer grace.Stop()

	select {
	case <-done:
		d.cancel()
		d.logger.Info("notification queue drained")
		return nil
	case <-grace.C:
	case <-ctx.Done():
	}

	d.cancel()
	d.logger.Warn("notification grace period elapsed, cancelling deliveries", "remaining", len(d.queue))
	return ErrDrainTimeout
}

func (d *Dispatcher) work(id int) {
	defer d.wg.Done()
	logger := d.logger.With("worker", id)
	for n := range d.queue {
		d.deliver(logger, n)
	}
}

func (d *Dispatcher) deliver(logger *slog.Logger, n *domain.Notification) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic recovered while delivering notification", "id", n.ID, "panic", r)
			n.MarkFailed(fmt.Sprintf("panic: %v", r))
			d.persist(logger, n)
		}
	}()

	ctx, cancel := context.WithTimeout(d.ctx, d.opts.SendTimeout)
	defer cancel()

	err := d.sender.Send(ctx, n)
	d.metrics.RecordDelivery(n.Channel, err)
	if err != nil {
		logger.Warn("notification delivery failed", "id", n.ID, "channel", n.Channel, "error", err)
		n.MarkFailed(err.Error())
	} else {
		n.MarkSent(d.now())
	}
	d.persist(logger, n)
}

func (d *Dispatcher) persist(logger *slog.Logger, n *domain.Notification) {
	ctx := context.WithoutCancel(d.ctx)
	repo, err := d.uow.NotificationRepository()
	if err == nil {
		err = repo.Save(ctx, n)
	}
	if err != nil {
		logger.Error("failed to persist notification outcome", "id", n.ID, "status", n.Status, "error", err)
	}
}

var _ Submitter = (*Dispatcher)(nil)
