package notification

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/amirasaad/smartbank/infra/repository/memory"
	"github.com/amirasaad/smartbank/pkg/domain"
	"github.com/amirasaad/smartbank/pkg/metrics"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type DispatcherTestSuite struct {
	suite.Suite
	uow *memory.UoW
}

func (s *DispatcherTestSuite) SetupTest() {
	s.uow = memory.NewUoW(memory.NewStore())
}

func (s *DispatcherTestSuite) stored(id uuid.UUID) *domain.Notification {
	repo, err := s.uow.NotificationRepository()
	s.Require().NoError(err)
	n, err := repo.Get(context.Background(), id)
	s.Require().NoError(err)
	return n
}

func (s *DispatcherTestSuite) eventually(id uuid.UUID, status domain.NotificationStatus) *domain.Notification {
	var n *domain.Notification
	s.Require().Eventually(func() bool {
		n = s.stored(id)
		return n.Status == status
	}, 2*time.Second, 5*time.Millisecond)
	return n
}

func TestDispatcherTestSuite(t *testing.T) {
	suite.Run(t, new(DispatcherTestSuite))
}

func (s *DispatcherTestSuite) TestSubmit_DeliversAndMarksSuccess() {
	var sent atomic.Int32
	d := NewDispatcher(s.uow, SenderFunc(func(context.Context, *domain.Notification) error {
		sent.Add(1)
		return nil
	}), Options{QueueSize: 4, Workers: 2}, nil, nil)
	d.Start()
	defer func() { _ = d.Shutdown(context.Background()) }()

	n, err := d.Submit(context.Background(), "user-1", "email", "hello")
	s.Require().NoError(err)
	s.Equal("EMAIL", n.Channel)
	s.Equal(domain.NotificationPending, n.Status)

	got := s.eventually(n.ID, domain.NotificationSuccess)
	s.NotNil(got.SentAt)
	s.Equal(int32(1), sent.Load())
}

func (s *DispatcherTestSuite) TestSubmit_ValidatesInput() {
	d := NewDispatcher(s.uow, SenderFunc(func(context.Context, *domain.Notification) error { return nil }),
		Options{QueueSize: 1}, nil, nil)

	_, err := d.Submit(context.Background(), "user-1", "", "hello")
	s.ErrorIs(err, domain.ErrNotificationInvalid)
	_, err = d.Submit(context.Background(), "user-1", "SMS", " ")
	s.ErrorIs(err, domain.ErrNotificationInvalid)
}

// Workers are not started, so the queue holds exactly its capacity.
func (s *DispatcherTestSuite) TestSubmit_SaturatedQueueFailsFast() {
	collector := metrics.NewCollector("test")
	d := NewDispatcher(s.uow, SenderFunc(func(context.Context, *domain.Notification) error { return nil }),
		Options{QueueSize: 2, Workers: 1}, collector, nil)

	var (
		wg        sync.WaitGroup
		saturated atomic.Int32
		failedID  atomic.Value
	)
	for iter := 0; iter < 3; iter++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := d.Submit(context.Background(), "user-1", "SMS", "otp")
			if errors.Is(err, domain.ErrQueueSaturated) {
				saturated.Add(1)
				failedID.Store(n.ID)
				s.Equal(domain.CodeQueueSaturated, domain.CodeOf(err))
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), saturated.Load())
	s.Equal(2, d.QueueDepth())

	rec := s.stored(failedID.Load().(uuid.UUID))
	s.Equal(domain.NotificationFailed, rec.Status)
	s.Equal(domain.ErrQueueSaturated.Error(), rec.Error)
}

func (s *DispatcherTestSuite) TestWorker_SurvivesFaultsAndPanics() {
	var calls atomic.Int32
	d := NewDispatcher(s.uow, SenderFunc(func(_ context.Context, n *domain.Notification) error {
		calls.Add(1)
		switch n.Message {
		case "panic":
			panic("provider exploded")
		case "fail":
			return errors.New("provider unavailable")
		}
		return nil
	}), Options{QueueSize: 8, Workers: 1}, nil, nil)
	d.Start()
	defer func() { _ = d.Shutdown(context.Background()) }()

	ctx := context.Background()
	p, err := d.Submit(ctx, "u", "PUSH", "panic")
	s.Require().NoError(err)
	f, err := d.Submit(ctx, "u", "PUSH", "fail")
	s.Require().NoError(err)
	ok, err := d.Submit(ctx, "u", "PUSH", "ok")
	s.Require().NoError(err)

	s.Contains(s.eventually(p.ID, domain.NotificationFailed).Error, "provider exploded")
	s.Equal("provider unavailable", s.eventually(f.ID, domain.NotificationFailed).Error)
	s.eventually(ok.ID, domain.NotificationSuccess)
	s.Equal(int32(3), calls.Load())
}

func (s *DispatcherTestSuite) TestShutdown_DrainsQueue() {
	var sent atomic.Int32
	d := NewDispatcher(s.uow, SenderFunc(func(context.Context, *domain.Notification) error {
		time.Sleep(time.Millisecond)
		sent.Add(1)
		return nil
	}), Options{QueueSize: 16, Workers: 2, GracePeriod: time.Second}, nil, nil)

	for iter := 0; iter < 10; iter++ {
		_, err := d.Submit(context.Background(), "u", "EMAIL", "statement")
		s.Require().NoError(err)
	}
	d.Start()

	s.Require().NoError(d.Shutdown(context.Background()))
	s.Equal(int32(10), sent.Load())

	_, err := d.Submit(context.Background(), "u", "EMAIL", "late")
	s.ErrorIs(err, domain.ErrDispatcherClosed)
}

func (s *DispatcherTestSuite) TestShutdown_GracePeriodCancelsInFlight() {
	started := make(chan struct{})
	d := NewDispatcher(s.uow, SenderFunc(func(ctx context.Context, _ *domain.Notification) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	}), Options{QueueSize: 2, Workers: 1, GracePeriod: 20 * time.Millisecond, SendTimeout: time.Minute}, nil, nil)
	d.Start()

	n, err := d.Submit(context.Background(), "u", "SMS", "slow")
	s.Require().NoError(err)
	<-started

	s.ErrorIs(d.Shutdown(context.Background()), ErrDrainTimeout)
	s.eventually(n.ID, domain.NotificationFailed)
}
