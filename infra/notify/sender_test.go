package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/amirasaad/smartbank/pkg/config"
	"github.com/amirasaad/smartbank/pkg/domain"
	"github.com/amirasaad/smartbank/pkg/notification"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newNotification(t *testing.T) *domain.Notification {
	t.Helper()
	n, err := domain.NewNotification("user-42", "sms", "Your OTP is 1234", time.Now())
	require.NoError(t, err)
	return n
}

func TestLogSender(t *testing.T) {
	assert.NoError(t, NewLogSender(nil).Send(context.Background(), newNotification(t)))
}

func TestRedisStreamSender(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	n := newNotification(t)
	sender := NewRedisStreamSender(client, "smartbank:notifications", nil)
	require.NoError(t, sender.Send(context.Background(), n))

	entries, err := client.XRange(context.Background(), "smartbank:notifications", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "SMS", entries[0].Values["channel"])

	var got message
	require.NoError(t, json.Unmarshal([]byte(entries[0].Values["notification"].(string)), &got))
	assert.Equal(t, n.ID.String(), got.ID)
	assert.Equal(t, "user-42", got.Recipient)
	assert.Equal(t, "Your OTP is 1234", got.Message)
}

func TestRedisStreamSender_ServerDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	err := NewRedisStreamSender(client, "s", nil).Send(context.Background(), newNotification(t))
	assert.ErrorContains(t, err, "xadd failed")
}

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func TestKafkaSender(t *testing.T) {
	w := &fakeWriter{}
	sender := &KafkaSender{writer: w, logger: NewLogSender(nil).logger}
	n := newNotification(t)

	require.NoError(t, sender.Send(context.Background(), n))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, []byte("user-42"), w.msgs[0].Key)
	assert.Equal(t, "channel", w.msgs[0].Headers[0].Key)

	w.err = errors.New("leader not available")
	assert.ErrorContains(t, sender.Send(context.Background(), n), "leader not available")
}

func TestNewKafkaSender_RequiresBrokers(t *testing.T) {
	_, err := NewKafkaSender(" , ", "topic", nil)
	assert.Error(t, err)

	s, err := NewKafkaSender("localhost:9092, localhost:9093", "topic", nil)
	require.NoError(t, err)
	assert.NoError(t, s.Close())
}

func TestBreakerSender_OpensAfterConsecutiveFailures(t *testing.T) {
	calls := 0
	failing := notification.SenderFunc(func(context.Context, *domain.Notification) error {
		calls++
		return errors.New("boom")
	})
	sender := NewBreakerSender("test", failing, &config.Breaker{
		MaxRequests:         1,
		Timeout:             time.Minute,
		ConsecutiveFailures: 2,
	}, nil)

	n := newNotification(t)
	assert.EqualError(t, sender.Send(context.Background(), n), "boom")
	assert.EqualError(t, sender.Send(context.Background(), n), "boom")
	assert.Equal(t, gobreaker.StateOpen, sender.State())

	err := sender.Send(context.Background(), n)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 2, calls)
}

func TestNewSender(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := &config.App{
		Notification: &config.Notification{Sender: "log"},
		Redis:        &config.Redis{URL: "redis://" + mr.Addr() + "/0", PoolSize: 2},
		Kafka:        &config.Kafka{Brokers: "localhost:9092", Topic: "t"},
		Breaker:      &config.Breaker{MaxRequests: 1, ConsecutiveFailures: 3},
	}

	s, closeFn, err := NewSender(cfg, nil)
	require.NoError(t, err)
	assert.IsType(t, &LogSender{}, s)
	assert.NoError(t, closeFn())

	cfg.Notification.Sender = "redis"
	cfg.Notification.Stream = "stream"
	s, closeFn, err = NewSender(cfg, nil)
	require.NoError(t, err)
	assert.IsType(t, &BreakerSender{}, s)
	require.NoError(t, s.Send(context.Background(), newNotification(t)))
	assert.NoError(t, closeFn())

	cfg.Notification.Sender = "kafka"
	s, closeFn, err = NewSender(cfg, nil)
	require.NoError(t, err)
	assert.IsType(t, &BreakerSender{}, s)
	assert.NoError(t, closeFn())

	cfg.Notification.Sender = "pigeon"
	_, _, err = NewSender(cfg, nil)
	assert.Error(t, err)
}
