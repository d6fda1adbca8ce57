// Package notify provides the delivery backends behind the notification
// dispatcher: a log sender, a redis stream publisher and a kafka producer,
// each of which can be wrapped in a circuit breaker.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/amirasaad/smartbank/pkg/config"
	"github.com/amirasaad/smartbank/pkg/domain"
	"github.com/amirasaad/smartbank/pkg/notification"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
)

// message is the payload published to external channels.
type message struct {
	ID        string    `json:"id"`
	Recipient string    `json:"recipient"`
	Channel   string    `json:"channel"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

func encode(n *domain.Notification) ([]byte, error) {
	return json.Marshal(message{
		ID:        n.ID.String(),
		Recipient: n.Recipient,
		Channel:   n.Channel,
		Message:   n.Message,
		CreatedAt: n.CreatedAt,
	})
}

// LogSender writes each notification to the logger and always succeeds.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger.With("sender", "log")}
}

func (s *LogSender) Send(_ context.Context, n *domain.Notification) error {
	s.logger.Info("sending notification",
		"channel", n.Channel,
		"recipient", n.Recipient,
		"message", n.Message,
	)
	return nil
}

// RedisStreamSender appends notifications to a redis stream for an
// external delivery service to consume.
type RedisStreamSender struct {
	client *redis.Client
	stream string
	logger *slog.Logger
}

// NewRedisStreamSender returns a sender over an existing client.
func NewRedisStreamSender(client *redis.Client, stream string, logger *slog.Logger) *RedisStreamSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisStreamSender{
		client: client,
		stream: stream,
		logger: logger.With("sender", "redis", "stream", stream),
	}
}

func (s *RedisStreamSender) Send(ctx context.Context, n *domain.Notification) error {
	payload, err := encode(n)
	if err != nil {
		return fmt.Errorf("redis sender: marshal failed: %w", err)
	}
	id, err := s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		Values: map[string]any{
			"channel":      n.Channel,
			"notification": string(payload),
		},
	}).Result()
	if err != nil {
		return fmt.Errorf("redis sender: xadd failed: %w", err)
	}
	s.logger.Debug("notification published", "id", n.ID, "entry", id)
	return nil
}

// kafkaWriter is the subset of *kafka.Writer the sender needs.
type kafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSender produces one message per notification keyed by recipient.
type KafkaSender struct {
	writer kafkaWriter
	logger *slog.Logger
}

// NewKafkaSender builds a writer for brokers, a comma separated list.
func NewKafkaSender(brokers, topic string, logger *slog.Logger) (*KafkaSender, error) {
	addrs := parseBrokers(brokers)
	if len(addrs) == 0 {
		return nil, fmt.Errorf("kafka sender: brokers are required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(addrs...),
		Topic:                  topic,
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireOne,
		Balancer:               &kafka.Hash{},
	}
	return &KafkaSender{writer: w, logger: logger.With("sender", "kafka", "topic", topic)}, nil
}

func (s *KafkaSender) Send(ctx context.Context, n *domain.Notification) error {
	payload, err := encode(n)
	if err != nil {
		return fmt.Errorf("kafka sender: marshal failed: %w", err)
	}
	err = s.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(n.Recipient),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "channel", Value: []byte(n.Channel)},
		},
	})
	if err != nil {
		return fmt.Errorf("kafka sender: write failed: %w", err)
	}
	s.logger.Debug("notification produced", "id", n.ID)
	return nil
}

// Close flushes and closes the writer.
func (s *KafkaSender) Close() error {
	return s.writer.Close()
}

func parseBrokers(brokers string) []string {
	var out []string
	for _, b := range strings.Split(brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

// NewSender builds the sender named by cfg.Notification.Sender and wraps
// every remote backend in a circuit breaker. The returned close function
// releases backend connections.
func NewSender(cfg *config.App, logger *slog.Logger) (notification.Sender, func() error, error) {
	noop := func() error { return nil }
	switch strings.ToLower(cfg.Notification.Sender) {
	case "", "log":
		return NewLogSender(logger), noop, nil
	case "redis":
		opt, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("redis sender: invalid URL: %w", err)
		}
		opt.PoolSize = cfg.Redis.PoolSize
		opt.DialTimeout = cfg.Redis.DialTimeout
		opt.ReadTimeout = cfg.Redis.ReadTimeout
		opt.WriteTimeout = cfg.Redis.WriteTimeout
		client := redis.NewClient(opt)
		sender := NewRedisStreamSender(client, cfg.Notification.Stream, logger)
		return NewBreakerSender("redis", sender, cfg.Breaker, logger), client.Close, nil
	case "kafka":
		sender, err := NewKafkaSender(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
		if err != nil {
			return nil, nil, err
		}
		return NewBreakerSender("kafka", sender, cfg.Breaker, logger), sender.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown notification sender %q", cfg.Notification.Sender)
}
