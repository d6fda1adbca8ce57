package config

import (
	"time"

	"github.com/shopspring/decimal"
)

type DB struct {
	Url             string        `envconfig:"URL"`
	MaxOpenConns    int           `envconfig:"MAX_OPEN_CONNS" default:"25"`
	MaxIdleConns    int           `envconfig:"MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CONN_MAX_LIFETIME" default:"30m"`
	AutoMigrate     bool          `envconfig:"AUTO_MIGRATE" default:"true"`
}

type Redis struct {
	URL          string        `envconfig:"URL" default:"redis://localhost:6379/0"`
	PoolSize     int           `envconfig:"POOL_SIZE" default:"10"`
	DialTimeout  time.Duration `envconfig:"DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" default:"3s"`
}

type Kafka struct {
	Brokers string `envconfig:"BROKERS" default:"localhost:9092"`
	Topic   string `envconfig:"TOPIC" default:"smartbank.notifications"`
}

// RateLimit configures the per-key admission token buckets.
type RateLimit struct {
	Capacity       int           `envconfig:"CAPACITY" default:"100"`
	RefillInterval time.Duration `envconfig:"REFILL_INTERVAL" default:"1s"`
	IdleTTL        time.Duration `envconfig:"IDLE_TTL" default:"10m"`
}

// Limits holds the amount bounds and the daily debit ceiling.
type Limits struct {
	MinAmount    decimal.Decimal `envconfig:"MIN_AMOUNT" default:"0.01"`
	MaxAmount    decimal.Decimal `envconfig:"MAX_AMOUNT" default:"1000000.00"`
	DailyCeiling decimal.Decimal `envconfig:"DAILY_CEILING" default:"500000.00"`
	Currency     string          `envconfig:"CURRENCY" default:"INR"`
}

type Lock struct {
	Timeout time.Duration `envconfig:"TIMEOUT" default:"5s"`
}

// Notification configures the dispatcher queue and the delivery backend.
type Notification struct {
	QueueSize   int           `envconfig:"QUEUE_SIZE" default:"10000"`
	Workers     int           `envconfig:"WORKERS" default:"3"`
	GracePeriod time.Duration `envconfig:"GRACE_PERIOD" default:"10s"`
	Sender      string        `envconfig:"SENDER" default:"log"`
	Stream      string        `envconfig:"STREAM" default:"smartbank:notifications"`
	SendTimeout time.Duration `envconfig:"SEND_TIMEOUT" default:"5s"`
}

// Breaker configures the circuit breaker wrapped around notification senders.
type Breaker struct {
	MaxRequests         uint32        `envconfig:"MAX_REQUESTS" default:"1"`
	Interval            time.Duration `envconfig:"INTERVAL" default:"1m"`
	Timeout             time.Duration `envconfig:"TIMEOUT" default:"30s"`
	ConsecutiveFailures uint32        `envconfig:"CONSECUTIVE_FAILURES" default:"5"`
}

type Log struct {
	Level      int    `envconfig:"LEVEL" default:"0"`
	Format     string `envconfig:"FORMAT" default:"json"`
	TimeFormat string `envconfig:"TIME_FORMAT" default:"2006-01-02 15:04:05"`
	Prefix     string `envconfig:"PREFIX" default:"[smartbank]"`
}

type Server struct {
	Scheme          string        `envconfig:"SCHEME" default:"http"`
	Host            string        `envconfig:"HOST" default:"localhost"`
	Port            int           `envconfig:"PORT" default:"3000"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"15s"`
	// MaxRequests per Window per client IP at the HTTP edge. Zero disables it.
	MaxRequests int           `envconfig:"MAX_REQUESTS" default:"0"`
	Window      time.Duration `envconfig:"WINDOW" default:"1s"`
}

type App struct {
	Env          string        `envconfig:"APP_ENV" default:"development"`
	Server       *Server       `envconfig:"SERVER"`
	Log          *Log          `envconfig:"LOG"`
	DB           *DB           `envconfig:"DATABASE"`
	Redis        *Redis        `envconfig:"REDIS"`
	Kafka        *Kafka        `envconfig:"KAFKA"`
	RateLimit    *RateLimit    `envconfig:"RATE_LIMIT"`
	Limits       *Limits       `envconfig:"LIMITS"`
	Lock         *Lock         `envconfig:"LOCK"`
	Notification *Notification `envconfig:"NOTIFICATION"`
	Breaker      *Breaker      `envconfig:"BREAKER"`
}
