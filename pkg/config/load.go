package config

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Load reads the first env file found among envFilePath (searching parent
// directories) and then processes the environment into an App.
func Load(envFilePath ...string) (*App, error) {
	logger := slog.Default()
	logger.Info("Loading environment variables")

	if len(envFilePath) == 0 {
		logger.Debug("No environment file specified, trying default .env")
		if err := godotenv.Load(); err != nil {
			logger.Warn("No .env file found in current directory")
		}
		return loadFromEnv()
	}

	for _, path := range envFilePath {
		logger.Debug("Looking for environment file", "path", path)
		foundPath, err := findEnvFile(path)
		if err != nil {
			logger.Debug("Environment file not found", "path", path, "error", err)
			continue
		}

		logger.Info("Loading environment from file", "path", foundPath)
		if err := godotenv.Load(foundPath); err != nil {
			logger.Error("Failed to load environment file", "path", foundPath, "error", err)
			continue
		}
		return loadFromEnv()
	}

	logger.Info("No valid environment files found, using process environment")
	return loadFromEnv()
}

// findEnvFile walks from the working directory up to the root and returns
// the first filename found.
func findEnvFile(filename string) (string, error) {
	if filename == "" {
		filename = ".env"
	}
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		candidate := filepath.Join(dir, filename)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}

func loadFromEnv() (*App, error) {
	var cfg App
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.Env == "" {
		cfg.Env = "development"
	}

	slog.Default().Info("App config loaded",
		"env", cfg.Env,
		"db", maskValue(cfg.DB.Url),
		"rate_limit_capacity", cfg.RateLimit.Capacity,
		"rate_limit_refill", cfg.RateLimit.RefillInterval,
		"daily_ceiling", cfg.Limits.DailyCeiling.String(),
		"lock_timeout", cfg.Lock.Timeout,
		"notification_queue", cfg.Notification.QueueSize,
		"notification_workers", cfg.Notification.Workers,
		"notification_sender", cfg.Notification.Sender,
		"redis", maskValue(cfg.Redis.URL),
	)
	return &cfg, nil
}

func maskValue(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 6 {
		return "****"
	}
	return key[:2] + "****" + key[len(key)-4:]
}
