package internal

import "time"

type Config struct {
	Address          string        `env:"RUN_ADDRESS"`
	DatabaseURI      string        `env:"DATABASE_URI"`
	APIAddress       string        `env:"EXPO_PUBLIC_API_URL"`
	SecretFile       string        `env:"SECRET_FILE"`
	RequestTimeout   time.Duration `env:"REQUEST_TIMEOUT"`
	PollInterval     time.Duration `env:"POLL_INTERVAL"`
	DashboardIdleTTL time.Duration `env:"DASHBOARD_IDLE_TTL"`
	PollWorkers      int           `env:"POLL_WORKERS"`
	LogLevel         string        `env:"LOG_LEVEL"`
	LogPretty        bool          `env:"LOG_PRETTY"`
}
