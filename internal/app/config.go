package app

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`

	RedisAddr string `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`

	// Failure-injection knobs. The rates only apply while the matching
	// toggle is on; the gateway toggle can also be flipped at runtime
	// through the API.
	GatewayDelay            time.Duration `envconfig:"GATEWAY_DELAY" default:"250ms"`
	GatewayFailureRate      float64       `envconfig:"GATEWAY_FAILURE_RATE" default:"0.3"`
	GatewaySimulateFailures bool          `envconfig:"GATEWAY_SIMULATE_FAILURES" default:"false"`
	StepFailureRate         float64       `envconfig:"STEP_FAILURE_RATE" default:"0.2"`
	StepSimulateFailures    bool          `envconfig:"STEP_SIMULATE_FAILURES" default:"false"`

	SeedDemo bool `envconfig:"SEED_DEMO" default:"true"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
