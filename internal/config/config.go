package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Billroom"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	DB struct {
		Enabled  bool   `envconfig:"DB_ENABLED" default:"false"`
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"billroom"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}

	Auth struct {
		Password  string        `envconfig:"AUTH_PASSWORD" default:"Sandhiya"`
		JWTSecret string        `envconfig:"AUTH_JWT_SECRET"`
		TokenTTL  time.Duration `envconfig:"AUTH_TOKEN_TTL" default:"12h"`
	}

	Engine struct {
		PollInterval     time.Duration `envconfig:"ENGINE_POLL_INTERVAL" default:"1s"`
		SweepInterval    time.Duration `envconfig:"ENGINE_SWEEP_INTERVAL" default:"30s"`
		ArchiveAfter     time.Duration `envconfig:"ENGINE_ARCHIVE_AFTER" default:"40m"`
		SettleDelay      time.Duration `envconfig:"ENGINE_SETTLE_DELAY" default:"4s"`
		PlaceholderDelay time.Duration `envconfig:"ENGINE_PLACEHOLDER_DELAY" default:"3s"`
		TypingLead       time.Duration `envconfig:"ENGINE_TYPING_LEAD" default:"2s"`

		CashRoom     string `envconfig:"ENGINE_CASH_ROOM" default:"340"`
		FinanceRoom  string `envconfig:"ENGINE_FINANCE_ROOM" default:"210"`
		VIPRoom      string `envconfig:"ENGINE_VIP_ROOM" default:"450"`
		FallbackRoom string `envconfig:"ENGINE_FALLBACK_ROOM" default:"101"`
		// VIPThreshold is in rupees.
		VIPThreshold int64 `envconfig:"ENGINE_VIP_THRESHOLD" default:"10000000"`

		RequeueOnStart bool   `envconfig:"ENGINE_REQUEUE_ON_START" default:"true"`
		TiersFile      string `envconfig:"ENGINE_TIERS_FILE"`
		Seed           uint64 `envconfig:"ENGINE_SEED" default:"0"`
	}

	Kafka struct {
		Enabled bool     `envconfig:"KAFKA_ENABLED" default:"false"`
		Brokers []string `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`
		Topic   string   `envconfig:"KAFKA_TOPIC" default:"billroom.transactions"`
	}

	CORS struct {
		AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

func (c *Config) Validate() error {
	var errs []error

	if c.Engine.PollInterval <= 0 {
		errs = append(errs, errors.New("ENGINE_POLL_INTERVAL must be positive"))
	}

	if c.Engine.SweepInterval <= 0 {
		errs = append(errs, errors.New("ENGINE_SWEEP_INTERVAL must be positive"))
	}

	if c.Engine.CashRoom == c.Engine.FinanceRoom {
		errs = append(errs, errors.New("cash room and finance room must differ"))
	}

	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		errs = append(errs, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is set"))
	}

	return errors.Join(errs...)
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}
