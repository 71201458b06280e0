package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the service configuration, loaded from CHOREBOARD_* environment
// variables.
type Config struct {
	Port      string `env:"CHOREBOARD_PORT" envDefault:"8080"`
	DBPath    string `env:"CHOREBOARD_DB_PATH" envDefault:"choreboard.db"`
	LogLevel  string `env:"CHOREBOARD_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"CHOREBOARD_LOG_FORMAT" envDefault:"text"`

	Push struct {
		VAPIDPublicKey  string `env:"CHOREBOARD_VAPID_PUBLIC_KEY"`
		VAPIDPrivateKey string `env:"CHOREBOARD_VAPID_PRIVATE_KEY"`
		Subscriber      string `env:"CHOREBOARD_PUSH_SUBSCRIBER"`
	}

	Backup struct {
		Passphrase string        `env:"CHOREBOARD_BACKUP_PASSPHRASE"`
		Interval   time.Duration `env:"CHOREBOARD_BACKUP_INTERVAL" envDefault:"24h"`
		Retain     int           `env:"CHOREBOARD_BACKUP_RETAIN" envDefault:"14"`
		S3Endpoint string        `env:"CHOREBOARD_S3_ENDPOINT"`
		S3Bucket   string        `env:"CHOREBOARD_S3_BUCKET"`
		S3Region   string        `env:"CHOREBOARD_S3_REGION" envDefault:"auto"`
		S3Access   string        `env:"CHOREBOARD_S3_ACCESS_KEY"`
		S3Secret   string        `env:"CHOREBOARD_S3_SECRET_KEY"`
	}
}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
