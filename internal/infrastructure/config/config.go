package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	HTTPAddr       string   `envconfig:"HTTP_ADDR" default:":8080"`
	DatabaseURL    string   `envconfig:"DATABASE_URL" required:"true"`
	RedisAddr      string   `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	EventsChannel  string   `envconfig:"EVENTS_CHANNEL" default:"order-events"`
	KafkaBroker    string   `envconfig:"KAFKA_BROKER"`
	KafkaTopic     string   `envconfig:"KAFKA_TOPIC" default:"order-events-audit"`
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS"`
	QRBaseURL      string   `envconfig:"QR_BASE_URL" default:"http://localhost:3000"`
	LogLevel       string   `envconfig:"LOG_LEVEL" default:"info"`
}

// Load reads the environment, after loading .env if one is present.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("envconfig.Process: %w", err)
	}

	return cfg, nil
}
