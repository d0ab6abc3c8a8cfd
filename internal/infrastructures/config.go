package infrastructures

import (
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type AppConfig struct {
	DatabaseURL     string `env:"DATABASE_URL,required"`
	RedisAddress    string `env:"REDIS_ADDRESS" envDefault:"localhost:6379"`
	RedisPassword   string `env:"REDIS_PASSWORD"`
	IdentityBaseURL string `env:"IDENTITY_BASE_URL,required"`
	ListenAddress   string `env:"LISTEN_ADDRESS" envDefault:":8080"`

	// SweepInterval controls how often lapsed claims are marked EXPIRED.
	SweepIntervalMinutes int `env:"SWEEP_INTERVAL_MINUTES" envDefault:"10"`
}

var Config *AppConfig

func LoadConfig() *AppConfig {
	godotenv.Load()

	cfg := &AppConfig{}
	if err := env.Parse(cfg); err != nil {
		logrus.Fatalf("failed to parse config: %v", err)
	}

	Config = cfg
	return Config
}
