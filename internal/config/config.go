package config

import "github.com/caarlos0/env/v10"

// Config centraliza la configuración del gateway.
type Config struct {
	HTTPPort      string `env:"HTTP_PORT" envDefault:"8080"`
	APIBaseURL    string `env:"API_BASE_URL" envDefault:"http://localhost:4000"`
	SessionFile   string `env:"SESSION_FILE" envDefault:".trustlens/session.json"`
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	DatabaseURL   string `env:"DATABASE_URL"`
	LoginMaxTries int    `env:"LOGIN_MAX_TRIES" envDefault:"5"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
