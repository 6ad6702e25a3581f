package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort        string        `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL     string        `env:"DATABASE_URL,required"`
	LLMEndpoint     string        `env:"LLM_ENDPOINT" envDefault:"https://vk-scoreworker-case.olymp.innopolis.university/generate"`
	LLMSystemPrompt string        `env:"LLM_SYSTEM_PROMPT" envDefault:"You are a helpful assistant."`
	LLMMaxTokens    int           `env:"LLM_MAX_TOKENS" envDefault:"2000"`
	LLMTemperature  float64       `env:"LLM_TEMPERATURE" envDefault:"0.3"`
	LLMTimeout      time.Duration `env:"LLM_TIMEOUT" envDefault:"2m"`
	LLMCacheSize    int           `env:"LLM_CACHE_SIZE" envDefault:"0"`
	MaxPromptLength int           `env:"MAX_PROMPT_LENGTH" envDefault:"20000"`
	RedisAddr       string        `env:"REDIS_ADDR"`
	RedisPassword   string        `env:"REDIS_PASSWORD"`
	RedisDB         int           `env:"REDIS_DB" envDefault:"0"`
	RunLockTTL      time.Duration `env:"RUN_LOCK_TTL" envDefault:"15m"`
	APIJWTSecret    string        `env:"API_JWT_SECRET"`
	APITokenTTL     time.Duration `env:"API_TOKEN_TTL" envDefault:"24h"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
