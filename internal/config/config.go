package config

import (
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort       string `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL    string `env:"DATABASE_URL,required"`
	MigrateOnStart bool   `env:"MIGRATE_ON_START" envDefault:"false"`

	HumanticAPIKey         string `env:"HUMANTIC_API_KEY,required,notEmpty"`
	HumanticBaseURL        string `env:"HUMANTIC_BASE_URL" envDefault:"https://api.humantic.ai/v1"`
	HumanticPersona        string `env:"HUMANTIC_PERSONA" envDefault:"true"`
	HumanticTimeoutSeconds int    `env:"HUMANTIC_TIMEOUT_SECONDS" envDefault:"30"`

	LLMAPIKey         string `env:"LLM_API_KEY,required,notEmpty"`
	LLMBaseURL        string `env:"LLM_BASE_URL" envDefault:"https://generativelanguage.googleapis.com/v1beta/openai"`
	LLMModel          string `env:"LLM_MODEL" envDefault:"gemini-2.5-flash"`
	LLMTimeoutSeconds int    `env:"LLM_TIMEOUT_SECONDS" envDefault:"60"`

	CacheExpiryDays        int `env:"CACHE_EXPIRY_DAYS" envDefault:"30"`
	ProcessingDelaySeconds int `env:"PROCESSING_DELAY_SECONDS" envDefault:"35"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	ForceRefreshWindowMinutes int `env:"FORCE_REFRESH_WINDOW_MINUTES" envDefault:"60"`
	ForceRefreshMax           int `env:"FORCE_REFRESH_MAX" envDefault:"3"`

	AdminJWTSecret string `env:"ADMIN_JWT_SECRET"`
	AdminJWTIssuer string `env:"ADMIN_JWT_ISSUER" envDefault:"insight-profile"`

	CORSOrigins    []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://localhost:3002"`
	LogDevelopment bool     `env:"LOG_DEVELOPMENT" envDefault:"false"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	cfg.CORSOrigins = trimAll(cfg.CORSOrigins)
	return &cfg, nil
}

// CacheExpiry es la ventana de validez de un perfil cacheado.
func (c *Config) CacheExpiry() time.Duration {
	return time.Duration(c.CacheExpiryDays) * 24 * time.Hour
}

// ProcessingDelay es la espera fija entre crear y leer el perfil en el proveedor.
func (c *Config) ProcessingDelay() time.Duration {
	return time.Duration(c.ProcessingDelaySeconds) * time.Second
}

func (c *Config) HumanticTimeout() time.Duration {
	return time.Duration(c.HumanticTimeoutSeconds) * time.Second
}

func (c *Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLMTimeoutSeconds) * time.Second
}

func (c *Config) ForceRefreshWindow() time.Duration {
	return time.Duration(c.ForceRefreshWindowMinutes) * time.Minute
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
