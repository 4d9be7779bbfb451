package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/dig"

	"github.com/davidbz/quizforge/internal/provider/openai"
)

// Config represents the service configuration, read once at startup.
type Config struct {
	Server     ServerConfig
	CORS       CORSConfig
	OpenAI     openai.Config
	Generation GenerationConfig
	Quota      QuotaConfig
	Redis      RedisConfig
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port         int `env:"SERVER_PORT"          envDefault:"8080"`
	ReadTimeout  int `env:"SERVER_READ_TIMEOUT"  envDefault:"30"`
	// WriteTimeout must stay above the provider timeout or responses for
	// slow completions get cut off mid-write.
	WriteTimeout int `env:"SERVER_WRITE_TIMEOUT" envDefault:"90"`
}

// CORSConfig contains CORS policy settings.
type CORSConfig struct {
	AllowedOrigins   []string `env:"CORS_ALLOWED_ORIGINS"   envSeparator:"," envDefault:"*"`
	AllowedMethods   []string `env:"CORS_ALLOWED_METHODS"   envSeparator:"," envDefault:"GET,POST,PUT,DELETE,OPTIONS"`
	AllowedHeaders   []string `env:"CORS_ALLOWED_HEADERS"   envSeparator:"," envDefault:"Content-Type,Authorization,X-User-Id"`
	AllowCredentials bool     `env:"CORS_ALLOW_CREDENTIALS"                  envDefault:"true"`
	MaxAge           int      `env:"CORS_MAX_AGE"                            envDefault:"86400"`
}

// GenerationConfig contains the process-wide generation defaults.
type GenerationConfig struct {
	Provider    string  `env:"PROVIDER"               envDefault:"openai"`
	Model       string  `env:"GENERATION_MODEL"       envDefault:"gpt-4-turbo"`
	Temperature float64 `env:"GENERATION_TEMPERATURE" envDefault:"0.7"`
	MaxTokens   int     `env:"GENERATION_MAX_TOKENS"  envDefault:"2048"`
}

// QuotaConfig contains the lifetime generation quota settings.
type QuotaConfig struct {
	Limit               int  `env:"QUOTA_LIMIT"           envDefault:"2"`
	UsageLoggingEnabled bool `env:"USAGE_LOGGING_ENABLED" envDefault:"true"`
}

// RedisConfig contains Redis connection settings for the usage log store.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB"   envDefault:"0"`
}

// DepConfig is used for dependency injection with dig.
type DepConfig struct {
	dig.Out
	*ServerConfig
	*CORSConfig
	*openai.Config
	*GenerationConfig
	*QuotaConfig
	*RedisConfig
}

// Load loads environment files and parses configuration.
func Load() *Config {
	for _, file := range []string{".env"} {
		_ = godotenv.Load(file)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		panic(err)
	}

	return &cfg
}

// ParseDependenciesConfig returns pointers to sub-configs for dependency injection.
func ParseDependenciesConfig(cfg *Config) DepConfig {
	return DepConfig{
		dig.Out{},
		&cfg.Server,
		&cfg.CORS,
		&cfg.OpenAI,
		&cfg.Generation,
		&cfg.Quota,
		&cfg.Redis,
	}
}
