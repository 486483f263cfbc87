package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the gamescout worker process.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Worker   WorkerConfig
	Explain  ExplainConfig
}

type ServerConfig struct {
	Port               int
	Env                string
	RateLimitPerMinute int
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	MigrationsDir   string
}

// RedisConfig is optional. An empty URL disables game caching and rate limiting.
type RedisConfig struct {
	URL          string
	GameCacheTTL time.Duration
}

type WorkerConfig struct {
	ID              string
	PollInterval    time.Duration
	ShutdownTimeout time.Duration
	Concurrency     int
}

type ExplainConfig struct {
	Provider  string
	Timeout   time.Duration
	Ollama    OllamaConfig
	VLLM      VLLMConfig
	OpenAI    OpenAIConfig
	Anthropic AnthropicConfig
}

type OllamaConfig struct {
	BaseURL string
	Model   string
}

type VLLMConfig struct {
	BaseURL string
	Model   string
}

type OpenAIConfig struct {
	BaseURL string
	APIKey  string
	Model   string
}

type AnthropicConfig struct {
	APIKey string
	Model  string
}

var validProviders = map[string]bool{
	"template":  true,
	"ollama":    true,
	"vllm":      true,
	"openai":    true,
	"anthropic": true,
}

// Load reads configuration from environment variables and returns a validated Config.
// Returns an error with a descriptive message if any required value is missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:               envInt("GAMESCOUT_PORT", 8080),
			Env:                envString("GAMESCOUT_ENV", "development"),
			RateLimitPerMinute: envInt("RATE_LIMIT_PER_MINUTE", 120),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 2),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
			MigrationsDir:   envString("MIGRATIONS_DIR", "migrations"),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			GameCacheTTL: envDuration("GAME_CACHE_TTL", time.Hour),
		},
		Worker: WorkerConfig{
			ID:              envString("WORKER_ID", defaultWorkerID()),
			PollInterval:    envDuration("WORKER_POLL_INTERVAL", 2*time.Second),
			ShutdownTimeout: envDuration("WORKER_SHUTDOWN_TIMEOUT", 30*time.Second),
			Concurrency:     envInt("PIPELINE_CONCURRENCY", 8),
		},
		Explain: ExplainConfig{
			Provider: envString("EXPLAIN_PROVIDER", "template"),
			Timeout:  envDurationSecs("EXPLAIN_TIMEOUT_SECS", 10*time.Second),
			Ollama: OllamaConfig{
				BaseURL: envString("OLLAMA_BASE_URL", "http://localhost:11434"),
				Model:   envString("OLLAMA_MODEL", "llama3"),
			},
			VLLM: VLLMConfig{
				BaseURL: envString("VLLM_BASE_URL", "http://localhost:8000"),
				Model:   envString("VLLM_MODEL", ""),
			},
			OpenAI: OpenAIConfig{
				BaseURL: envString("OPENAI_BASE_URL", "https://api.openai.com"),
				APIKey:  os.Getenv("OPENAI_API_KEY"),
				Model:   envString("OPENAI_MODEL", "gpt-4o-mini"),
			},
			Anthropic: AnthropicConfig{
				APIKey: os.Getenv("ANTHROPIC_API_KEY"),
				Model:  envString("ANTHROPIC_MODEL", "claude-3-5-haiku-latest"),
			},
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Redis.URL != "" && !strings.HasPrefix(c.Redis.URL, "redis://") && !strings.HasPrefix(c.Redis.URL, "rediss://") {
		return fmt.Errorf("REDIS_URL must start with redis:// or rediss://, got %q", c.Redis.URL)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("GAMESCOUT_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("DATABASE_MAX_IDLE_CONNS (%d) must not exceed DATABASE_MAX_OPEN_CONNS (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	if c.Worker.Concurrency <= 0 {
		return fmt.Errorf("PIPELINE_CONCURRENCY must be positive, got %d", c.Worker.Concurrency)
	}

	if c.Worker.PollInterval <= 0 {
		return fmt.Errorf("WORKER_POLL_INTERVAL must be positive, got %s", c.Worker.PollInterval)
	}

	if !validProviders[c.Explain.Provider] {
		return fmt.Errorf("EXPLAIN_PROVIDER must be one of template, ollama, vllm, openai, anthropic; got %q", c.Explain.Provider)
	}
	if c.Explain.Provider == "openai" && c.Explain.OpenAI.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required when EXPLAIN_PROVIDER is openai")
	}
	if c.Explain.Provider == "anthropic" && c.Explain.Anthropic.APIKey == "" {
		return fmt.Errorf("ANTHROPIC_API_KEY is required when EXPLAIN_PROVIDER is anthropic")
	}
	if c.Explain.Provider == "vllm" && c.Explain.VLLM.Model == "" {
		return fmt.Errorf("VLLM_MODEL is required when EXPLAIN_PROVIDER is vllm")
	}

	return nil
}

func defaultWorkerID() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "worker"
	}
	return fmt.Sprintf("%s-%d", host, os.Getpid())
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

func envDurationSecs(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	secs, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return time.Duration(secs) * time.Second
}
