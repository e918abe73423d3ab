package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Billing backends.
const (
	BackendPostgREST = "postgrest"
	BackendPostgres  = "postgres"
	BackendMemory    = "memory"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	LLM       LLMConfig       `yaml:"llm"`
	Supabase  SupabaseConfig  `yaml:"supabase"`
	Billing   BillingConfig   `yaml:"billing"`
	ViewState ViewStateConfig `yaml:"viewState"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string        `yaml:"address"`
	ReadTimeout    time.Duration `yaml:"readTimeout"`
	WriteTimeout   time.Duration `yaml:"writeTimeout"`
	AllowedOrigins []string      `yaml:"allowedOrigins"`
}

// LLMConfig contains OpenAI chat completion settings.
type LLMConfig struct {
	APIKey    string        `yaml:"apiKey"`
	ProjectID string        `yaml:"projectId"`
	BaseURL   string        `yaml:"baseUrl"`
	Timeout   time.Duration `yaml:"timeout"`
}

// SupabaseConfig points at the hosted auth and data project.
type SupabaseConfig struct {
	URL       string        `yaml:"url"`
	AnonKey   string        `yaml:"anonKey"`
	JWTSecret string        `yaml:"jwtSecret"`
	Timeout   time.Duration `yaml:"timeout"`
}

// BillingConfig selects where billing rows come from and how hikes are judged.
type BillingConfig struct {
	Backend                  string         `yaml:"backend"`
	Table                    string         `yaml:"table"`
	RequireConsecutiveMonths bool           `yaml:"requireConsecutiveMonths"`
	Postgres                 PostgresConfig `yaml:"postgres"`
	Memory                   MemoryConfig   `yaml:"memory"`
}

// MemoryConfig points the in-process backend at a YAML file of billing rows.
type MemoryConfig struct {
	SeedFile string `yaml:"seedFile"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// ViewStateConfig controls where view generations live.
type ViewStateConfig struct {
	Redis RedisConfig   `yaml:"redis"`
	TTL   time.Duration `yaml:"ttl"`
}

// RedisConfig contains connection information for the Valkey store.
type RedisConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// Load reads configuration from .env, a YAML file and environment variables,
// in that order of increasing precedence.
func Load() (*Config, error) {
	cfg := defaultConfig()

	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("HTTP_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	if v := firstEnv("LLM_API_KEY", "OPENAI_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := firstEnv("LLM_PROJECT_ID", "OPENAI_PROJECT_ID"); v != "" {
		cfg.LLM.ProjectID = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("LLM_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.LLM.Timeout = parsed
		}
	}
	if v := os.Getenv("SUPABASE_URL"); v != "" {
		cfg.Supabase.URL = v
	}
	if v := os.Getenv("SUPABASE_ANON_KEY"); v != "" {
		cfg.Supabase.AnonKey = v
	}
	if v := os.Getenv("SUPABASE_JWT_SECRET"); v != "" {
		cfg.Supabase.JWTSecret = v
	}
	if v := os.Getenv("BILLING_BACKEND"); v != "" {
		cfg.Billing.Backend = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv("BILLING_TABLE"); v != "" {
		cfg.Billing.Table = v
	}
	if v := os.Getenv("BILLING_REQUIRE_CONSECUTIVE_MONTHS"); v != "" {
		cfg.Billing.RequireConsecutiveMonths = parseBool(v)
	}
	if v := os.Getenv("BILLING_MEMORY_SEED_FILE"); v != "" {
		cfg.Billing.Memory.SeedFile = v
	}
	if v := os.Getenv("BILLING_POSTGRES_DSN"); v != "" {
		cfg.Billing.Postgres.DSN = v
	}
	if v := os.Getenv("BILLING_POSTGRES_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Billing.Postgres.MaxConns = int32(parsed)
		}
	}
	if v := os.Getenv("BILLING_POSTGRES_MIN_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Billing.Postgres.MinConns = int32(parsed)
		}
	}
	if v := os.Getenv("VIEWSTATE_REDIS_ENABLED"); v != "" {
		cfg.ViewState.Redis.Enabled = parseBool(v)
	}
	if v := os.Getenv("VIEWSTATE_REDIS_ADDR"); v != "" {
		cfg.ViewState.Redis.Addr = v
	}
	if v := os.Getenv("VIEWSTATE_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.ViewState.TTL = parsed
		}
	}
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 75 * time.Second,
		},
		LLM: LLMConfig{
			Timeout: 60 * time.Second,
		},
		Supabase: SupabaseConfig{
			Timeout: 10 * time.Second,
		},
		Billing: BillingConfig{
			Backend: BackendPostgREST,
			Table:   "monthly_billing_summary",
			Postgres: PostgresConfig{
				MaxConns: 4,
			},
		},
		ViewState: ViewStateConfig{
			TTL: 24 * time.Hour,
		},
	}
}

// Validate ensures the configuration is safe to use. Missing OpenAI
// credentials are rejected here rather than at the first hike.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if strings.TrimSpace(c.LLM.APIKey) == "" {
		return errors.New("llm.apiKey cannot be empty")
	}
	if strings.TrimSpace(c.LLM.ProjectID) == "" {
		return errors.New("llm.projectId cannot be empty")
	}
	if c.LLM.Timeout < 0 {
		return errors.New("llm.timeout cannot be negative")
	}
	remoteAuth := strings.TrimSpace(c.Supabase.URL) != "" && strings.TrimSpace(c.Supabase.AnonKey) != ""
	if !remoteAuth && strings.TrimSpace(c.Supabase.JWTSecret) == "" {
		return errors.New("supabase.jwtSecret or supabase.url with supabase.anonKey is required to identify users")
	}
	switch c.Billing.Backend {
	case BackendPostgREST:
		if strings.TrimSpace(c.Supabase.URL) == "" || strings.TrimSpace(c.Supabase.AnonKey) == "" {
			return errors.New("supabase.url and supabase.anonKey are required for the postgrest backend")
		}
	case BackendPostgres:
		if strings.TrimSpace(c.Billing.Postgres.DSN) == "" {
			return errors.New("billing.postgres.dsn is required for the postgres backend")
		}
	case BackendMemory:
		if strings.TrimSpace(c.Billing.Memory.SeedFile) == "" {
			return errors.New("billing.memory.seedFile is required for the memory backend")
		}
	default:
		return fmt.Errorf("billing.backend %q is not one of postgrest, postgres, memory", c.Billing.Backend)
	}
	if c.ViewState.Redis.Enabled && strings.TrimSpace(c.ViewState.Redis.Addr) == "" {
		return errors.New("viewState.redis.addr cannot be empty when redis is enabled")
	}
	if c.ViewState.TTL < 0 {
		return errors.New("viewState.ttl cannot be negative")
	}
	return nil
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}

func parseBool(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if clean := strings.TrimSpace(part); clean != "" {
			out = append(out, clean)
		}
	}
	return out
}
