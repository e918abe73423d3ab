package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/billing-dashboard/internal/domain/auth"
	"github.com/yanqian/billing-dashboard/internal/domain/billing"
	"github.com/yanqian/billing-dashboard/internal/infra/billingrepo"
	"github.com/yanqian/billing-dashboard/internal/infra/config"
	"github.com/yanqian/billing-dashboard/internal/infra/llm/chatgpt"
	"github.com/yanqian/billing-dashboard/internal/infra/supabase"
	"github.com/yanqian/billing-dashboard/internal/infra/viewstate"
)

func provideBillingConfig(cfg *config.Config) billing.Config {
	return billing.Config{
		RequireConsecutiveMonths: cfg.Billing.RequireConsecutiveMonths,
	}
}

func provideAuthConfig(cfg *config.Config) auth.Config {
	return auth.Config{
		SupabaseURL: cfg.Supabase.URL,
		JWTSecret:   cfg.Supabase.JWTSecret,
		Leeway:      30 * time.Second,
	}
}

func provideChatGPTClient(cfg *config.Config) (*chatgpt.Client, error) {
	return chatgpt.NewClient(chatgpt.Config{
		APIKey:    cfg.LLM.APIKey,
		ProjectID: cfg.LLM.ProjectID,
		BaseURL:   cfg.LLM.BaseURL,
		Timeout:   cfg.LLM.Timeout,
	})
}

// provideSupabaseClient returns nil when the project has no public key; local
// JWT verification then stands alone.
func provideSupabaseClient(cfg *config.Config, logger *slog.Logger) (*supabase.Client, error) {
	if strings.TrimSpace(cfg.Supabase.URL) == "" || strings.TrimSpace(cfg.Supabase.AnonKey) == "" {
		logger.Info("supabase gateway not configured, remote user lookup disabled")
		return nil, nil
	}
	return supabase.NewClient(supabase.Config{
		URL:     cfg.Supabase.URL,
		AnonKey: cfg.Supabase.AnonKey,
		Table:   cfg.Billing.Table,
		Timeout: cfg.Supabase.Timeout,
	})
}

func provideRemoteLookup(client *supabase.Client) auth.RemoteLookup {
	if client == nil {
		return nil
	}
	return client
}

func provideBillingRepository(cfg *config.Config, client *supabase.Client, logger *slog.Logger) (billing.Repository, func(), error) {
	noop := func() {}
	switch cfg.Billing.Backend {
	case config.BackendMemory:
		repo, err := billingrepo.NewSeededMemoryRepository(cfg.Billing.Memory.SeedFile)
		if err != nil {
			return nil, noop, err
		}
		logger.Warn("billing memory repository enabled", "seed_file", cfg.Billing.Memory.SeedFile)
		return repo, noop, nil
	case config.BackendPostgres:
		pool, err := newPostgresPool(cfg.Billing.Postgres)
		if err != nil {
			return nil, noop, err
		}
		repo, err := billingrepo.NewPostgresRepository(pool, cfg.Billing.Table)
		if err != nil {
			pool.Close()
			return nil, noop, err
		}
		logger.Info("billing postgres repository enabled")
		return repo, pool.Close, nil
	default:
		logger.Info("billing postgrest repository enabled", "url", cfg.Supabase.URL)
		return client, noop, nil
	}
}

func newPostgresPool(cfg config.PostgresConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(strings.TrimSpace(cfg.DSN))
	if err != nil {
		return nil, err
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolConfig.MinConns = cfg.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

func provideViewTracker(cfg *config.Config, logger *slog.Logger) (billing.ViewTracker, func()) {
	if cfg.ViewState.Redis.Enabled {
		opt, err := buildValkeyOptions(cfg)
		if err != nil {
			logger.Error("invalid valkey configuration, falling back to memory view state", "error", err)
			return viewstate.NewMemoryStore(), func() {}
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			logger.Error("failed to create valkey client, falling back to memory view state", "error", err)
			return viewstate.NewMemoryStore(), func() {}
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			logger.Error("valkey ping failed, falling back to memory view state", "error", err)
			client.Close()
		} else {
			logger.Info("valkey view state enabled", "addr", cfg.ViewState.Redis.Addr)
			return viewstate.NewValkeyStore(client, "billing", cfg.ViewState.TTL), client.Close
		}
	}
	return viewstate.NewMemoryStore(), func() {}
}

func buildValkeyOptions(cfg *config.Config) (valkey.ClientOption, error) {
	if strings.Contains(cfg.ViewState.Redis.Addr, "://") {
		return valkey.ParseURL(cfg.ViewState.Redis.Addr)
	}
	return valkey.ClientOption{InitAddress: []string{cfg.ViewState.Redis.Addr}}, nil
}
