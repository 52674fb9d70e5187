package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"ghostwriter/internal/config"
	"ghostwriter/internal/domain/ports/repository"
	"ghostwriter/internal/infra/adapters/llm"
	"ghostwriter/internal/infra/api"
	"ghostwriter/internal/infra/cache"
	"ghostwriter/internal/infra/metrics"
	red "ghostwriter/internal/infra/redis"
	"ghostwriter/internal/infra/security"
	"ghostwriter/internal/infra/tokens"
	"ghostwriter/internal/infra/worker"
	"ghostwriter/internal/usecase"
)

const (
	userCacheTTL    = 10 * time.Minute
	shutdownTimeout = 15 * time.Second
	tokenEncoding   = "cl100k_base"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
}

func runServe(parent context.Context, opts *rootOptions) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	cfg, logger, err := loadConfig(opts, os.Stdout)
	if err != nil {
		return err
	}
	if cfg.Runtime.Dev {
		logger.Warn().Msg("dev mode enabled")
	}
	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	// ---- Database ----
	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.close()
	if st.stats != nil {
		st.stats.Start(ctx)
		defer st.stats.Stop()
	}

	// ---- Redis (optional unless the cache lives there) ----
	var (
		limiter     api.Limiter
		users       = st.users
		suggestions repository.SuggestionCache
	)
	if cfg.Redis.URL != "" {
		rc, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		defer rc.Close()
		limiter = red.NewRateLimiter(rc)
		users = red.NewUserRepoCache(st.users, rc, userCacheTTL, logger)
		if cfg.Cache.Backend == "redis" {
			suggestions = red.NewSuggestionCache(rc, logger)
		}
	} else {
		logger.Warn().Msg("redis not configured; rate limiting disabled")
	}
	if suggestions == nil {
		mc := cache.NewMemoryCache(cfg.Cache.SweepInterval, logger)
		mc.Start(ctx)
		defer mc.Stop()
		suggestions = mc
	}

	// ---- Providers ----
	providers, err := llm.Build(ctx, cfg.LLM, logger)
	if err != nil {
		return err
	}
	if len(providers) == 0 {
		logger.Warn().Msg("no LLM provider enabled; suggestion requests will fail until one is configured")
	}
	estimator := tokens.NewEstimator(tokenEncoding, logger)
	estimator.Start()
	orch := usecase.NewFallbackOrchestrator(providers, usecase.OrchestratorOptions{
		AttemptTimeout:    cfg.LLM.AttemptTimeout,
		GenerationTimeout: cfg.LLM.GenerationTimeout,
		Tokens:            estimator,
	}, logger)

	// ---- Background usage recording ----
	pool := worker.NewPool(cfg.Workers.Usage, logger)
	pool.Start(context.WithoutCancel(ctx))
	defer pool.Stop()

	// ---- Security ----
	tokenSvc, err := security.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.JWTTTL)
	if err != nil {
		return err
	}
	cipher, err := newCipher(cfg)
	if err != nil {
		return err
	}
	if cipher == nil {
		logger.Warn().Msg("security.encryption_key not set; saved messages are stored in plaintext")
	}

	// ---- Use cases ----
	deps := api.Deps{
		Auth:        usecase.NewAuthUseCase(users, 0, logger),
		Suggestions: usecase.NewSuggestionUseCase(suggestions, orch, usecase.NewUsageRecorder(st.usage), pool, cfg.Cache.TTL, logger, cfg.Runtime.Dev),
		Messages:    usecase.NewMessageUseCase(st.messages, users, st.tm, cipher, logger),
		Analytics:   usecase.NewAnalyticsUseCase(st.usage),
		Tokens:      tokenSvc,
		Limiter:     limiter,
		LimiterKey:  red.ClientKey,
		Providers:   orch.Providers(),
	}
	srv := api.NewServer(deps, cfg, logger)

	errc := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			errc <- err
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigc)
	select {
	case sig := <-sigc:
		logger.Info().Str("signal", sig.String()).Msg("shutdown requested")
	case err := <-errc:
		logger.Error().Err(err).Msg("http server failed")
		return err
	case <-ctx.Done():
	}

	sctx, scancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer scancel()
	if err := srv.Shutdown(sctx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	// flush queued usage events while the database is still open
	pool.Stop()
	return nil
}

// newCipher returns nil when no encryption key is configured.
func newCipher(cfg *config.Config) (usecase.Cipher, error) {
	if cfg.Security.EncryptionKey == "" {
		return nil, nil
	}
	c, err := security.NewMessageCipher(cfg.Security.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("encryption: %w", err)
	}
	return c, nil
}
