package app

import (
	"context"
	"fmt"

	"github.com/mlbahja/01-blog/internal/admin"
	"github.com/mlbahja/01-blog/internal/audit"
	"github.com/mlbahja/01-blog/internal/auth"
	"github.com/mlbahja/01-blog/internal/config"
	apphttp "github.com/mlbahja/01-blog/internal/http"
	"github.com/mlbahja/01-blog/internal/infra/cache"
	"github.com/mlbahja/01-blog/internal/metrics"
	"github.com/mlbahja/01-blog/internal/rbac"
	"github.com/mlbahja/01-blog/internal/rbac/presets"
	"github.com/mlbahja/01-blog/internal/repository/postgres"
	"github.com/mlbahja/01-blog/pkg/password"

	"github.com/rs/zerolog"
)

// InitializeService wires up all dependencies and returns a configured Service
func InitializeService(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*Service, error) {
	db, err := postgres.New(ctx, &cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	logger.Info().Msg("database connection established")

	svc := &Service{config: cfg, db: db, logger: logger}

	throttle, err := svc.loginThrottle(ctx)
	if err != nil {
		svc.close()
		return nil, err
	}

	hasher, err := password.New(cfg.Password.Algorithm, cfg.Password.BcryptCost)
	if err != nil {
		svc.close()
		return nil, fmt.Errorf("failed to create password hasher: %w", err)
	}

	tokens, err := auth.NewTokenCodec(cfg.JWT.Secret, cfg.JWT.ExpiryDuration, cfg.JWT.Issuer)
	if err != nil {
		svc.close()
		return nil, fmt.Errorf("failed to create token codec: %w", err)
	}

	roles := rbac.MustNew(presets.Blog())

	policy, err := buildPolicy(cfg.Policy, roles)
	if err != nil {
		svc.close()
		return nil, err
	}

	collector := metrics.NewCollector()
	recorder := audit.Multi{
		audit.NewPostgresRecorder(db.Pool),
		audit.NewLogRecorder(logger),
		collector,
	}

	users := postgres.NewUserRepository(db)

	authenticator, err := auth.NewAuthenticator(users, hasher, tokens,
		auth.WithThrottle(throttle),
		auth.WithRecorder(recorder),
		auth.WithLogger(logger),
	)
	if err != nil {
		svc.close()
		return nil, fmt.Errorf("failed to create authenticator: %w", err)
	}

	svc.server = apphttp.NewServer(&apphttp.ServerDependencies{
		Logger:               logger,
		ReadTimeout:          cfg.Server.ReadTimeout,
		WriteTimeout:         cfg.Server.WriteTimeout,
		RequestAuthenticator: auth.NewRequestAuthenticator(tokens, users, recorder, logger),
		Policy:               policy,
		Authenticator:        authenticator,
		Users:                users,
		Admin:                admin.NewService(users, roles, recorder, logger),
		Health:               db,
		Metrics:              collector,
		EnableProfiling:      cfg.Server.EnableProfiling,
		CORSAllowedOrigins:   cfg.Server.CORSAllowedOrigins,
		TrustProxy:           cfg.Server.TrustProxy,
	})

	return svc, nil
}

// loginThrottle uses Redis when REDIS_URL is set and an in-process counter otherwise.
func (s *Service) loginThrottle(ctx context.Context) (auth.LoginThrottle, error) {
	login := s.config.Login
	if s.config.Redis.URL == "" {
		s.logger.Warn().Msg("REDIS_URL not set, login throttle is per process")
		s.memoryCounter = cache.NewMemoryLoginCounter(login.MaxAttempts, login.LockoutWindow)
		return s.memoryCounter, nil
	}

	client, err := cache.NewRedisClient(ctx, s.config.Redis.URL)
	if err != nil {
		return nil, err
	}
	s.redis = client
	s.logger.Info().Msg("redis connection established")
	return cache.NewRedisLoginCounter(client, login.MaxAttempts, login.LockoutWindow), nil
}

func buildPolicy(cfg config.PolicyConfig, roles *rbac.Checker) (*auth.Policy, error) {
	rules := auth.DefaultRules()
	if cfg.File != "" {
		loaded, err := auth.LoadRules(cfg.File)
		if err != nil {
			return nil, err
		}
		rules = loaded
	}

	policy, err := auth.NewPolicy(rules, roles)
	if err != nil {
		return nil, fmt.Errorf("failed to build access policy: %w", err)
	}
	return policy, nil
}
