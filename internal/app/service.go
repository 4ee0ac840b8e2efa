package app

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/mlbahja/01-blog/internal/config"
	apphttp "github.com/mlbahja/01-blog/internal/http"
	"github.com/mlbahja/01-blog/internal/infra/cache"
	"github.com/mlbahja/01-blog/internal/repository/postgres"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const counterCleanupInterval = 5 * time.Minute

// Service represents the running blog service
type Service struct {
	config        *config.Config
	db            *postgres.DB
	redis         *redis.Client
	memoryCounter *cache.MemoryLoginCounter
	server        *apphttp.Server
	logger        zerolog.Logger

	// mu guards the background task state; Start and Shutdown run on different goroutines.
	mu          sync.Mutex
	stopped     bool
	stopCleanup context.CancelFunc
	cleanupDone chan struct{}
}

// Start starts background tasks and blocks serving HTTP.
// It returns http.ErrServerClosed if Shutdown already ran.
func (s *Service) Start() error {
	if !s.startBackground(counterCleanupInterval) {
		return http.ErrServerClosed
	}

	s.logger.Info().Str("port", s.config.Server.Port).Msg("starting blog service")
	return s.server.Start(":" + s.config.Server.Port)
}

// startBackground launches the counter cleanup at most once and reports false after Shutdown.
func (s *Service) startBackground(interval time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return false
	}
	if s.memoryCounter == nil || s.stopCleanup != nil {
		return true
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	s.stopCleanup, s.cleanupDone = cancel, done

	go func() {
		defer close(done)
		s.runCounterCleanup(ctx, interval)
	}()
	return true
}

// runCounterCleanup drops expired in-memory login counters until ctx is done
func (s *Service) runCounterCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.memoryCounter.Clear()
		case <-ctx.Done():
			return
		}
	}
}

// stopBackground is idempotent and waits for the cleanup goroutine to exit.
func (s *Service) stopBackground() {
	s.mu.Lock()
	s.stopped = true
	cancel, done := s.stopCleanup, s.cleanupDone
	s.stopCleanup, s.cleanupDone = nil, nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

// Shutdown gracefully shuts down the server and releases connections
func (s *Service) Shutdown(ctx context.Context) error {
	s.stopBackground()
	err := s.server.Shutdown(ctx)
	s.close()
	return err
}

func (s *Service) close() {
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to close redis client")
		}
	}
	if s.db != nil {
		s.db.Close()
	}
}
