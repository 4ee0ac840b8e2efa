package app

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/mlbahja/01-blog/internal/auth"
	"github.com/mlbahja/01-blog/internal/config"
	apphttp "github.com/mlbahja/01-blog/internal/http"
	"github.com/mlbahja/01-blog/internal/infra/cache"
	"github.com/mlbahja/01-blog/internal/rbac"
	"github.com/mlbahja/01-blog/internal/rbac/presets"
	"github.com/mlbahja/01-blog/internal/repository/memory"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	codec, err := auth.NewTokenCodec("k3Jv9QzP1xLm8TrWc4YbN6sHd2GfA7Ue", time.Hour, "blog-test")
	require.NoError(t, err)
	roles := rbac.MustNew(presets.Blog())
	policy, err := auth.NewPolicy(auth.DefaultRules(), roles)
	require.NoError(t, err)
	store := memory.NewUserRepository()

	server := apphttp.NewServer(&apphttp.ServerDependencies{
		Logger:               zerolog.Nop(),
		RequestAuthenticator: auth.NewRequestAuthenticator(codec, store, nil, zerolog.Nop()),
		Policy:               policy,
		Users:                store,
	})

	return &Service{
		config:        &config.Config{Server: config.ServerConfig{Port: "0"}},
		memoryCounter: cache.NewMemoryLoginCounter(5, time.Minute),
		server:        server,
		logger:        zerolog.Nop(),
	}
}

func (s *Service) cleanupRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopCleanup != nil
}

func TestStartThenShutdownStopsCleanup(t *testing.T) {
	svc := newTestService(t)

	started := make(chan error, 1)
	go func() {
		started <- svc.Start()
	}()

	require.Eventually(t, svc.cleanupRunning, time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, svc.Shutdown(ctx))

	select {
	case err := <-started:
		assert.ErrorIs(t, err, http.ErrServerClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after Shutdown")
	}
	assert.False(t, svc.cleanupRunning())
}

func TestShutdownBeforeStart(t *testing.T) {
	svc := newTestService(t)

	require.NoError(t, svc.Shutdown(context.Background()))

	assert.ErrorIs(t, svc.Start(), http.ErrServerClosed)
	assert.False(t, svc.cleanupRunning(), "no cleanup goroutine after shutdown")
}

func TestConcurrentStartAndShutdown(t *testing.T) {
	for i := 0; i < 20; i++ {
		svc := newTestService(t)

		started := make(chan error, 1)
		go func() {
			started <- svc.Start()
		}()

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		_ = svc.Shutdown(ctx)
		cancel()

		select {
		case err := <-started:
			assert.ErrorIs(t, err, http.ErrServerClosed)
		case <-time.After(2 * time.Second):
			t.Fatal("Start did not return after Shutdown")
		}
		assert.False(t, svc.cleanupRunning())
	}
}

func TestCounterCleanupIsStartedOnce(t *testing.T) {
	svc := newTestService(t)

	require.True(t, svc.startBackground(time.Hour))
	first := svc.cleanupDone
	require.True(t, svc.startBackground(time.Hour))
	assert.Equal(t, first, svc.cleanupDone)

	svc.stopBackground()
	svc.stopBackground()
	assert.False(t, svc.startBackground(time.Hour))

	select {
	case <-first:
	default:
		t.Fatal("cleanup goroutine still running")
	}
}
