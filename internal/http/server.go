package http

import (
	"context"
	stdhttp "net/http"
	"time"

	"github.com/mlbahja/01-blog/internal/auth"
	"github.com/mlbahja/01-blog/internal/http/handler"
	"github.com/mlbahja/01-blog/internal/http/middleware"
	"github.com/mlbahja/01-blog/internal/metrics"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
)

const (
	jsonKeyStatus      = "status"
	statusOK           = "ok"
	statusUnavailable  = "unavailable"
	requestBodyLimit   = "1M"
	healthCheckTimeout = 2 * time.Second
	corsMaxAge         = 600
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type ServerDependencies struct {
	Logger zerolog.Logger

	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	RequestAuthenticator *auth.RequestAuthenticator
	Policy               *auth.Policy
	Authenticator        handler.Authenticator
	Users                handler.UserGetter
	Admin                handler.UserAdministrator

	// Health is optional; when nil /health only reports process liveness.
	Health Pinger

	// Metrics is optional; when set, /admin/metrics serves its snapshot.
	Metrics         *metrics.Collector
	EnableProfiling bool

	// CORSAllowedOrigins are the browser origins answered by the CORS middleware.
	CORSAllowedOrigins []string
	// TrustProxy reads the client IP from X-Forwarded-For; otherwise the socket peer is used.
	TrustProxy         bool

	// Rate limiters default to the global and strict presets when nil.
	GlobalRateLimiter *middleware.RateLimiter
	StrictRateLimiter *middleware.RateLimiter
}

type Server struct {
	echo *echo.Echo
	deps *ServerDependencies
}

func NewServer(deps *ServerDependencies) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.HTTPErrorHandler = NewErrorHandler(deps.Logger)

	e.Server.ReadTimeout = deps.ReadTimeout
	e.Server.WriteTimeout = deps.WriteTimeout

	if deps.TrustProxy {
		e.IPExtractor = echo.ExtractIPFromXFFHeader()
	} else {
		e.IPExtractor = echo.ExtractIPDirect()
	}

	globalRateLimiter := deps.GlobalRateLimiter
	if globalRateLimiter == nil {
		globalRateLimiter = middleware.NewGlobalRateLimiter()
	}
	strictRateLimiter := deps.StrictRateLimiter
	if strictRateLimiter == nil {
		strictRateLimiter = middleware.NewStrictRateLimiter()
	}

	// Request ID middleware (first, so all logs have request ID)
	e.Use(middleware.RequestID())
	e.Use(middleware.SecurityHeaders())
	// Preflight requests carry no token, so CORS answers them before Authenticate.
	// An empty origin list disables CORS instead of falling back to echo's wildcard.
	if len(deps.CORSAllowedOrigins) > 0 {
		e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
			AllowOrigins: deps.CORSAllowedOrigins,
			AllowMethods: []string{
				stdhttp.MethodGet, stdhttp.MethodPost, stdhttp.MethodPut,
				stdhttp.MethodDelete, stdhttp.MethodOptions,
			},
			AllowHeaders: []string{
				echo.HeaderAuthorization, echo.HeaderContentType, echo.HeaderXRequestID,
			},
			ExposeHeaders: []string{echo.HeaderXRequestID, echo.HeaderRetryAfter},
			MaxAge:        corsMaxAge,
		}))
	}
	if deps.Metrics != nil {
		e.Use(deps.Metrics.Middleware())
	}
	e.Use(middleware.RequestLogger(deps.Logger))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.BodyLimit(requestBodyLimit))

	// Ban enforcement happens inside Authenticate, before any route policy.
	e.Use(deps.RequestAuthenticator.Authenticate())
	e.Use(globalRateLimiter.Middleware())
	e.Use(deps.Policy.Enforce())

	authHandler := handler.NewAuthHandler(deps.Authenticator, deps.Users, deps.Logger)
	adminHandler := handler.NewAdminHandler(deps.Admin)

	e.GET("/health", healthCheck(deps.Health))

	// Credential endpoints with strict rate limiting
	e.POST("/auth/register", authHandler.Register, strictRateLimiter.Middleware())
	e.POST("/auth/login", authHandler.Login, strictRateLimiter.Middleware())

	me := e.Group("/auth/users/me")
	me.GET("", authHandler.Me)
	me.PUT("/password", authHandler.ChangePassword, strictRateLimiter.Middleware())
	e.GET("/auth/users/:id", authHandler.Profile)
	e.DELETE("/auth/users/:id", adminHandler.DeleteAccount)

	adminAPI := e.Group("/admin")
	adminAPI.GET("/users", adminHandler.ListUsers)
	adminAPI.PUT("/users/:id/ban", adminHandler.BanUser)
	adminAPI.PUT("/users/:id/unban", adminHandler.UnbanUser)
	adminAPI.PUT("/users/:id/role", adminHandler.ChangeRole)
	adminAPI.DELETE("/users/:id", adminHandler.DeleteUser)

	if deps.Metrics != nil {
		adminAPI.GET("/metrics", deps.Metrics.Handler())
	}
	if deps.EnableProfiling {
		metrics.RegisterPprofRoutes(adminAPI.Group("/debug/pprof"))
	}

	return &Server{
		echo: e,
		deps: deps,
	}
}

// Echo exposes the router so collaborators can mount content routes behind the same middleware chain.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func healthCheck(pinger Pinger) echo.HandlerFunc {
	return func(c echo.Context) error {
		if pinger != nil {
			ctx, cancel := context.WithTimeout(c.Request().Context(), healthCheckTimeout)
			defer cancel()
			if err := pinger.Ping(ctx); err != nil {
				return c.JSON(stdhttp.StatusServiceUnavailable, map[string]string{
					jsonKeyStatus: statusUnavailable,
				})
			}
		}
		return c.JSON(stdhttp.StatusOK, map[string]string{
			jsonKeyStatus: statusOK,
		})
	}
}
