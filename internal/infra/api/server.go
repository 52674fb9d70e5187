package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"ghostwriter/internal/config"
	"ghostwriter/internal/usecase"
)

// Deps are the use cases and collaborators the HTTP layer serves.
// Limiter may be nil: rate limiting is then off.
type Deps struct {
	Auth        usecase.AuthUseCase
	Suggestions usecase.SuggestionUseCase
	Messages    usecase.MessageUseCase
	Analytics   usecase.AnalyticsUseCase
	Tokens      TokenVerifier
	Limiter     Limiter
	LimiterKey  func(ip string) string
	Providers   []string
}

type Server struct {
	auth        usecase.AuthUseCase
	suggestions usecase.SuggestionUseCase
	messages    usecase.MessageUseCase
	analytics   usecase.AnalyticsUseCase
	tokens      TokenVerifier
	limiter     Limiter
	limiterKey  func(ip string) string
	providers   []string

	cfg     *config.Config
	log     *zerolog.Logger
	started time.Time
	proxies []*net.IPNet
	srv     *http.Server
}

func NewServer(d Deps, cfg *config.Config, logger *zerolog.Logger) *Server {
	l := logger.With().Str("component", "http").Logger()
	key := d.LimiterKey
	if key == nil {
		key = func(ip string) string { return "rate_limit:api:" + ip }
	}
	s := &Server{
		auth:        d.Auth,
		suggestions: d.Suggestions,
		messages:    d.Messages,
		analytics:   d.Analytics,
		tokens:      d.Tokens,
		limiter:     d.Limiter,
		limiterKey:  key,
		providers:   d.Providers,
		cfg:         cfg,
		log:         &l,
		started:     time.Now(),
	}
	proxies, err := config.ParseTrustedProxies(cfg.Server.TrustedProxies)
	if err != nil {
		// validated at load; a hand-built config falls back to no proxies
		l.Warn().Err(err).Msg("ignoring server.trusted_proxies")
	}
	s.proxies = proxies
	s.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Router builds the chi mux with the full middleware chain.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(ClientIP(s.proxies))
	r.Use(TraceID())
	r.Use(Recover(s.log))
	r.Use(RequestLog(s.log))
	r.Use(CORS(s.cfg.Server.CORSOrigins))
	r.Use(Timeout(s.cfg.Server.RequestTimeout))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeFailure(w, http.StatusNotFound, "NOT_FOUND", fmt.Sprintf("Route %s %s not found", r.Method, r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeFailure(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
	})

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		if s.limiter != nil {
			r.Use(RateLimit(s.limiter, s.limiterKey, s.cfg.RateLimit.MaxRequests, s.cfg.RateLimit.Window, s.log))
		} else {
			s.log.Warn().Msg("rate limiting disabled: no redis configured")
		}

		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(Bearer(s.tokens))

			r.Get("/auth/me", s.handleMe)
			r.Post("/auth/logout", s.handleLogout)

			r.Post("/messages/generate-reply", s.handleGenerateReply)
			r.Post("/messages", s.handleSaveMessage)
			r.Get("/messages", s.handleListMessages)
			r.Get("/messages/search", s.handleSearchMessages)
			r.Delete("/messages/{messageId}", s.handleDeleteMessage)

			r.Get("/analytics", s.handleStats)
			r.Get("/analytics/tone-breakdown", s.handleToneBreakdown)
			r.Get("/analytics/cost", s.handleCost)
			r.Get("/analytics/daily", s.handleDaily)
		})

		r.Group(func(r chi.Router) {
			r.Use(AdminKey(s.cfg.Admin.APIKey))
			r.Get("/admin/cache/stats", s.handleCacheStats)
			r.Delete("/admin/cache", s.handleCacheClear)
		})
	})
	return r
}

// Start serves until Shutdown. It returns nil on a clean shutdown.
func (s *Server) Start() error {
	s.log.Info().Int("port", s.cfg.Server.Port).Msg("http server listening")
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
