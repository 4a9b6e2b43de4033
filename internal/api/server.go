package api

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"manhack-sim/internal/config"
	"manhack-sim/internal/logging"
)

// metricsInterval is how often engine gauges are refreshed.
const metricsInterval = time.Second

// Server is the HTTP API server with WebSocket support.
// It combines the HTTP router with WebSocket hub for real-time updates.
type Server struct {
	engine      EngineInterface
	router      *chi.Mux
	wsHub       *WebSocketHub
	rateLimiter *IPRateLimiter
	log         zerolog.Logger

	mu         sync.Mutex
	httpServer *http.Server

	stopOnce sync.Once
	stop     chan struct{}
}

// NewServer creates a new API server from the application config.
//
// IMPORTANT: Background workers do NOT start until Start() is called, apart
// from the rate limiter cleanup goroutine that Stop releases.
//
// For testing HTTP endpoints without WebSocket support, use NewRouter() directly.
func NewServer(engine EngineInterface, cfg config.AppConfig, logger zerolog.Logger) *Server {
	s := &Server{
		engine:      engine,
		wsHub:       NewWebSocketHub(cfg.Limits, cfg.Server.CORSOrigins, logger),
		rateLimiter: NewIPRateLimiter(RateLimitFromServer(cfg.Server)),
		log:         logging.Component(logger, "server"),
		stop:        make(chan struct{}),
	}

	s.router = NewRouter(RouterConfig{
		Engine:      engine,
		RateLimiter: s.rateLimiter,
		CORSOrigins: cfg.Server.CORSOrigins,
		AdminToken:  cfg.Server.AdminToken,
		Limits:      cfg.Limits,
		Logger:      logger,
	})

	s.router.Get("/ws", s.wsHub.HandleWebSocket)

	if cfg.Server.AdminToken == "" {
		s.log.Warn().Msg("🔓 no admin token configured, mutating routes are open")
	}
	return s
}

// Start starts the background workers and serves on addr until Shutdown.
// It returns nil after a clean shutdown.
func (s *Server) Start(addr string) error {
	go s.wsHub.Run()
	s.wsHub.StartBroadcastLoop(s.engine, BroadcastInterval)
	go s.metricsLoop()

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.mu.Lock()
	s.httpServer = srv
	s.mu.Unlock()

	s.log.Info().Str("addr", addr).Msg("🌐 API server starting")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// metricsLoop copies engine counters into the Prometheus gauges.
func (s *Server) metricsLoop() {
	ticker := time.NewTicker(metricsInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.refreshMetrics()
		}
	}
}

func (s *Server) refreshMetrics() {
	snap := s.engine.GetSnapshot()
	if snap != nil {
		UpdateWeaponCount(len(snap.Weapons))
		UpdateLiveManhacks(snap.LiveManhacks)
	}
	stats := s.engine.GetEventLogStats()
	total, _ := stats["total"].(uint64)
	dropped, _ := stats["dropped"].(uint64)
	UpdateEventLogStats(total, dropped)
}

// Router returns the HTTP handler for use with httptest.
// Use this in integration tests instead of calling Start().
func (s *Server) Router() http.Handler {
	return s.router
}

// Hub returns the WebSocket hub.
func (s *Server) Hub() *WebSocketHub {
	return s.wsHub
}

// Shutdown stops accepting requests, waits for in-flight ones up to the
// context deadline and then stops the background workers.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()

	var err error
	if srv != nil {
		err = srv.Shutdown(ctx)
	}
	s.Stop()
	return err
}

// Stop releases the background workers. It is safe to call more than once.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
		s.rateLimiter.Stop()
		s.wsHub.Stop()
	})
}
