package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"manhack-sim/internal/config"
	"manhack-sim/internal/game"
	"manhack-sim/internal/logging"
	"manhack-sim/internal/rendercache"
	"manhack-sim/internal/sound"
	"manhack-sim/internal/storage"
	"manhack-sim/internal/vecmath"
	"manhack-sim/internal/weapon"
)

// EngineInterface defines the engine methods used by the API.
// This interface enables mocking for tests without spinning up the tick loop.
// Keep this minimal - only include methods the API layer actually calls.
type EngineInterface interface {
	// GetSnapshot returns the latest lock-free immutable snapshot
	GetSnapshot() *game.GameSnapshot

	Weapons() []game.WeaponSnapshot
	Weapon(id string) (game.WeaponSnapshot, error)
	AddWeapon(opts game.WeaponOptions) (game.WeaponSnapshot, error)
	RemoveWeapon(id string) error

	SetInput(id string, buttons weapon.Buttons) error
	SetAim(id string, eyes vecmath.QAngle) error
	Reload(id string) (bool, error)
	FireNPCVolley(id string, evt weapon.AnimEventType, count int) (int, error)

	Save(ctx context.Context, id, name string) (storage.Record, error)
	Restore(ctx context.Context, recordID, target string) (game.WeaponSnapshot, error)
	Saves(ctx context.Context, weaponID string) ([]storage.Record, error)
	DeleteSave(ctx context.Context, recordID string) error

	Manhacks() []game.Manhack
	Shots(weaponID string) []game.Shot
	Events(n int, weaponID string) []game.Event
	GetEventLogStats() map[string]interface{}
	Sounds() *sound.Registry
}

// RouterConfig contains all dependencies needed to construct the HTTP router.
//
// Example usage in tests:
//
//	router := api.NewRouter(api.RouterConfig{
//	    Engine:         game.NewEngine(game.DefaultEngineConfig()),
//	    DisableLogging: true,
//	    RateLimitConfig: &api.RateLimitConfig{
//	        RequestsPerSecond: 1000, // High limit for tests
//	        Burst:             1000,
//	    },
//	})
//	ts := httptest.NewServer(router)
type RouterConfig struct {
	// Engine is the launcher engine (required)
	Engine EngineInterface

	// RateLimiter is an optional pre-configured rate limiter.
	// If nil, a new one will be created using RateLimitConfig.
	RateLimiter *IPRateLimiter

	// RateLimitConfig is only used if RateLimiter is nil. If both are nil,
	// uses DefaultRateLimitConfig.
	RateLimitConfig *RateLimitConfig

	// CORSOrigins is an optional list of allowed CORS origins.
	// If nil, uses config.DefaultServer().CORSOrigins.
	CORSOrigins []string

	// AdminToken guards every mutating route. Empty disables the check.
	AdminToken string

	// Limits caps client allocations. Zero fields use config.DefaultLimits.
	Limits config.ResourceLimits

	// DisableLogging disables the request logger middleware (useful for benchmarks).
	DisableLogging bool

	// Logger receives request logs. The zero value logs nothing.
	Logger zerolog.Logger
}

// routerHandlers holds the handler functions for the router.
type routerHandlers struct {
	engine EngineInterface
	limits config.ResourceLimits
	log    zerolog.Logger
	wavs   *rendercache.Cache
}

func withDefaults(l config.ResourceLimits) config.ResourceLimits {
	d := config.DefaultLimits()
	if l.MaxWeapons <= 0 {
		l.MaxWeapons = d.MaxWeapons
	}
	if l.MaxWSConnections <= 0 {
		l.MaxWSConnections = d.MaxWSConnections
	}
	if l.MaxWSPerIP <= 0 {
		l.MaxWSPerIP = d.MaxWSPerIP
	}
	if l.MaxSpreadSamples <= 0 {
		l.MaxSpreadSamples = d.MaxSpreadSamples
	}
	return l
}

// NewRouter constructs the HTTP router with all middleware and routes.
//
// IMPORTANT: This function is PURE apart from the rate limiter's cleanup
// goroutine, which only runs when RateLimiter is nil. Pass a limiter and
// stop it yourself when that matters.
//
// Example:
//
//	router := api.NewRouter(cfg)
//	ts := httptest.NewServer(router)
//	defer ts.Close()
//	resp, _ := http.Get(ts.URL + "/api/state")
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	log := cfg.Logger
	if cfg.DisableLogging {
		log = logging.Nop()
	}

	// Middleware - Order matters!
	r.Use(middleware.RequestID)
	if !cfg.DisableLogging {
		r.Use(requestLogger(logging.Component(log, "http")))
	}
	r.Use(middleware.Recoverer)

	// Rate limiting (BEFORE CORS to reject early and save CPU)
	rateLimiter := cfg.RateLimiter
	if rateLimiter == nil {
		rateLimitCfg := DefaultRateLimitConfig
		if cfg.RateLimitConfig != nil {
			rateLimitCfg = *cfg.RateLimitConfig
		}
		rateLimiter = NewIPRateLimiter(rateLimitCfg)
	}
	r.Use(rateLimiter.Middleware)

	corsOrigins := cfg.CORSOrigins
	if corsOrigins == nil {
		corsOrigins = config.DefaultServer().CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	h := &routerHandlers{
		engine: cfg.Engine,
		limits: withDefaults(cfg.Limits),
		log:    logging.Component(log, "api"),
		wavs:   rendercache.New(0, 0),
	}
	auth := NewTokenAuth(cfg.AdminToken)

	r.Route("/api", func(r chi.Router) {
		r.Use(metricsMiddleware)

		r.Get("/state", h.handleGetState)
		r.Get("/presets", h.handleGetPresets)
		r.Get("/auth", auth.handleStatus)

		r.Get("/weapons", h.handleListWeapons)
		r.With(auth.Middleware).Post("/weapons", h.handleAddWeapon)

		r.Route("/weapons/{id}", func(r chi.Router) {
			r.Get("/", h.handleGetWeapon)
			r.Get("/spread", h.handleSpread)
			r.Get("/spread.png", h.handleSpreadPNG)
			r.Get("/shots", h.handleShots)
			r.Get("/saves", h.handleListSaves)

			r.Group(func(r chi.Router) {
				r.Use(auth.Middleware)
				r.Delete("/", h.handleRemoveWeapon)
				r.Post("/input", h.handleInput)
				r.Post("/aim", h.handleAim)
				r.Post("/reload", h.handleReload)
				r.Post("/npc-fire", h.handleNPCFire)
				r.Post("/save", h.handleSave)
				r.Post("/restore", h.handleRestore)
			})
		})

		r.With(auth.Middleware).Delete("/saves/{record}", h.handleDeleteSave)

		r.Get("/manhacks", h.handleManhacks)
		r.Get("/events", h.handleEvents)
		r.Get("/sounds", h.handleListSounds)
		r.Get("/sounds/{name}", h.handleSoundWAV)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}

// requestLogger logs one line per request through zerolog.
func requestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("took", time.Since(start)).
				Str("request_id", middleware.GetReqID(r.Context())).
				Msg("request")
		})
	}
}

// metricsMiddleware records latency by route pattern so that weapon ids do
// not become label values.
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		pattern := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			pattern = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		RecordRequest(r.Method, pattern, status, time.Since(start))
	})
}
