package api

import (
	"errors"
	"net"
	"net/http"
	"net/http/pprof"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"manhack-sim/internal/config"
	"manhack-sim/internal/game"
)

// Metrics with bounded cardinality (no per-weapon labels to prevent DoS)
var (
	tickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "manhack_tick_duration_seconds",
		Help:    "Time spent stepping every launcher once",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
	})

	liveManhacks = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "manhack_live_entities",
		Help: "Manhacks currently in the world",
	})

	weaponCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "manhack_weapon_count",
		Help: "Launchers hosted by the engine",
	})

	// Bounded: "throw", "dry_fire", "reload", "spawn_failed", "npc_shot"
	weaponEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "manhack_weapon_events_total",
		Help: "Launcher events by kind",
	}, []string{"kind"})

	eventLogTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "manhack_event_log_accepted",
		Help: "Events accepted by the event log since start",
	})

	eventLogDropped = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "manhack_event_log_dropped",
		Help: "Events dropped due to rate limiting or buffer full",
	})

	// Bounded: "rate_limit", "unauthorized", "origin", "ws_total_limit", "ws_ip_limit"
	connectionRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "connection_rejected_total",
		Help: "Connections rejected by rate limiter, auth or origin check",
	}, []string{"reason"})

	requestLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "endpoint"}) // endpoint is the chi route pattern

	requestTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "endpoint", "status"})

	wsConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "websocket_connections_active",
		Help: "Currently active WebSocket connections",
	})

	wsMessagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "websocket_messages_total",
		Help: "Total WebSocket messages sent",
	})
)

// ObservabilityConfig configures the debug server
type ObservabilityConfig struct {
	Enabled       bool
	ListenAddr    string // must be a loopback address unless ALLOW_DEBUG_EXTERNAL=true
	BasicAuthUser string // Optional basic auth
	BasicAuthPass string
}

// DefaultObservabilityConfig returns safe defaults
func DefaultObservabilityConfig() ObservabilityConfig {
	d := config.DefaultDebug()
	return ObservabilityConfig{Enabled: d.Enabled, ListenAddr: d.ListenAddr}
}

// ObservabilityFromConfig maps the debug section of the app config.
// Basic auth credentials come from DEBUG_USER and DEBUG_PASS.
func ObservabilityFromConfig(d config.DebugConfig) ObservabilityConfig {
	return ObservabilityConfig{
		Enabled:       d.Enabled,
		ListenAddr:    d.ListenAddr,
		BasicAuthUser: os.Getenv("DEBUG_USER"),
		BasicAuthPass: os.Getenv("DEBUG_PASS"),
	}
}

// isLoopback reports whether addr binds to localhost only.
func isLoopback(addr string) bool {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return false
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// DebugHandler serves pprof, /metrics and /health.
func DebugHandler(cfg ObservabilityConfig) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	if cfg.BasicAuthUser != "" {
		return basicAuthMiddleware(cfg.BasicAuthUser, cfg.BasicAuthPass, mux)
	}
	return mux
}

// StartDebugServer starts the internal observability server in the
// background. It returns nil when disabled; otherwise the caller shuts the
// returned server down.
func StartDebugServer(cfg ObservabilityConfig, logger zerolog.Logger) *http.Server {
	log := logger.With().Str("component", "debug").Logger()
	if !cfg.Enabled {
		log.Info().Msg("📊 debug server disabled")
		return nil
	}

	if !isLoopback(cfg.ListenAddr) && os.Getenv("ALLOW_DEBUG_EXTERNAL") != "true" {
		log.Warn().Str("requested", cfg.ListenAddr).Msg("⚠️ debug server forced to localhost")
		cfg.ListenAddr = DefaultObservabilityConfig().ListenAddr
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           DebugHandler(cfg),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().
			Str("pprof", "http://"+cfg.ListenAddr+"/debug/pprof/").
			Str("metrics", "http://"+cfg.ListenAddr+"/metrics").
			Msg("📊 debug server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("⚠️ debug server error")
		}
	}()

	return srv
}

func basicAuthMiddleware(user, pass string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || u != user || p != pass {
			w.Header().Set("WWW-Authenticate", `Basic realm="debug"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// MetricsHooks returns engine hooks that feed the weapon counters. The
// extra hooks run after the metrics; pass a zero Hooks to add none.
func MetricsHooks(extra game.Hooks) game.Hooks {
	count := func(kind string, next func(string)) func(string) {
		c := weaponEvents.WithLabelValues(kind)
		return func(id string) {
			c.Inc()
			if next != nil {
				next(id)
			}
		}
	}
	return game.Hooks{
		OnThrow:       count("throw", extra.OnThrow),
		OnDryFire:     count("dry_fire", extra.OnDryFire),
		OnReload:      count("reload", extra.OnReload),
		OnSpawnFailed: count("spawn_failed", extra.OnSpawnFailed),
		OnNPCShot:     count("npc_shot", extra.OnNPCShot),
		OnTick: func(d time.Duration, live int) {
			RecordTick(d)
			UpdateLiveManhacks(live)
			if extra.OnTick != nil {
				extra.OnTick(d, live)
			}
		},
	}
}

// RecordTick records tick timing for metrics
func RecordTick(duration time.Duration) {
	tickDuration.Observe(duration.Seconds())
}

// UpdateLiveManhacks sets the live entity gauge
func UpdateLiveManhacks(count int) {
	liveManhacks.Set(float64(count))
}

// UpdateWeaponCount sets the launcher gauge
func UpdateWeaponCount(count int) {
	weaponCount.Set(float64(count))
}

// UpdateEventLogStats mirrors the event log counters into gauges.
func UpdateEventLogStats(total, dropped uint64) {
	eventLogTotal.Set(float64(total))
	eventLogDropped.Set(float64(dropped))
}

// RecordConnectionRejected increments the rejection counter
func RecordConnectionRejected(reason string) {
	connectionRejected.WithLabelValues(reason).Inc()
}

// RecordRequest records HTTP request metrics
func RecordRequest(method, endpoint string, status int, duration time.Duration) {
	requestLatency.WithLabelValues(method, endpoint).Observe(duration.Seconds())
	requestTotal.WithLabelValues(method, endpoint, http.StatusText(status)).Inc()
}

// UpdateWSConnections updates WebSocket connection count
func UpdateWSConnections(count int) {
	wsConnectionsActive.Set(float64(count))
}

// IncrementWSMessages increments WebSocket message counter
func IncrementWSMessages() {
	wsMessagesTotal.Inc()
}
