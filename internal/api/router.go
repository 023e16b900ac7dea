package api

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/skybrief/skybrief/internal/briefing"
	"github.com/skybrief/skybrief/internal/config"
	"github.com/skybrief/skybrief/internal/runways"
	"github.com/skybrief/skybrief/internal/storage/sqlite"
	"github.com/skybrief/skybrief/internal/weather"
	"github.com/skybrief/skybrief/internal/websocket"
	"github.com/skybrief/skybrief/pkg/logger"
	"github.com/skybrief/skybrief/pkg/metrics"
	"golang.org/x/time/rate"
)

// Router wires the HTTP API together
type Router struct {
	handler  *Handler
	config   *config.Config
	logger   *logger.Logger
	metrics  *metrics.Collector
	wsServer *websocket.Server
	limiter  *clientLimiter
}

// NewRouter creates a new API router
func NewRouter(
	weatherService *weather.Service,
	briefingService *briefing.Service,
	runwaysService *runways.Service,
	storage *sqlite.ReportStorage,
	cfg *config.Config,
	log *logger.Logger,
	wsServer *websocket.Server,
	collector *metrics.Collector,
) *Router {
	var limiter *clientLimiter
	if cfg.Server.RateLimitPerSecond > 0 {
		limiter = newClientLimiter(rate.Limit(cfg.Server.RateLimitPerSecond), cfg.Server.RateLimitBurst)
	}

	return &Router{
		handler:  NewHandler(weatherService, briefingService, runwaysService, storage, cfg, log, wsServer, collector),
		config:   cfg,
		logger:   log.Named("api-router"),
		metrics:  collector,
		wsServer: wsServer,
		limiter:  limiter,
	}
}

// Routes returns the configured HTTP handler
func (rt *Router) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(rt.corsMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		if rt.limiter != nil {
			r.Use(rt.rateLimitMiddleware)
		}
		r.Use(rt.metricsMiddleware)

		r.Get("/weather", rt.handler.GetWeather)
		r.Post("/weather/refresh", rt.handler.RefreshWeather)
		r.Get("/notams", rt.handler.GetNOTAMs)
		r.Post("/decode", rt.handler.DecodeReport)
		r.Get("/runways", rt.handler.GetRunways)
		r.Get("/runways/wind", rt.handler.GetRunwayWinds)
		r.Post("/airspace/layout", rt.handler.ComputeAirspaceLayout)
		r.Get("/history/reports", rt.handler.GetReportHistory)
		r.Get("/history/notams", rt.handler.GetNOTAMHistory)
		r.Get("/briefing", rt.handler.GetBriefing)
		r.Get("/station", rt.handler.GetStation)
		r.Get("/health", rt.handler.GetHealth)
	})

	r.Get("/ws", rt.wsServer.HandleConnection)
	r.Handle("/metrics", promhttp.Handler())

	// Everything else is the map viewer frontend
	static := NewStaticFileHandler(rt.config.Server.StaticFilesDir, rt.logger)
	r.NotFound(static.ServeHTTP)

	return r
}

// corsMiddleware applies the configured CORS policy
func (rt *Router) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && rt.originAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (rt *Router) originAllowed(origin string) bool {
	for _, allowed := range rt.config.Server.CORSAllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

// metricsMiddleware records request counts and durations
func (rt *Router) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rt.metrics == nil {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		endpoint := r.URL.Path
		if routePath := chi.RouteContext(r.Context()).RoutePattern(); routePath != "" {
			endpoint = routePath
		}
		rt.metrics.RecordAPIRequest(endpoint, r.Method, strconv.Itoa(ww.Status()))
		rt.metrics.ObserveAPIRequest(endpoint, time.Since(start))
	})
}

// rateLimitMiddleware enforces the per-client request rate limit
func (rt *Router) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rt.limiter.allow(clientKey(r)) {
			rt.logger.Warn("Rate limit exceeded",
				logger.String("remote_addr", r.RemoteAddr),
				logger.String("path", r.URL.Path))
			WriteError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// clientLimiter tracks a token bucket per client address
type clientLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientBucket
	limit   rate.Limit
	burst   int
	ttl     time.Duration
}

type clientBucket struct {
	limiter *rate.Limiter
	seen    time.Time
}

func newClientLimiter(limit rate.Limit, burst int) *clientLimiter {
	l := &clientLimiter{
		clients: make(map[string]*clientBucket),
		limit:   limit,
		burst:   burst,
		ttl:     10 * time.Minute,
	}
	go l.cleanup()
	return l
}

func (l *clientLimiter) allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	bucket, ok := l.clients[key]
	if !ok {
		bucket = &clientBucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[key] = bucket
	}
	bucket.seen = time.Now()
	return bucket.limiter.Allow()
}

// cleanup drops buckets for clients that have gone quiet
func (l *clientLimiter) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		l.mu.Lock()
		for key, bucket := range l.clients {
			if time.Since(bucket.seen) > l.ttl {
				delete(l.clients, key)
			}
		}
		l.mu.Unlock()
	}
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

// WriteError writes a JSON error response
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]string{"error": message})
}
