package gateway

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/riftforge/moba-server/internal/room"
)

// RouterConfig bundles the dependencies NewRouter needs; kept as a
// struct (rather than positional args) so it stays extensible and
// testable with httptest.NewServer, matching the teacher's pattern.
type RouterConfig struct {
	Manager     *room.Manager
	WS          *WSTransport
	RateLimiter *IPRateLimiter
	CORSOrigins []string
	StartedAt   time.Time
}

// NewRouter builds the HTTP router without opening any listener, so it
// can be driven with httptest.NewServer in tests. When cfg.RateLimiter
// is nil it creates a default limiter, which starts its cleanup
// goroutine.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(metricsMiddleware)

	limiter := cfg.RateLimiter
	if limiter == nil {
		limiter = NewIPRateLimiter(DefaultRateLimitConfig)
	}

	origins := cfg.CORSOrigins
	if origins == nil {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	r.Get("/health", handleHealth(cfg))
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(limiter.Middleware)
		r.Handle("/ws", cfg.WS)
	})

	return r
}

type healthBody struct {
	Status      string `json:"status"`
	Connections int    `json:"connections"`
	Rooms       int    `json:"rooms"`
	UptimeSecs  int64  `json:"uptimeSeconds"`
}

func handleHealth(cfg RouterConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := healthBody{
			Status:      "ok",
			Connections: cfg.WS.Connections(),
			Rooms:       cfg.Manager.RoomCount(),
			UptimeSecs:  int64(time.Since(cfg.StartedAt).Seconds()),
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(body)
	}
}
