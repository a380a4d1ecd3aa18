package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arkham_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "arkham_http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// GameSessionsCreated counts sessions opened by hosts
	GameSessionsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arkham_game_sessions_created_total",
		Help: "Total number of game sessions created.",
	})

	// PlayersJoined counts players seated in any session, hosts included
	PlayersJoined = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arkham_players_joined_total",
		Help: "Total number of players that joined a game session.",
	})

	// PhaseChanges counts phase transitions by direction
	PhaseChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arkham_phase_changes_total",
			Help: "Total number of game phase changes.",
		},
		[]string{"direction"},
	)

	// NotificationsDropped counts push messages discarded because a buffer was full
	NotificationsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arkham_notifications_dropped_total",
		Help: "Total number of push notifications dropped.",
	})
)

// Handler exposes the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}

// statusRecorder captures the status code written by the next handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Middleware records request counts and latencies labelled by route template
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		route := routeTemplate(r)
		httpRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		httpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
	})
}

// routeTemplate returns the matched mux path template; only valid inside router.Use middleware
func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}
