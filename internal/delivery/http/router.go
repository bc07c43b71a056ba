package http

import (
	"log/slog"
	"net/http"

	"eventboard/internal/delivery/http/controllers"
	"eventboard/internal/delivery/http/middleware"
	"eventboard/internal/metrics"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

// RouterOptions carries the cross-cutting pieces shared by both services.
type RouterOptions struct {
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
	Gatherer       prometheus.Gatherer
	AllowedOrigins []string
}

// NewRouter initializes the main service router with all application routes.
func NewRouter(
	requestController *controllers.RequestController,
	eventController *controllers.EventController,
	healthController *controllers.HealthController,
	opts RouterOptions,
) http.Handler {
	mux := http.NewServeMux()

	// Participation requests
	mux.HandleFunc("GET /users/{userId}/requests", requestController.ListUserRequests)
	mux.HandleFunc("POST /users/{userId}/requests", requestController.CreateRequest)
	mux.HandleFunc("PATCH /users/{userId}/requests/{requestId}/cancel", requestController.CancelRequest)
	mux.HandleFunc("GET /users/{userId}/events/{eventId}/requests", requestController.ListEventRequests)
	mux.HandleFunc("PATCH /users/{userId}/events/{eventId}/requests", requestController.UpdateRequestStatus)

	// Public catalog
	mux.HandleFunc("GET /events", eventController.ListEvents)
	mux.HandleFunc("GET /events/{id}", eventController.GetEvent)

	mux.HandleFunc("GET /health", healthController.Health)
	mux.Handle("GET /metrics", metricsHandler(opts.Gatherer))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return wrap(mux, opts)
}

// NewStatsRouter initializes the stats service router.
func NewStatsRouter(
	statsController *controllers.StatsController,
	healthController *controllers.HealthController,
	opts RouterOptions,
) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /hit", statsController.SaveHit)
	mux.HandleFunc("GET /stats", statsController.GetStats)

	mux.HandleFunc("GET /health", healthController.Health)
	mux.Handle("GET /metrics", metricsHandler(opts.Gatherer))

	return wrap(mux, opts)
}

func metricsHandler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// wrap applies the middleware chain, outermost first: panic recovery,
// request id, real ip, access log, CORS, then route metrics around the mux.
func wrap(mux *http.ServeMux, opts RouterOptions) http.Handler {
	var h http.Handler = mux
	h = middleware.Metrics(opts.Metrics, h)
	h = middleware.CORS(opts.AllowedOrigins, h)
	h = middleware.LoggingMiddleware(opts.Logger, h)
	h = chimiddleware.RealIP(h)
	h = chimiddleware.RequestID(h)
	h = chimiddleware.Recoverer(h)
	return h
}
