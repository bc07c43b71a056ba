package controllers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"eventboard/internal/delivery/http/helpers"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) PingContext(ctx context.Context) error { return f(ctx) }

type HealthController struct {
	Logger  *slog.Logger
	Pingers map[string]Pinger
	Timeout time.Duration
}

func NewHealthController(logger *slog.Logger, pingers map[string]Pinger) *HealthController {
	return &HealthController{
		Logger:  logger,
		Pingers: pingers,
		Timeout: 2 * time.Second,
	}
}

// Health godoc
// @Summary Liveness and dependency check
// @Tags health
// @Produce json
// @Success 200 {object} helpers.APIResponse
// @Failure 503 {object} helpers.APIResponse
// @Router /health [get]
func (c *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), c.Timeout)
	defer cancel()

	status := map[string]string{}
	healthy := true
	for name, p := range c.Pingers {
		if err := p.PingContext(ctx); err != nil {
			c.Logger.WarnContext(ctx, "health check failed", "dependency", name, "err", err)
			status[name] = "down"
			healthy = false
			continue
		}
		status[name] = "up"
	}
	if !healthy {
		helpers.WriteJSON(w, http.StatusServiceUnavailable, helpers.APIResponse{
			Data:  status,
			Error: &helpers.APIError{Code: "unavailable", Message: "dependency unavailable"},
		})
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, status)
}
