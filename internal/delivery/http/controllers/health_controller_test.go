package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthController_Health(t *testing.T) {
	up := PingFunc(func(ctx context.Context) error { return nil })
	down := PingFunc(func(ctx context.Context) error { return errors.New("dial tcp: connection refused") })

	tests := []struct {
		name       string
		pingers    map[string]Pinger
		wantStatus int
		wantDown   bool
	}{
		{"no dependencies", nil, http.StatusOK, false},
		{"all up", map[string]Pinger{"postgres": up}, http.StatusOK, false},
		{"one down", map[string]Pinger{"postgres": up, "stats": down}, http.StatusServiceUnavailable, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewHealthController(testLogger, tt.pingers)
			rec := httptest.NewRecorder()

			ctrl.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			resp := decodeEnvelope(t, rec)
			if tt.wantDown {
				require.NotNil(t, resp.Error)
				data, ok := resp.Data.(map[string]any)
				require.True(t, ok)
				assert.Equal(t, "down", data["stats"])
				assert.Equal(t, "up", data["postgres"])
				return
			}
			assert.Nil(t, resp.Error)
		})
	}
}
