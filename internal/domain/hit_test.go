package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHitPayload_Hit(t *testing.T) {
	hit, err := HitPayload{App: "app", URI: "/events/1", IP: "10.0.0.1", Timestamp: "2025-05-01 10:30:00"}.Hit()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 5, 1, 10, 30, 0, 0, time.UTC), hit.Timestamp)
	assert.Equal(t, "/events/1", hit.URI)

	hit, err = HitPayload{App: "app"}.Hit()
	require.NoError(t, err)
	assert.True(t, hit.Timestamp.IsZero())

	_, err = HitPayload{Timestamp: "2025-05-01T10:30:00Z"}.Hit()
	assert.ErrorIs(t, err, ErrBadRequest)
}

func TestNewHitPayload(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	p := NewHitPayload(NewEndpointHit("app", "/events", "1.2.3.4", time.Date(2025, 5, 1, 13, 0, 0, 0, loc)))
	assert.Equal(t, "2025-05-01 10:00:00", p.Timestamp)
	assert.Zero(t, p.ID)
}

func TestEventURI(t *testing.T) {
	assert.Equal(t, "/events/42", EventURI(42))
	assert.Equal(t, "/events/7", (&Event{ID: 7}).URI())
}
