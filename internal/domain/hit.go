package domain

import (
	"context"
	"fmt"
	"time"
)

// StatsTimeLayout is the textual timestamp format of the stats wire contract (yyyy-MM-dd HH:mm:ss).
const StatsTimeLayout = "2006-01-02 15:04:05"

// EndpointHit is one recorded page view.
// swagger:model EndpointHit
type EndpointHit struct {
	ID        int64     `json:"id"`
	App       string    `json:"app"`
	URI       string    `json:"uri"`
	IP        string    `json:"ip"`
	Timestamp time.Time `json:"timestamp"`
}

// NewEndpointHit returns a hit for the given visit. ID is set by the repository on create.
func NewEndpointHit(app, uri, ip string, ts time.Time) *EndpointHit {
	return &EndpointHit{
		App:       app,
		URI:       uri,
		IP:        ip,
		Timestamp: ts,
	}
}

// ViewStats is the hit count of one (app, uri) group.
// swagger:model ViewStats
type ViewStats struct {
	App  string `json:"app"`
	URI  string `json:"uri"`
	Hits int64  `json:"hits"`
}

// StatsQuery selects hits with Start <= timestamp <= End. An empty URIs slice
// matches every uri. Unique counts distinct ips instead of rows.
type StatsQuery struct {
	Start  time.Time
	End    time.Time
	URIs   []string
	Unique bool
}

// HitRepository is the append-only hit store.
type HitRepository interface {
	Create(ctx context.Context, hit *EndpointHit) error
	// Stats returns grouped counts ordered by hits descending.
	Stats(ctx context.Context, q StatsQuery) ([]*ViewStats, error)
}

// StatsService records hits and answers aggregate queries.
type StatsService interface {
	SaveHit(ctx context.Context, hit *EndpointHit) (*EndpointHit, error)
	GetStats(ctx context.Context, q StatsQuery) ([]*ViewStats, error)
}

// StatsClient is the main service's view of the remote stats service.
type StatsClient interface {
	SaveHit(ctx context.Context, hit *EndpointHit) error
	GetStats(ctx context.Context, q StatsQuery) ([]*ViewStats, error)
}

// HitPayload is the wire form of EndpointHit. Timestamp uses StatsTimeLayout in UTC.
// swagger:model HitPayload
type HitPayload struct {
	ID        int64  `json:"id,omitempty"`
	App       string `json:"app"`
	URI       string `json:"uri"`
	IP        string `json:"ip"`
	Timestamp string `json:"timestamp"`
}

// NewHitPayload converts hit to its wire form.
func NewHitPayload(hit *EndpointHit) HitPayload {
	return HitPayload{
		ID:        hit.ID,
		App:       hit.App,
		URI:       hit.URI,
		IP:        hit.IP,
		Timestamp: FormatStatsTime(hit.Timestamp),
	}
}

// Hit parses the payload. A malformed timestamp yields ErrBadRequest; an empty
// one is left zero for the caller to reject.
func (p HitPayload) Hit() (*EndpointHit, error) {
	hit := &EndpointHit{ID: p.ID, App: p.App, URI: p.URI, IP: p.IP}
	if p.Timestamp != "" {
		ts, err := ParseStatsTime(p.Timestamp)
		if err != nil {
			return nil, err
		}
		hit.Timestamp = ts
	}
	return hit, nil
}

// FormatStatsTime formats t in StatsTimeLayout, in UTC.
func FormatStatsTime(t time.Time) string {
	return t.UTC().Format(StatsTimeLayout)
}

// ParseStatsTime parses s in StatsTimeLayout as UTC.
func ParseStatsTime(s string) (time.Time, error) {
	t, err := time.ParseInLocation(StatsTimeLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: timestamp %q must match yyyy-MM-dd HH:mm:ss", ErrBadRequest, s)
	}
	return t, nil
}
