package domain

import (
	"context"
	"time"
)

// EventView is a published event annotated with its confirmed participants and views.
// swagger:model EventView
type EventView struct {
	*Event
	ConfirmedRequests int64 `json:"confirmedRequests"`
	Views             int64 `json:"views"`
}

// Visit identifies the public page view being served, for hit recording.
type Visit struct {
	IP  string
	URI string
}

// ViewCache memoizes per-event view counts. Implementations must be safe for
// concurrent use; misses are reported with ok == false.
type ViewCache interface {
	Get(ctx context.Context, eventID int64) (views int64, ok bool, err error)
	Set(ctx context.Context, eventID int64, views int64, ttl time.Duration) error
}

// CatalogService serves the public event catalog.
type CatalogService interface {
	ListEvents(ctx context.Context, filter EventFilter, visit Visit) ([]*EventView, error)
	GetEvent(ctx context.Context, id int64, visit Visit) (*EventView, error)
}
