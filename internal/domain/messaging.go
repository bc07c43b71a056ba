package domain

import (
	"context"
	"time"
)

// RequestStatusChanged is published after a participation request changes status.
type RequestStatusChanged struct {
	RequestID   int64         `json:"request_id"`
	EventID     int64         `json:"event_id"`
	RequesterID int64         `json:"requester_id"`
	Status      RequestStatus `json:"status"`
	ChangedAt   time.Time     `json:"changed_at"`
}

// RequestEventPublisher publishes committed request status changes. Delivery is
// best effort: callers log failures and carry on.
type RequestEventPublisher interface {
	PublishStatusChanged(ctx context.Context, events []RequestStatusChanged) error
}

// RequestEventHandler consumes request status changes.
type RequestEventHandler interface {
	HandleStatusChanged(ctx context.Context, event RequestStatusChanged) error
}
