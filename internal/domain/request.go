package domain

import (
	"context"
	"fmt"
	"time"
)

// RequestStatus is the state of a participation request.
type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "PENDING"
	RequestStatusConfirmed RequestStatus = "CONFIRMED"
	RequestStatusRejected  RequestStatus = "REJECTED"
	RequestStatusCanceled  RequestStatus = "CANCELED"
)

// ParseRequestStatus parses s into a RequestStatus.
func ParseRequestStatus(s string) (RequestStatus, error) {
	switch st := RequestStatus(s); st {
	case RequestStatusPending, RequestStatusConfirmed, RequestStatusRejected, RequestStatusCanceled:
		return st, nil
	}
	return "", fmt.Errorf("%w: unknown request status %q", ErrBadRequest, s)
}

// ParticipationRequest is a user's request to attend an event.
// swagger:model ParticipationRequest
type ParticipationRequest struct {
	ID          int64         `json:"id"`
	EventID     int64         `json:"event"`
	RequesterID int64         `json:"requester"`
	Status      RequestStatus `json:"status"`
	Created     time.Time     `json:"created"`
}

// NewParticipationRequest returns a request in the given status. ID is set by the repository on create.
func NewParticipationRequest(eventID, requesterID int64, status RequestStatus, created time.Time) *ParticipationRequest {
	return &ParticipationRequest{
		EventID:     eventID,
		RequesterID: requesterID,
		Status:      status,
		Created:     created,
	}
}

// InitialStatus decides the status of a new request. Requests are confirmed
// immediately when the organizer does not moderate or the event has no limit.
func InitialStatus(requestModeration bool, participantLimit int) RequestStatus {
	if !requestModeration || participantLimit == 0 {
		return RequestStatusConfirmed
	}
	return RequestStatusPending
}

// LimitReached reports whether confirmed has used up limit. A limit of zero never fills.
func LimitReached(limit int, confirmed int64) bool {
	return limit > 0 && confirmed >= int64(limit)
}

// AdmitBatch splits pending requests between confirmed and rejected. Seats left
// under limit go to requests in slice order; the overflow is rejected. It fails
// with ErrConflict when no seat is left before the batch starts.
func AdmitBatch(limit int, confirmed int64, reqs []*ParticipationRequest) (admitted, rejected []*ParticipationRequest, err error) {
	if LimitReached(limit, confirmed) {
		return nil, nil, fmt.Errorf("%w: participant limit already reached", ErrConflict)
	}
	admitted = make([]*ParticipationRequest, 0, len(reqs))
	rejected = make([]*ParticipationRequest, 0)
	for _, r := range reqs {
		if LimitReached(limit, confirmed) {
			rejected = append(rejected, r)
			continue
		}
		admitted = append(admitted, r)
		confirmed++
	}
	return admitted, rejected, nil
}

// DedupeIDs removes repeated ids, keeping the first occurrence and the input order.
func DedupeIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// StatusUpdateResult is the outcome of a bulk status change.
// swagger:model StatusUpdateResult
type StatusUpdateResult struct {
	ConfirmedRequests []*ParticipationRequest `json:"confirmedRequests"`
	RejectedRequests  []*ParticipationRequest `json:"rejectedRequests"`
}

// ParticipationTx is the view of the request store inside an event-scoped transaction.
type ParticipationTx interface {
	CountConfirmed(ctx context.Context, eventID int64) (int64, error)
	HasActiveRequest(ctx context.Context, eventID, requesterID int64) (bool, error)
	Create(ctx context.Context, req *ParticipationRequest) error
	// ListByIDsForUpdate returns the requests with the given ids and locks their rows.
	ListByIDsForUpdate(ctx context.Context, ids []int64) ([]*ParticipationRequest, error)
	SetStatus(ctx context.Context, ids []int64, status RequestStatus) error
}

// RequestRepository defines storage operations for participation requests.
type RequestRepository interface {
	// WithEventLock runs fn in a transaction that holds an exclusive lock on the
	// event row. fn receives the locked event; returning an error rolls back.
	// ErrNotFound is returned when the event does not exist.
	WithEventLock(ctx context.Context, eventID int64, fn func(ctx context.Context, tx ParticipationTx, event *Event) error) error
	ListByRequesterID(ctx context.Context, requesterID int64) ([]*ParticipationRequest, error)
	ListByEventID(ctx context.Context, eventID int64) ([]*ParticipationRequest, error)
	// Cancel moves the requester's own request to CANCELED and returns it.
	// changed is false when the request was already CANCELED.
	Cancel(ctx context.Context, requestID, requesterID int64) (req *ParticipationRequest, changed bool, err error)
	CountConfirmedByEventIDs(ctx context.Context, eventIDs []int64) (map[int64]int64, error)
}

// RequestService defines the participation admission operations.
type RequestService interface {
	ListUserRequests(ctx context.Context, userID int64) ([]*ParticipationRequest, error)
	CreateRequest(ctx context.Context, userID, eventID int64) (*ParticipationRequest, error)
	CancelRequest(ctx context.Context, userID, requestID int64) (*ParticipationRequest, error)
	ListEventRequests(ctx context.Context, organizerID, eventID int64) ([]*ParticipationRequest, error)
	UpdateRequestStatus(ctx context.Context, organizerID, eventID int64, requestIDs []int64, status RequestStatus) (*StatusUpdateResult, error)
}
