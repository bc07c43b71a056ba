package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"eventboard/internal/domain"
	"eventboard/internal/metrics"
)

type requestService struct {
	requestRepo    domain.RequestRepository
	userRepo       domain.UserRepository
	eventRepo      domain.EventRepository
	publisher      domain.RequestEventPublisher
	metrics        *metrics.Metrics
	logger         *slog.Logger
	now            func() time.Time
	contextTimeout time.Duration
}

// NewRequestService returns the participation admission service. publisher and
// m may be nil.
func NewRequestService(
	requestRepo domain.RequestRepository,
	userRepo domain.UserRepository,
	eventRepo domain.EventRepository,
	publisher domain.RequestEventPublisher,
	m *metrics.Metrics,
	logger *slog.Logger,
	timeout time.Duration,
) domain.RequestService {
	return &requestService{
		requestRepo:    requestRepo,
		userRepo:       userRepo,
		eventRepo:      eventRepo,
		publisher:      publisher,
		metrics:        m,
		logger:         logger,
		now:            time.Now,
		contextTimeout: timeout,
	}
}

func (s *requestService) ListUserRequests(ctx context.Context, userID int64) ([]*domain.ParticipationRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	reqs, err := s.requestRepo.ListByRequesterID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list user requests: %w", err)
	}
	return reqs, nil
}

func (s *requestService) CreateRequest(ctx context.Context, userID, eventID int64) (*domain.ParticipationRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	var created *domain.ParticipationRequest
	err := s.requestRepo.WithEventLock(ctx, eventID, func(ctx context.Context, tx domain.ParticipationTx, event *domain.Event) error {
		if event.InitiatorID == userID {
			return fmt.Errorf("%w: initiator cannot request participation in own event", domain.ErrConflict)
		}
		if !event.IsPublished() {
			return fmt.Errorf("%w: event is not published", domain.ErrConflict)
		}
		exists, err := tx.HasActiveRequest(ctx, eventID, userID)
		if err != nil {
			return fmt.Errorf("check existing request: %w", err)
		}
		if exists {
			return fmt.Errorf("%w: request already exists", domain.ErrConflict)
		}
		if event.HasLimit() {
			confirmed, err := tx.CountConfirmed(ctx, eventID)
			if err != nil {
				return fmt.Errorf("count confirmed: %w", err)
			}
			if domain.LimitReached(event.ParticipantLimit, confirmed) {
				return fmt.Errorf("%w: participant limit reached", domain.ErrConflict)
			}
		}
		req := domain.NewParticipationRequest(eventID, userID,
			domain.InitialStatus(event.RequestModeration, event.ParticipantLimit), s.now().UTC())
		if err := tx.Create(ctx, req); err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		created = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.AddDecisions(string(created.Status), 1)
	s.publish(ctx, created)
	return created, nil
}

func (s *requestService) CancelRequest(ctx context.Context, userID, requestID int64) (*domain.ParticipationRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	req, changed, err := s.requestRepo.Cancel(ctx, requestID, userID)
	if err != nil {
		return nil, fmt.Errorf("cancel request: %w", err)
	}
	if changed {
		s.metrics.AddDecisions(string(req.Status), 1)
		s.publish(ctx, req)
	}
	return req, nil
}

func (s *requestService) ListEventRequests(ctx context.Context, organizerID, eventID int64) ([]*domain.ParticipationRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.eventRepo.GetByIDAndInitiator(ctx, eventID, organizerID); err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	reqs, err := s.requestRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list event requests: %w", err)
	}
	return reqs, nil
}

func (s *requestService) UpdateRequestStatus(ctx context.Context, organizerID, eventID int64, requestIDs []int64, status domain.RequestStatus) (*domain.StatusUpdateResult, error) {
	if status != domain.RequestStatusConfirmed && status != domain.RequestStatusRejected {
		return nil, fmt.Errorf("%w: status must be CONFIRMED or REJECTED", domain.ErrBadRequest)
	}
	ids := domain.DedupeIDs(requestIDs)
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: requestIds must not be empty", domain.ErrBadRequest)
	}

	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	result := &domain.StatusUpdateResult{
		ConfirmedRequests: []*domain.ParticipationRequest{},
		RejectedRequests:  []*domain.ParticipationRequest{},
	}
	err := s.requestRepo.WithEventLock(ctx, eventID, func(ctx context.Context, tx domain.ParticipationTx, event *domain.Event) error {
		if event.InitiatorID != organizerID {
			return fmt.Errorf("get event: %w", domain.ErrNotFound)
		}
		batch, err := s.loadPendingBatch(ctx, tx, eventID, ids)
		if err != nil {
			return err
		}

		var admitted, rejected []*domain.ParticipationRequest
		if status == domain.RequestStatusConfirmed {
			confirmed, err := tx.CountConfirmed(ctx, eventID)
			if err != nil {
				return fmt.Errorf("count confirmed: %w", err)
			}
			admitted, rejected, err = domain.AdmitBatch(event.ParticipantLimit, confirmed, batch)
			if err != nil {
				return err
			}
		} else {
			rejected = batch
		}

		if err := tx.SetStatus(ctx, requestIDsOf(admitted), domain.RequestStatusConfirmed); err != nil {
			return fmt.Errorf("confirm requests: %w", err)
		}
		if err := tx.SetStatus(ctx, requestIDsOf(rejected), domain.RequestStatusRejected); err != nil {
			return fmt.Errorf("reject requests: %w", err)
		}
		for _, r := range admitted {
			r.Status = domain.RequestStatusConfirmed
			result.ConfirmedRequests = append(result.ConfirmedRequests, r)
		}
		for _, r := range rejected {
			r.Status = domain.RequestStatusRejected
			result.RejectedRequests = append(result.RejectedRequests, r)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.AddDecisions(string(domain.RequestStatusConfirmed), len(result.ConfirmedRequests))
	s.metrics.AddDecisions(string(domain.RequestStatusRejected), len(result.RejectedRequests))
	s.publish(ctx, append(result.ConfirmedRequests, result.RejectedRequests...)...)
	return result, nil
}

// loadPendingBatch locks the requests and returns them in ids order. Every id
// must name a PENDING request of eventID.
func (s *requestService) loadPendingBatch(ctx context.Context, tx domain.ParticipationTx, eventID int64, ids []int64) ([]*domain.ParticipationRequest, error) {
	found, err := tx.ListByIDsForUpdate(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load requests: %w", err)
	}
	byID := make(map[int64]*domain.ParticipationRequest, len(found))
	for _, r := range found {
		byID[r.ID] = r
	}
	batch := make([]*domain.ParticipationRequest, 0, len(ids))
	for _, id := range ids {
		r, ok := byID[id]
		if !ok || r.EventID != eventID {
			return nil, fmt.Errorf("%w: request %d not found", domain.ErrNotFound, id)
		}
		if r.Status != domain.RequestStatusPending {
			return nil, fmt.Errorf("%w: request %d is not pending", domain.ErrConflict, id)
		}
		batch = append(batch, r)
	}
	return batch, nil
}

// publish sends committed status changes. Failures are logged only.
func (s *requestService) publish(ctx context.Context, reqs ...*domain.ParticipationRequest) {
	if s.publisher == nil || len(reqs) == 0 {
		return
	}
	changedAt := s.now().UTC()
	events := make([]domain.RequestStatusChanged, 0, len(reqs))
	for _, r := range reqs {
		events = append(events, domain.RequestStatusChanged{
			RequestID:   r.ID,
			EventID:     r.EventID,
			RequesterID: r.RequesterID,
			Status:      r.Status,
			ChangedAt:   changedAt,
		})
	}
	if err := s.publisher.PublishStatusChanged(ctx, events); err != nil {
		s.metrics.PublishError()
		s.logger.Warn("publish request status change", "count", len(events), "error", err)
	}
}

func requestIDsOf(reqs []*domain.ParticipationRequest) []int64 {
	ids := make([]int64, 0, len(reqs))
	for _, r := range reqs {
		ids = append(ids, r.ID)
	}
	return ids
}
