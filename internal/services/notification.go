package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"eventboard/internal/domain"
)

type notificationHandler struct {
	userRepo       domain.UserRepository
	eventRepo      domain.EventRepository
	emailService   domain.EmailService
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewNotificationHandler returns a RequestEventHandler that emails requesters
// about confirmations and rejections. Other status changes are ignored.
func NewNotificationHandler(userRepo domain.UserRepository, eventRepo domain.EventRepository, emailService domain.EmailService, logger *slog.Logger, timeout time.Duration) domain.RequestEventHandler {
	return &notificationHandler{
		userRepo:       userRepo,
		eventRepo:      eventRepo,
		emailService:   emailService,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (h *notificationHandler) HandleStatusChanged(ctx context.Context, ev domain.RequestStatusChanged) error {
	if ev.Status != domain.RequestStatusConfirmed && ev.Status != domain.RequestStatusRejected {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, h.contextTimeout)
	defer cancel()

	user, err := h.userRepo.GetByID(ctx, ev.RequesterID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			h.logger.Warn("skip notification for unknown user", "user_id", ev.RequesterID, "request_id", ev.RequestID)
			return nil
		}
		return fmt.Errorf("get user: %w", err)
	}
	event, err := h.eventRepo.GetByID(ctx, ev.EventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			h.logger.Warn("skip notification for unknown event", "event_id", ev.EventID, "request_id", ev.RequestID)
			return nil
		}
		return fmt.Errorf("get event: %w", err)
	}

	return h.emailService.SendRequestDecision(ctx, &domain.RequestDecisionEmailData{
		Email:      user.Email,
		Name:       user.Name,
		EventID:    event.ID,
		EventTitle: event.Title,
		RequestID:  ev.RequestID,
		Confirmed:  ev.Status == domain.RequestStatusConfirmed,
	})
}
