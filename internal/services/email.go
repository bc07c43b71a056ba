package services

import (
	"context"
	"fmt"
	"log/slog"

	"eventboard/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	logger   *slog.Logger
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, logger *slog.Logger) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer, logger: logger}
}

// SendRequestDecision tells a requester whether their participation request was confirmed or rejected.
func (s *emailService) SendRequestDecision(ctx context.Context, data *domain.RequestDecisionEmailData) error {
	if data == nil {
		return fmt.Errorf("request decision data is nil")
	}
	subject, htmlBody, textBody, err := s.renderer.Render("request_decision", data)
	if err != nil {
		return fmt.Errorf("render request_decision template: %w", err)
	}
	if err := s.mailer.Send(ctx, data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("send request decision email: %w", err)
	}
	s.logger.Info("request decision email sent", "request_id", data.RequestID, "confirmed", data.Confirmed)
	return nil
}
