package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(ctx context.Context, to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// RequestDecisionEmailData holds data for the participation decision email.
type RequestDecisionEmailData struct {
	Email      string
	Name       string
	EventID    int64
	EventTitle string
	RequestID  int64
	Confirmed  bool
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendRequestDecision(ctx context.Context, data *RequestDecisionEmailData) error
}
