package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"eventboard/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingMailer struct {
	to, subject, html, text string
	calls                   int
	err                     error
}

func (m *recordingMailer) Send(ctx context.Context, to, subject, html, text string) error {
	m.calls++
	m.to, m.subject, m.html, m.text = to, subject, html, text
	return m.err
}

type stubRenderer struct {
	lastName string
	lastData any
}

func (r *stubRenderer) Render(name string, data any) (string, string, string, error) {
	r.lastName, r.lastData = name, data
	return "subject", "<p>html</p>", "text", nil
}

func TestEmailService_SendRequestDecision(t *testing.T) {
	mailer := &recordingMailer{}
	renderer := &stubRenderer{}
	svc := NewEmailService(mailer, renderer, testLogger())

	data := &domain.RequestDecisionEmailData{Email: "ann@example.com", Name: "Ann", RequestID: 5, Confirmed: true}
	require.NoError(t, svc.SendRequestDecision(context.Background(), data))
	assert.Equal(t, "request_decision", renderer.lastName)
	assert.Equal(t, data, renderer.lastData)
	assert.Equal(t, "ann@example.com", mailer.to)
	assert.Equal(t, "subject", mailer.subject)

	require.Error(t, svc.SendRequestDecision(context.Background(), nil))

	mailer.err = errors.New("throttled")
	require.Error(t, svc.SendRequestDecision(context.Background(), data))
}

func TestNotificationHandler_HandleStatusChanged(t *testing.T) {
	store := newMemStore(testEvent(10, true))
	users := testUsers(3)

	tests := []struct {
		name      string
		ev        domain.RequestStatusChanged
		wantCalls int
	}{
		{"confirmed", domain.RequestStatusChanged{RequestID: 1, EventID: eventID, RequesterID: 2, Status: domain.RequestStatusConfirmed}, 1},
		{"rejected", domain.RequestStatusChanged{RequestID: 1, EventID: eventID, RequesterID: 2, Status: domain.RequestStatusRejected}, 1},
		{"pending is ignored", domain.RequestStatusChanged{RequestID: 1, EventID: eventID, RequesterID: 2, Status: domain.RequestStatusPending}, 0},
		{"canceled is ignored", domain.RequestStatusChanged{RequestID: 1, EventID: eventID, RequesterID: 2, Status: domain.RequestStatusCanceled}, 0},
		{"unknown user is dropped", domain.RequestStatusChanged{RequestID: 1, EventID: eventID, RequesterID: 99, Status: domain.RequestStatusConfirmed}, 0},
		{"unknown event is dropped", domain.RequestStatusChanged{RequestID: 1, EventID: 404, RequesterID: 2, Status: domain.RequestStatusConfirmed}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mailer := &recordingMailer{}
			renderer := &stubRenderer{}
			h := NewNotificationHandler(users, store, NewEmailService(mailer, renderer, testLogger()), testLogger(), time.Second)

			require.NoError(t, h.HandleStatusChanged(context.Background(), tt.ev))
			assert.Equal(t, tt.wantCalls, mailer.calls)
			if tt.wantCalls > 0 {
				data := renderer.lastData.(*domain.RequestDecisionEmailData)
				assert.Equal(t, "Go meetup", data.EventTitle)
				assert.Equal(t, tt.ev.Status == domain.RequestStatusConfirmed, data.Confirmed)
			}
		})
	}
}
