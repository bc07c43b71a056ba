package email

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewMailer(t *testing.T) {
	tests := []struct {
		name    string
		config  MailerConfig
		wantSES bool
		wantErr bool
	}{
		{name: "noop", config: MailerConfig{Provider: "noop"}},
		{name: "empty provider", config: MailerConfig{}},
		{name: "unknown provider", config: MailerConfig{Provider: "smtp"}},
		{name: "ses", config: MailerConfig{Provider: "ses", FromAddress: "noreply@example.com", SES: SESConfig{Region: "eu-west-1"}}, wantSES: true},
		{name: "ses without sender", config: MailerConfig{Provider: "ses"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMailer(tt.config, testLogger())
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			_, isSES := m.(*sesMailer)
			assert.Equal(t, tt.wantSES, isSES)
		})
	}
}

func TestNoopMailer_Send(t *testing.T) {
	m, err := NewMailer(MailerConfig{Provider: "noop"}, testLogger())
	require.NoError(t, err)
	require.NoError(t, m.Send(context.Background(), "ann@example.com", "hi", "<p>hi</p>", "hi"))
}

func TestBuildSendEmailInput(t *testing.T) {
	s := &sesMailer{fromAddress: "noreply@example.com", fromName: "Eventboard"}
	in := buildSendEmailInput(s.source(), "ann@example.com", "Subject", "", "plain")

	assert.Equal(t, "Eventboard <noreply@example.com>", aws.ToString(in.Source))
	assert.Equal(t, []string{"ann@example.com"}, in.Destination.ToAddresses)
	assert.Equal(t, "Subject", aws.ToString(in.Message.Subject.Data))
	assert.Nil(t, in.Message.Body.Html)
	require.NotNil(t, in.Message.Body.Text)
	assert.Equal(t, "plain", aws.ToString(in.Message.Body.Text.Data))
}
