package notify

import (
	"context"
	"errors"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

type Message struct {
	From    string
	To      string
	Subject string
	HTML    string
}

// Mailer delivers a message and returns the provider's message id.
type Mailer interface {
	Send(ctx context.Context, msg Message) (string, error)
}

type resendEmails interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

type ResendMailer struct {
	emails resendEmails
}

func NewResendMailer(apiKey string) *ResendMailer {
	client := resend.NewClient(apiKey)
	return &ResendMailer{emails: client.Emails}
}

func (m *ResendMailer) Send(ctx context.Context, msg Message) (string, error) {
	resp, err := m.emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    msg.From,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
	})
	if err != nil {
		return "", err
	}
	if resp == nil {
		return "", errors.New("resend: empty response")
	}
	return resp.Id, nil
}

// LogMailer writes messages to the log instead of sending them. It stands in
// when no provider key is configured.
type LogMailer struct {
	Logger *zap.Logger
}

func (m *LogMailer) Send(_ context.Context, msg Message) (string, error) {
	m.Logger.Info("email (not sent, no provider configured)",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Int("html_bytes", len(msg.HTML)),
	)
	return "", nil
}
