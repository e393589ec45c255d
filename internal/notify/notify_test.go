package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"valentine/internal/valentine"
)

type fakeMailer struct {
	sent []Message
	err  error
}

func (m *fakeMailer) Send(_ context.Context, msg Message) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.sent = append(m.sent, msg)
	return "email-1", nil
}

func strPtr(s string) *string { return &s }

func newService(t *testing.T, email *string) (*Service, *fakeMailer) {
	t.Helper()
	store := valentine.NewMemoryStore()
	require.NoError(t, store.CreatePage(context.Background(), &valentine.Page{
		ID:           "abc123",
		Question:     "Will you?",
		FinalMessage: "Yay",
		CreatorEmail: email,
	}))
	mailer := &fakeMailer{}
	return &Service{
		Pages:  store,
		Mailer: mailer,
		From:   "Valentine Notifications <onboarding@resend.dev>",
		Now:    func() time.Time { return time.Date(2026, 2, 14, 15, 4, 0, 0, time.UTC) },
	}, mailer
}

func TestNotify_SendsToCreator(t *testing.T) {
	svc, mailer := newService(t, strPtr("sam@example.com"))

	res, err := svc.Notify(context.Background(), Request{
		PageID:        "abc123",
		ScreenshotURL: strPtr("https://cdn.example/abc123-1.png"),
	})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "email-1", res.EmailID)

	require.Len(t, mailer.sent, 1)
	msg := mailer.sent[0]
	assert.Equal(t, "sam@example.com", msg.To)
	assert.Equal(t, "Valentine Notifications <onboarding@resend.dev>", msg.From)
	assert.Equal(t, "🎉 They said YES to your Valentine! 💕", msg.Subject)
	assert.Contains(t, msg.HTML, "THEY SAID YES!")
	assert.Contains(t, msg.HTML, "Feb 14, 3:04 PM")
	assert.Contains(t, msg.HTML, "https://cdn.example/abc123-1.png")
	assert.Contains(t, msg.HTML, "View Screenshot")
}

func TestNotify_WithoutScreenshotOmitsLink(t *testing.T) {
	svc, mailer := newService(t, strPtr("sam@example.com"))

	_, err := svc.Notify(context.Background(), Request{PageID: "abc123"})
	require.NoError(t, err)
	require.Len(t, mailer.sent, 1)
	assert.NotContains(t, mailer.sent[0].HTML, "View Screenshot")
}

func TestNotify_ReceiverNameInHeading(t *testing.T) {
	svc, mailer := newService(t, strPtr("sam@example.com"))

	_, err := svc.Notify(context.Background(), Request{PageID: "abc123", ReceiverName: strPtr("Alex")})
	require.NoError(t, err)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "🎉 Alex said YES to your Valentine! 💕", mailer.sent[0].Subject)
	assert.Contains(t, mailer.sent[0].HTML, "ALEX SAID YES!")
}

func TestNotify_NoEmailConfigured(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	svc, mailer := newService(t, nil)
	svc.Logger = zap.New(core)

	res, err := svc.Notify(context.Background(), Request{PageID: "abc123"})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "No email configured", res.Message)
	assert.Empty(t, mailer.sent)
	assert.Equal(t, 1, logs.FilterMessageSnippet("skipping notification").Len())
}

func TestNotify_Errors(t *testing.T) {
	svc, mailer := newService(t, strPtr("sam@example.com"))

	_, err := svc.Notify(context.Background(), Request{PageID: "  "})
	assert.ErrorIs(t, err, ErrMissingPageID)

	_, err = svc.Notify(context.Background(), Request{PageID: "missing"})
	assert.ErrorIs(t, err, ErrPageNotFound)

	mailer.err = errors.New("rate limited")
	err = svc.NotifyAcceptance(context.Background(), "abc123", nil, nil)
	assert.ErrorContains(t, err, "rate limited")
}

func TestNotify_EscapesScreenshotURL(t *testing.T) {
	svc, mailer := newService(t, strPtr("sam@example.com"))

	_, err := svc.Notify(context.Background(), Request{PageID: "abc123", ScreenshotURL: strPtr(`javascript:alert(1)`)})
	require.NoError(t, err)
	assert.NotContains(t, mailer.sent[0].HTML, "javascript:alert(1)")
}
