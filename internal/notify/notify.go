// Package notify tells a page's creator that their Valentine was accepted.
package notify

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	"go.uber.org/zap"

	"valentine/internal/valentine"
)

var (
	ErrMissingPageID = errors.New("missing pageId")
	ErrPageNotFound  = errors.New("page not found")
)

const timestampLayout = "Jan 2, 3:04 PM"

//go:embed templates/yes.html
var templates embed.FS

var emailTmpl = template.Must(template.ParseFS(templates, "templates/yes.html"))

type Request struct {
	PageID        string  `json:"pageId"`
	ScreenshotURL *string `json:"screenshotUrl,omitempty"`
	ReceiverName  *string `json:"receiverName,omitempty"`
}

type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	EmailID string `json:"emailId,omitempty"`
}

type PageLookup interface {
	GetPage(ctx context.Context, id string) (*valentine.Page, error)
}

type Service struct {
	Pages  PageLookup
	Mailer Mailer
	From   string
	Logger *zap.Logger
	Now    func() time.Time
}

// Notify looks up the creator's private address by page id and mails them.
// Pages without an address succeed without sending anything.
func (s *Service) Notify(ctx context.Context, req Request) (Result, error) {
	req.PageID = strings.TrimSpace(req.PageID)
	if req.PageID == "" {
		return Result{}, ErrMissingPageID
	}

	page, err := s.Pages.GetPage(ctx, req.PageID)
	if err != nil {
		if errors.Is(err, valentine.ErrNotFound) {
			return Result{}, ErrPageNotFound
		}
		return Result{}, fmt.Errorf("lookup page: %w", err)
	}

	if page.CreatorEmail == nil || strings.TrimSpace(*page.CreatorEmail) == "" {
		s.logger().Info("no creator email configured, skipping notification", zap.String("page_id", page.ID))
		return Result{Success: true, Message: "No email configured"}, nil
	}

	msg, err := s.compose(page, req)
	if err != nil {
		return Result{}, err
	}

	id, err := s.Mailer.Send(ctx, msg)
	if err != nil {
		return Result{}, fmt.Errorf("send email: %w", err)
	}
	s.logger().Info("notification sent", zap.String("page_id", page.ID), zap.String("email_id", id))
	return Result{Success: true, EmailID: id}, nil
}

// NotifyAcceptance adapts Notify to the accept-flow's notifier contract.
func (s *Service) NotifyAcceptance(ctx context.Context, pageID string, screenshotURL, receiverName *string) error {
	_, err := s.Notify(ctx, Request{PageID: pageID, ScreenshotURL: screenshotURL, ReceiverName: receiverName})
	return err
}

type emailData struct {
	Heading       string
	Timestamp     string
	ScreenshotURL string
}

func (s *Service) compose(page *valentine.Page, req Request) (Message, error) {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}

	who := "They"
	if req.ReceiverName != nil && strings.TrimSpace(*req.ReceiverName) != "" {
		who = strings.TrimSpace(*req.ReceiverName)
	}

	data := emailData{
		Heading:   strings.ToUpper(who) + " SAID YES!",
		Timestamp: now().Format(timestampLayout),
	}
	if req.ScreenshotURL != nil {
		data.ScreenshotURL = *req.ScreenshotURL
	}

	var buf bytes.Buffer
	if err := emailTmpl.Execute(&buf, data); err != nil {
		return Message{}, fmt.Errorf("render email: %w", err)
	}

	return Message{
		From:    s.From,
		To:      *page.CreatorEmail,
		Subject: fmt.Sprintf("🎉 %s said YES to your Valentine! 💕", who),
		HTML:    buf.String(),
	}, nil
}

func (s *Service) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}
