package valentine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"valentine/internal/theme"
)

const (
	DefaultQuestion     = "Will you be my Valentine?"
	DefaultFinalMessage = "You just made me the happiest person ever! 💖"

	idLength      = 10
	createRetries = 3
)

var DefaultBeggingMessages = []string{
	"Please? 🥺",
	"Pretty please? 💕",
	"I'll be so sad...",
	"You're breaking my heart! 💔",
	"Don't do this to me!",
}

// Store is the persistence contract for pages and acceptances.
// RecordAcceptance must return ErrAlreadyAccepted when the page already has
// an acceptance; the uniqueness is enforced by the store, not by callers.
type Store interface {
	CreatePage(ctx context.Context, p *Page) error
	GetPage(ctx context.Context, id string) (*Page, error)
	GetAcceptance(ctx context.Context, pageID string) (*AcceptanceEvent, error)
	RecordAcceptance(ctx context.Context, pageID string, screenshotURL *string) error
}

type Service struct {
	Store Store
	NewID func() (string, error)
}

type CreatePageInput struct {
	Question        string
	BeggingMessages []string
	FinalMessage    string
	SocialLabel     string
	SocialLink      string
	SenderName      string
	CreatorEmail    string
	Theme           string
}

func (s *Service) CreatePage(ctx context.Context, in CreatePageInput) (*Page, error) {
	sender := strings.TrimSpace(in.SenderName)
	if sender == "" {
		return nil, fmt.Errorf("%w: sender name required", ErrInvalidPage)
	}

	p := &Page{
		Question:        orDefault(in.Question, DefaultQuestion),
		BeggingMessages: nonBlank(in.BeggingMessages),
		FinalMessage:    orDefault(in.FinalMessage, DefaultFinalMessage),
		SocialLabel:     optional(in.SocialLabel),
		SocialLink:      optional(in.SocialLink),
		SenderName:      &sender,
		CreatorEmail:    optional(in.CreatorEmail),
		Theme:           strings.TrimSpace(in.Theme),
		CreatedAt:       time.Now().UTC(),
	}
	if in.BeggingMessages == nil {
		p.BeggingMessages = append([]string(nil), DefaultBeggingMessages...)
	}
	if !theme.Exists(p.Theme) {
		p.Theme = theme.Default
	}

	newID := s.NewID
	if newID == nil {
		newID = func() (string, error) { return gonanoid.New(idLength) }
	}

	for attempt := 0; attempt < createRetries; attempt++ {
		id, err := newID()
		if err != nil {
			return nil, fmt.Errorf("generate page id: %w", err)
		}
		p.ID = id

		err = s.Store.CreatePage(ctx, p)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, ErrDuplicateID) {
			return nil, err
		}
	}
	return nil, ErrDuplicateID
}

func (s *Service) GetPage(ctx context.Context, id string) (*Page, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrNotFound
	}
	return s.Store.GetPage(ctx, id)
}

// GetAcceptance returns the page's acceptance, or nil if there is none yet.
func (s *Service) GetAcceptance(ctx context.Context, pageID string) (*AcceptanceEvent, error) {
	ev, err := s.Store.GetAcceptance(ctx, pageID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return ev, err
}

// RecordAcceptance persists the page's one acceptance. A second call for the
// same page fails with ErrAlreadyAccepted.
func (s *Service) RecordAcceptance(ctx context.Context, pageID string, screenshotURL *string) error {
	if strings.TrimSpace(pageID) == "" {
		return ErrNotFound
	}
	return s.Store.RecordAcceptance(ctx, pageID, screenshotURL)
}

func orDefault(v, def string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return def
	}
	return v
}

func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

func nonBlank(msgs []string) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		if strings.TrimSpace(m) != "" {
			out = append(out, m)
		}
	}
	return out
}
