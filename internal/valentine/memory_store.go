package valentine

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps pages and acceptances in process. It enforces the same
// one-acceptance-per-page rule as the yes_events unique index.
type MemoryStore struct {
	mu     sync.Mutex
	pages  map[string]Page
	events map[string]AcceptanceEvent
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		pages:  make(map[string]Page),
		events: make(map[string]AcceptanceEvent),
	}
}

func (s *MemoryStore) CreatePage(_ context.Context, p *Page) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pages[p.ID]; ok {
		return ErrDuplicateID
	}
	cp := *p
	cp.BeggingMessages = append([]string(nil), p.BeggingMessages...)
	s.pages[p.ID] = cp
	return nil
}

func (s *MemoryStore) GetPage(_ context.Context, id string) (*Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pages[id]
	if !ok {
		return nil, ErrNotFound
	}
	p.BeggingMessages = append([]string(nil), p.BeggingMessages...)
	return &p, nil
}

func (s *MemoryStore) GetAcceptance(_ context.Context, pageID string) (*AcceptanceEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, ok := s.events[pageID]
	if !ok {
		return nil, ErrNotFound
	}
	return &ev, nil
}

func (s *MemoryStore) RecordAcceptance(_ context.Context, pageID string, screenshotURL *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pages[pageID]; !ok {
		return ErrNotFound
	}
	if _, ok := s.events[pageID]; ok {
		return ErrAlreadyAccepted
	}
	ev := AcceptanceEvent{ID: uuid.New(), PageID: pageID, ClickedAt: time.Now().UTC()}
	if screenshotURL != nil {
		u := *screenshotURL
		ev.ScreenshotURL = &u
	}
	s.events[pageID] = ev
	return nil
}
