package valentine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GormStore struct {
	DB *gorm.DB
}

func (s *GormStore) CreatePage(ctx context.Context, p *Page) error {
	if err := s.DB.WithContext(ctx).Create(p).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateID
		}
		return fmt.Errorf("insert page: %w", err)
	}
	return nil
}

func (s *GormStore) GetPage(ctx context.Context, id string) (*Page, error) {
	var p Page
	if err := s.DB.WithContext(ctx).Where("id = ?", id).Take(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select page: %w", err)
	}
	return &p, nil
}

func (s *GormStore) GetAcceptance(ctx context.Context, pageID string) (*AcceptanceEvent, error) {
	var ev AcceptanceEvent
	if err := s.DB.WithContext(ctx).Where("page_id = ?", pageID).Take(&ev).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select acceptance: %w", err)
	}
	return &ev, nil
}

// RecordAcceptance inserts the page's single acceptance row. A second insert
// for the same page fails on yes_events.page_id and is reported as
// ErrAlreadyAccepted.
func (s *GormStore) RecordAcceptance(ctx context.Context, pageID string, screenshotURL *string) error {
	ev := AcceptanceEvent{
		ID:            uuid.New(),
		PageID:        pageID,
		ScreenshotURL: screenshotURL,
		ClickedAt:     time.Now().UTC(),
	}
	if err := s.DB.WithContext(ctx).Create(&ev).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyAccepted
		}
		return fmt.Errorf("insert acceptance: %w", err)
	}
	return nil
}
