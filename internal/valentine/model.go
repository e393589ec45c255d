package valentine

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Page is immutable once created. CreatorEmail is private to the owner
// notification and is never rendered to the recipient.
type Page struct {
	ID              string         `gorm:"column:id;primaryKey"`
	Question        string         `gorm:"column:question"`
	BeggingMessages pq.StringArray `gorm:"column:begging_messages;type:text[]"`
	FinalMessage    string         `gorm:"column:final_message"`
	SocialLabel     *string        `gorm:"column:social_label"`
	SocialLink      *string        `gorm:"column:social_link"`
	SenderName      *string        `gorm:"column:sender_name"`
	CreatorEmail    *string        `gorm:"column:creator_email"`
	Theme           string         `gorm:"column:theme"`
	CreatedAt       time.Time      `gorm:"column:created_at"`
}

func (Page) TableName() string { return "valentine_pages" }

// AcceptanceEvent is written at most once per page; yes_events.page_id is unique.
type AcceptanceEvent struct {
	ID            uuid.UUID `gorm:"column:id;primaryKey"`
	PageID        string    `gorm:"column:page_id"`
	ScreenshotURL *string   `gorm:"column:screenshot_url"`
	ClickedAt     time.Time `gorm:"column:clicked_at"`
}

func (AcceptanceEvent) TableName() string { return "yes_events" }
