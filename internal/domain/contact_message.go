package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Contact message statuses. Any status is reachable from any other by explicit
// admin action; only the investor-facing create path is fixed to pending.
const (
	ContactPending  = "pending"
	ContactRead     = "read"
	ContactReplied  = "replied"
	ContactResolved = "resolved"
	ContactClosed   = "closed"
)

// Contact preferences.
const (
	PreferEmail = "email"
	PreferPhone = "phone"
)

var contactStatuses = []string{
	ContactPending, ContactRead, ContactReplied, ContactResolved, ContactClosed,
}

// IsValidContactStatus reports whether status is a known enum value.
func IsValidContactStatus(status string) bool {
	for _, s := range contactStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// ContactMessage is an investor inquiry about a holding, routed to the admins.
type ContactMessage struct {
	MessageID         uuid.UUID  `gorm:"column:message_id;type:uuid;primaryKey" json:"message_id"`
	UserID            uuid.UUID  `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	HoldingID         uuid.UUID  `gorm:"column:holding_id;type:uuid;not null;index" json:"holding_id"`
	PropertyID        uuid.UUID  `gorm:"column:property_id;type:uuid;not null" json:"property_id"`
	Subject           string     `gorm:"column:subject;not null" json:"subject"`
	Body              string     `gorm:"column:body;type:text;not null" json:"body"`
	ContactPreference string     `gorm:"column:contact_preference;type:varchar(10);default:'email'" json:"contact_preference"`
	Status            string     `gorm:"column:status;type:varchar(20);default:'pending'" json:"status"`
	ResponseMessage   *string    `gorm:"column:response_message;type:text" json:"response_message"`
	RespondedBy       *uuid.UUID `gorm:"column:responded_by;type:uuid" json:"responded_by"`
	RespondedAt       *time.Time `gorm:"column:responded_at" json:"responded_at"`
	AdminNotes        *string    `gorm:"column:admin_notes;type:text" json:"admin_notes"`
	CreatedAt         time.Time  `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt         time.Time  `gorm:"column:updatedAt" json:"updatedAt"`
}

func (ContactMessage) TableName() string {
	return "ContactMessages"
}

func (m *ContactMessage) BeforeCreate(tx *gorm.DB) error {
	if m.MessageID == uuid.Nil {
		m.MessageID = uuid.New()
	}
	return nil
}
