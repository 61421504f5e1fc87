package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Transfer event types.
const (
	EventCreated       = "CREATED"
	EventBuyerAccepted = "BUYER_ACCEPTED"
	EventBuyerDeclined = "BUYER_DECLINED"
	EventAdminApproved = "ADMIN_APPROVED"
	EventAdminRejected = "ADMIN_REJECTED"
	EventCancelled     = "CANCELLED"
)

// TransferEvent is the audit journal for transfer requests, appended inside
// the same transaction as the transition it records.
type TransferEvent struct {
	EventID     uuid.UUID      `gorm:"column:event_id;type:uuid;primaryKey" json:"event_id"`
	RequestID   uuid.UUID      `gorm:"column:request_id;type:uuid;not null;index" json:"request_id"`
	EventType   string         `gorm:"column:event_type;type:varchar(30);not null" json:"event_type"`
	ActorUserID *uuid.UUID     `gorm:"column:actor_user_id;type:uuid" json:"actor_user_id"`
	EventData   datatypes.JSON `gorm:"column:event_data;type:json" json:"event_data"`
	CreatedAt   time.Time      `gorm:"column:createdAt" json:"createdAt"`
}

func (TransferEvent) TableName() string {
	return "TransferEvents"
}

func (e *TransferEvent) BeforeCreate(tx *gorm.DB) error {
	if e.EventID == uuid.Nil {
		e.EventID = uuid.New()
	}
	return nil
}
