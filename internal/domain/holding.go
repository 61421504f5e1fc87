package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Holding statuses.
const (
	HoldingActive      = "active"
	HoldingMatured     = "matured"
	HoldingTransferred = "transferred"
)

// Holding is one investor's recorded stake in one property. Ownership changes
// only through a completed transfer request.
type Holding struct {
	HoldingID    uuid.UUID       `gorm:"column:holding_id;type:uuid;primaryKey" json:"holding_id"`
	UserID       uuid.UUID       `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	PropertyID   uuid.UUID       `gorm:"column:property_id;type:uuid;not null;index" json:"property_id"`
	Amount       decimal.Decimal `gorm:"column:amount;type:decimal(18,2);not null" json:"amount"`
	PurchaseDate time.Time       `gorm:"column:purchase_date;not null" json:"purchase_date"`
	MaturityDate *time.Time      `gorm:"column:maturity_date" json:"maturity_date"`
	Status       string          `gorm:"column:status;type:varchar(20);default:'active'" json:"status"`
	CreatedAt    time.Time       `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt    time.Time       `gorm:"column:updatedAt" json:"updatedAt"`
}

func (Holding) TableName() string {
	return "Holdings"
}

func (h *Holding) BeforeCreate(tx *gorm.DB) error {
	if h.HoldingID == uuid.Nil {
		h.HoldingID = uuid.New()
	}
	return nil
}
