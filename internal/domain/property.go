package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Property statuses.
const (
	PropertyListed = "listed"
	PropertyFunded = "funded"
	PropertyClosed = "closed"
)

// Property is a listed real-estate asset investors hold stakes in.
type Property struct {
	PropertyID  uuid.UUID       `gorm:"column:property_id;type:uuid;primaryKey" json:"property_id"`
	Title       string          `gorm:"column:title;not null" json:"title"`
	Address     string          `gorm:"column:address;not null" json:"address"`
	City        string          `gorm:"column:city;not null" json:"city"`
	Country     string          `gorm:"column:country;not null" json:"country"`
	Description string          `gorm:"column:description;type:text" json:"description"`
	TotalValue  decimal.Decimal `gorm:"column:total_value;type:decimal(18,2);not null" json:"total_value"`
	Status      string          `gorm:"column:status;type:varchar(20);default:'listed'" json:"status"`
	CreatedAt   time.Time       `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt   time.Time       `gorm:"column:updatedAt" json:"updatedAt"`
}

func (Property) TableName() string {
	return "Properties"
}

func (p *Property) BeforeCreate(tx *gorm.DB) error {
	if p.PropertyID == uuid.Nil {
		p.PropertyID = uuid.New()
	}
	return nil
}
