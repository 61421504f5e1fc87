package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Transfer request statuses.
const (
	TransferPending       = "pending"
	TransferAdminPending  = "admin_pending"
	TransferAdminApproved = "admin_approved"
	TransferAdminRejected = "admin_rejected"
	TransferRejected      = "rejected"
	TransferCompleted     = "completed"
	TransferCancelled     = "cancelled"
)

// Buyer response sub-states.
const (
	BuyerResponsePending  = "pending"
	BuyerResponseAccepted = "accepted"
	BuyerResponseDeclined = "declined"
)

// transferTransitions is the legal-transition table. Every status write goes
// through a conditional update keyed on the expected current status, so an
// illegal transition can never reach the database.
var transferTransitions = map[string][]string{
	TransferPending:       {TransferAdminPending, TransferRejected, TransferCancelled},
	TransferAdminPending:  {TransferAdminApproved, TransferAdminRejected, TransferCancelled},
	TransferAdminApproved: {TransferCompleted},
}

var transferStatuses = []string{
	TransferPending, TransferAdminPending, TransferAdminApproved,
	TransferAdminRejected, TransferRejected, TransferCompleted, TransferCancelled,
}

// CanTransition reports whether from -> to is a legal transfer transition.
func CanTransition(from, to string) bool {
	for _, next := range transferTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminalTransferStatus reports whether a request in this status is archived.
func IsTerminalTransferStatus(status string) bool {
	switch status {
	case TransferCompleted, TransferRejected, TransferAdminRejected, TransferCancelled:
		return true
	}
	return false
}

// IsValidTransferStatus reports whether status is a known enum value.
func IsValidTransferStatus(status string) bool {
	for _, s := range transferStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// TransferRequest is a proposed ownership change for one holding, subject to
// buyer and then admin approval.
//
// ActiveHoldingID carries the holding id while the request is non-terminal and
// is cleared when a terminal status is reached; its unique index is what makes
// "at most one active request per holding" hold across concurrent processes.
type TransferRequest struct {
	RequestID        uuid.UUID       `gorm:"column:request_id;type:uuid;primaryKey" json:"request_id"`
	HoldingID        uuid.UUID       `gorm:"column:holding_id;type:uuid;not null;index" json:"holding_id"`
	PropertyID       uuid.UUID       `gorm:"column:property_id;type:uuid;not null" json:"property_id"`
	SellerID         uuid.UUID       `gorm:"column:seller_id;type:uuid;not null;index" json:"seller_id"`
	BuyerID          uuid.UUID       `gorm:"column:buyer_id;type:uuid;not null;index" json:"buyer_id"`
	SalePrice        decimal.Decimal `gorm:"column:sale_price;type:decimal(18,2);not null" json:"sale_price"`
	Status           string          `gorm:"column:status;type:varchar(20);default:'pending'" json:"status"`
	BuyerResponse    string          `gorm:"column:buyer_response;type:varchar(20);default:'pending'" json:"buyer_response"`
	AdminID          *uuid.UUID      `gorm:"column:admin_id;type:uuid" json:"admin_id"`
	AdminNotes       *string         `gorm:"column:admin_notes;type:text" json:"admin_notes"`
	ActiveHoldingID  *uuid.UUID      `gorm:"column:active_holding_id;type:uuid;uniqueIndex" json:"-"`
	BuyerRespondedAt *time.Time      `gorm:"column:buyer_responded_at" json:"buyer_responded_at"`
	AdminRespondedAt *time.Time      `gorm:"column:admin_responded_at" json:"admin_responded_at"`
	CreatedAt        time.Time       `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt        time.Time       `gorm:"column:updatedAt" json:"updatedAt"`
}

func (TransferRequest) TableName() string {
	return "TransferRequests"
}

func (t *TransferRequest) BeforeCreate(tx *gorm.DB) error {
	if t.RequestID == uuid.Nil {
		t.RequestID = uuid.New()
	}
	return nil
}
