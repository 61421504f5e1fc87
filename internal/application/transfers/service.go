package transfers

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"propshare-backend/internal/application/emails"
	"propshare-backend/internal/domain"
	"propshare-backend/internal/pkg/apperr"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Service encapsulates the ownership-transfer workflow. All multi-write
// transitions run in a single DB transaction; status writes are conditional
// updates keyed on the expected current status so concurrent decisions can
// never both apply.
type Service struct {
	DB   *gorm.DB
	Mail emails.Sender
}

type CreateInput struct {
	SellerID  uuid.UUID
	BuyerID   uuid.UUID
	HoldingID uuid.UUID
	SalePrice decimal.Decimal
}

// Create opens a transfer request in pending state. The unique index on
// active_holding_id rejects a second non-terminal request for the same
// holding, including under concurrent creates.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.TransferRequest, error) {
	if !in.SalePrice.IsPositive() {
		return nil, apperr.Validation("Sale price must be a positive number")
	}
	if in.BuyerID == in.SellerID {
		return nil, apperr.Validation("Seller cannot name themself as buyer")
	}

	var buyer domain.User
	if err := s.DB.WithContext(ctx).Where("user_id = ?", in.BuyerID).First(&buyer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Buyer not found")
		}
		return nil, err
	}

	var holding domain.Holding
	if err := s.DB.WithContext(ctx).Where("holding_id = ?", in.HoldingID).First(&holding).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Holding not found")
		}
		return nil, err
	}
	if holding.UserID != in.SellerID {
		return nil, apperr.Authorization("Holding is not owned by the seller")
	}

	var active int64
	if err := s.DB.WithContext(ctx).Model(&domain.TransferRequest{}).
		Where("active_holding_id = ?", holding.HoldingID).
		Count(&active).Error; err != nil {
		return nil, err
	}
	if active > 0 {
		return nil, apperr.Conflict("Holding already has an active transfer request")
	}

	req := &domain.TransferRequest{
		HoldingID:       holding.HoldingID,
		PropertyID:      holding.PropertyID,
		SellerID:        in.SellerID,
		BuyerID:         in.BuyerID,
		SalePrice:       in.SalePrice,
		Status:          domain.TransferPending,
		BuyerResponse:   domain.BuyerResponsePending,
		ActiveHoldingID: &holding.HoldingID,
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(req).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperr.Conflict("Holding already has an active transfer request")
			}
			return err
		}
		return s.appendEvent(tx, req.RequestID, domain.EventCreated, &in.SellerID, map[string]interface{}{
			"buyer_id":   in.BuyerID,
			"sale_price": in.SalePrice,
		})
	})
	if err != nil {
		return nil, err
	}

	if s.Mail != nil {
		var property domain.Property
		title := ""
		if err := s.DB.WithContext(ctx).Where("property_id = ?", holding.PropertyID).First(&property).Error; err == nil {
			title = property.Title
		}
		if err := s.Mail.SendTransferRequestNotice(ctx, buyer.Email, buyer.Fullname, title); err != nil {
			log.Warn().Err(err).Str("buyer_id", buyer.UserID.String()).Msg("transfer notice email failed")
		}
	}
	return req, nil
}

// BuyerRespond records the named buyer's decision on a pending request.
func (s *Service) BuyerRespond(ctx context.Context, requestID, buyerID uuid.UUID, decision string) (*domain.TransferRequest, error) {
	if decision != domain.BuyerResponseAccepted && decision != domain.BuyerResponseDeclined {
		return nil, apperr.Validation("Response must be accepted or declined")
	}

	req, err := s.get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.BuyerID != buyerID {
		return nil, apperr.Authorization("Only the named buyer can respond to this request")
	}

	now := time.Now()
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if decision == domain.BuyerResponseAccepted {
			if err := s.transition(tx, requestID, domain.TransferPending, map[string]interface{}{
				"status":             domain.TransferAdminPending,
				"buyer_response":     domain.BuyerResponseAccepted,
				"buyer_responded_at": now,
			}); err != nil {
				return err
			}
			return s.appendEvent(tx, requestID, domain.EventBuyerAccepted, &buyerID, nil)
		}
		if err := s.transition(tx, requestID, domain.TransferPending, map[string]interface{}{
			"status":             domain.TransferRejected,
			"buyer_response":     domain.BuyerResponseDeclined,
			"buyer_responded_at": now,
			"active_holding_id":  nil,
		}); err != nil {
			return err
		}
		return s.appendEvent(tx, requestID, domain.EventBuyerDeclined, &buyerID, nil)
	})
	if err != nil {
		return nil, err
	}
	return s.get(ctx, requestID)
}

// AdminApprove completes the transfer: approval, holding reassignment and
// completion are one transaction. If any write fails everything rolls back and
// the request stays admin_pending.
func (s *Service) AdminApprove(ctx context.Context, requestID, adminID uuid.UUID, notes *string) (*domain.TransferRequest, error) {
	req, err := s.get(ctx, requestID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.transition(tx, requestID, domain.TransferAdminPending, map[string]interface{}{
			"status":             domain.TransferAdminApproved,
			"admin_id":           adminID,
			"admin_notes":        notes,
			"admin_responded_at": now,
		}); err != nil {
			return err
		}

		res := tx.Model(&domain.Holding{}).
			Where("holding_id = ?", req.HoldingID).
			Updates(map[string]interface{}{
				"user_id": req.BuyerID,
				"status":  domain.HoldingTransferred,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("Holding not found")
		}

		if err := s.transition(tx, requestID, domain.TransferAdminApproved, map[string]interface{}{
			"status":            domain.TransferCompleted,
			"active_holding_id": nil,
		}); err != nil {
			return err
		}
		return s.appendEvent(tx, requestID, domain.EventAdminApproved, &adminID, map[string]interface{}{
			"new_owner_id": req.BuyerID,
		})
	})
	if err != nil {
		return nil, err
	}
	return s.get(ctx, requestID)
}

// AdminReject declines an accepted request at the admin gate. Holding untouched.
func (s *Service) AdminReject(ctx context.Context, requestID, adminID uuid.UUID, notes *string) (*domain.TransferRequest, error) {
	if _, err := s.get(ctx, requestID); err != nil {
		return nil, err
	}

	now := time.Now()
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.transition(tx, requestID, domain.TransferAdminPending, map[string]interface{}{
			"status":             domain.TransferAdminRejected,
			"admin_id":           adminID,
			"admin_notes":        notes,
			"admin_responded_at": now,
			"active_holding_id":  nil,
		}); err != nil {
			return err
		}
		return s.appendEvent(tx, requestID, domain.EventAdminRejected, &adminID, nil)
	})
	if err != nil {
		return nil, err
	}
	return s.get(ctx, requestID)
}

// Cancel lets the seller withdraw a non-terminal request.
func (s *Service) Cancel(ctx context.Context, requestID, sellerID uuid.UUID) (*domain.TransferRequest, error) {
	req, err := s.get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.SellerID != sellerID {
		return nil, apperr.Authorization("Only the seller can cancel this request")
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.TransferRequest{}).
			Where("request_id = ? AND status IN ?", requestID,
				[]string{domain.TransferPending, domain.TransferAdminPending}).
			Updates(map[string]interface{}{
				"status":            domain.TransferCancelled,
				"active_holding_id": nil,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.InvalidState("Request is already settled")
		}
		return s.appendEvent(tx, requestID, domain.EventCancelled, &sellerID, nil)
	})
	if err != nil {
		return nil, err
	}
	return s.get(ctx, requestID)
}

// List returns requests for the admin view, newest first, optionally filtered
// by status.
func (s *Service) List(ctx context.Context, status string) ([]domain.TransferRequest, error) {
	q := s.DB.WithContext(ctx)
	if status != "" {
		if !domain.IsValidTransferStatus(status) {
			return nil, apperr.Validation("Unknown transfer status")
		}
		q = q.Where("status = ?", status)
	}
	var requests []domain.TransferRequest
	if err := q.Order("\"createdAt\" DESC").Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

// ListSent returns requests the user created as seller, newest first.
func (s *Service) ListSent(ctx context.Context, sellerID uuid.UUID) ([]domain.TransferRequest, error) {
	var requests []domain.TransferRequest
	if err := s.DB.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Order("\"createdAt\" DESC").
		Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

// ListReceived returns requests naming the user as buyer, newest first.
func (s *Service) ListReceived(ctx context.Context, buyerID uuid.UUID) ([]domain.TransferRequest, error) {
	var requests []domain.TransferRequest
	if err := s.DB.WithContext(ctx).
		Where("buyer_id = ?", buyerID).
		Order("\"createdAt\" DESC").
		Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

// ListEvents returns the audit journal for one request, oldest first.
func (s *Service) ListEvents(ctx context.Context, requestID uuid.UUID) ([]domain.TransferEvent, error) {
	if _, err := s.get(ctx, requestID); err != nil {
		return nil, err
	}
	var events []domain.TransferEvent
	if err := s.DB.WithContext(ctx).
		Where("request_id = ?", requestID).
		Order("\"createdAt\" ASC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (s *Service) get(ctx context.Context, requestID uuid.UUID) (*domain.TransferRequest, error) {
	var req domain.TransferRequest
	if err := s.DB.WithContext(ctx).Where("request_id = ?", requestID).First(&req).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Transfer request not found")
		}
		return nil, err
	}
	return &req, nil
}

// transition performs a compare-and-swap status write: the update applies only
// if the row is still in fromStatus, otherwise InvalidStateError. The target
// status is also checked against the transition table.
func (s *Service) transition(tx *gorm.DB, requestID uuid.UUID, fromStatus string, updates map[string]interface{}) error {
	to, _ := updates["status"].(string)
	if !domain.CanTransition(fromStatus, to) {
		return apperr.InvalidState("Illegal transfer transition")
	}
	res := tx.Model(&domain.TransferRequest{}).
		Where("request_id = ? AND status = ?", requestID, fromStatus).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.InvalidState("Request is not in the required state")
	}
	return nil
}

func (s *Service) appendEvent(tx *gorm.DB, requestID uuid.UUID, eventType string, actor *uuid.UUID, data map[string]interface{}) error {
	var payload datatypes.JSON
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return err
		}
		payload = datatypes.JSON(b)
	}
	return tx.Create(&domain.TransferEvent{
		RequestID:   requestID,
		EventType:   eventType,
		ActorUserID: actor,
		EventData:   payload,
	}).Error
}
