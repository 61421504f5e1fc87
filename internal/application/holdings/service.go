package holdings

import (
	"context"
	"errors"

	"propshare-backend/internal/domain"
	"propshare-backend/internal/pkg/apperr"
	"propshare-backend/internal/pkg/constants"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service encapsulates holdings reads. Writes happen only through the
// transfers workflow.
type Service struct {
	DB *gorm.DB
}

// View is a holding with its property populated at read time. Entities stay
// normalized on the write side; the join is explicit FK lookups here.
type View struct {
	domain.Holding
	Property *domain.Property `json:"property,omitempty"`
}

// ListForUser returns the user's holdings with properties populated.
func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID) ([]View, error) {
	var holdings []domain.Holding
	if err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("purchase_date DESC").
		Find(&holdings).Error; err != nil {
		return nil, err
	}
	if len(holdings) == 0 {
		return []View{}, nil
	}

	ids := make([]uuid.UUID, 0, len(holdings))
	for _, h := range holdings {
		ids = append(ids, h.PropertyID)
	}
	var properties []domain.Property
	if err := s.DB.WithContext(ctx).Where("property_id IN ?", ids).Find(&properties).Error; err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*domain.Property, len(properties))
	for i := range properties {
		byID[properties[i].PropertyID] = &properties[i]
	}

	views := make([]View, 0, len(holdings))
	for _, h := range holdings {
		views = append(views, View{Holding: h, Property: byID[h.PropertyID]})
	}
	return views, nil
}

// Get returns one holding with its property. Owner or admin only.
func (s *Service) Get(ctx context.Context, holdingID, actorID uuid.UUID, actorRole string) (*View, error) {
	var holding domain.Holding
	if err := s.DB.WithContext(ctx).Where("holding_id = ?", holdingID).First(&holding).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Holding not found")
		}
		return nil, err
	}
	if holding.UserID != actorID && actorRole != constants.Admin {
		return nil, apperr.Authorization("Unauthorized access to holding")
	}

	view := &View{Holding: holding}
	var property domain.Property
	if err := s.DB.WithContext(ctx).Where("property_id = ?", holding.PropertyID).First(&property).Error; err == nil {
		view.Property = &property
	}
	return view, nil
}
