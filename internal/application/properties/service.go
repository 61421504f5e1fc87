package properties

import (
	"context"
	"errors"

	"propshare-backend/internal/domain"
	"propshare-backend/internal/pkg/apperr"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Service struct {
	DB *gorm.DB
}

// List returns all properties, newest first.
func (s *Service) List(ctx context.Context) ([]domain.Property, error) {
	var properties []domain.Property
	if err := s.DB.WithContext(ctx).Order("\"createdAt\" DESC").Find(&properties).Error; err != nil {
		return nil, err
	}
	return properties, nil
}

// Get returns one property by id.
func (s *Service) Get(ctx context.Context, propertyID uuid.UUID) (*domain.Property, error) {
	var property domain.Property
	if err := s.DB.WithContext(ctx).Where("property_id = ?", propertyID).First(&property).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Property not found")
		}
		return nil, err
	}
	return &property, nil
}

type CreateInput struct {
	Title       string
	Address     string
	City        string
	Country     string
	Description string
	TotalValue  decimal.Decimal
}

// Create lists a new property (admin only, enforced at the route).
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Property, error) {
	if in.Title == "" || in.Address == "" || in.City == "" || in.Country == "" {
		return nil, apperr.Validation("Title, address, city and country are required")
	}
	if !in.TotalValue.IsPositive() {
		return nil, apperr.Validation("Total value must be a positive number")
	}
	property := &domain.Property{
		Title:       in.Title,
		Address:     in.Address,
		City:        in.City,
		Country:     in.Country,
		Description: in.Description,
		TotalValue:  in.TotalValue,
		Status:      domain.PropertyListed,
	}
	if err := s.DB.WithContext(ctx).Create(property).Error; err != nil {
		return nil, err
	}
	return property, nil
}

type UpdateInput struct {
	Title       *string
	Description *string
	Status      *string
}

// Update patches mutable fields on a property.
func (s *Service) Update(ctx context.Context, propertyID uuid.UUID, in UpdateInput) (*domain.Property, error) {
	property, err := s.Get(ctx, propertyID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Title != nil {
		if *in.Title == "" {
			return nil, apperr.Validation("Title cannot be empty")
		}
		updates["title"] = *in.Title
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.Status != nil {
		switch *in.Status {
		case domain.PropertyListed, domain.PropertyFunded, domain.PropertyClosed:
		default:
			return nil, apperr.Validation("Unknown property status")
		}
		updates["status"] = *in.Status
	}
	if len(updates) == 0 {
		return property, nil
	}

	if err := s.DB.WithContext(ctx).Model(&domain.Property{}).
		Where("property_id = ?", propertyID).
		Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.Get(ctx, propertyID)
}
