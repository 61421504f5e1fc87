package contact

import (
	"context"
	"errors"
	"time"

	"propshare-backend/internal/application/emails"
	"propshare-backend/internal/domain"
	"propshare-backend/internal/pkg/apperr"
	"propshare-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Service encapsulates contact-owner messaging.
type Service struct {
	DB   *gorm.DB
	Mail emails.Sender
}

type CreateInput struct {
	UserID            uuid.UUID
	HoldingID         uuid.UUID
	Subject           string
	Body              string
	ContactPreference string
}

// Create files an inquiry about a holding the sender owns. Status pending.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.ContactMessage, error) {
	if in.Subject == "" {
		return nil, apperr.Validation("Subject is required")
	}
	if !validation.IsValidMessageBody(in.Body) {
		return nil, apperr.Validation("Message must be at least 20 characters")
	}
	pref := in.ContactPreference
	if pref == "" {
		pref = domain.PreferEmail
	}
	if pref != domain.PreferEmail && pref != domain.PreferPhone {
		return nil, apperr.Validation("Contact preference must be email or phone")
	}

	var holding domain.Holding
	if err := s.DB.WithContext(ctx).Where("holding_id = ?", in.HoldingID).First(&holding).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Holding not found")
		}
		return nil, err
	}
	if holding.UserID != in.UserID {
		return nil, apperr.Authorization("Holding is not owned by the sender")
	}

	msg := &domain.ContactMessage{
		UserID:            in.UserID,
		HoldingID:         holding.HoldingID,
		PropertyID:        holding.PropertyID,
		Subject:           in.Subject,
		Body:              in.Body,
		ContactPreference: pref,
		Status:            domain.ContactPending,
	}
	if err := s.DB.WithContext(ctx).Create(msg).Error; err != nil {
		return nil, err
	}
	return msg, nil
}

// MarkRead moves pending -> read. Idempotent: any other status is a no-op.
func (s *Service) MarkRead(ctx context.Context, messageID uuid.UUID) (*domain.ContactMessage, error) {
	if _, err := s.get(ctx, messageID); err != nil {
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Model(&domain.ContactMessage{}).
		Where("message_id = ? AND status = ?", messageID, domain.ContactPending).
		Update("status", domain.ContactRead).Error; err != nil {
		return nil, err
	}
	return s.get(ctx, messageID)
}

type RespondInput struct {
	MessageID uuid.UUID
	AdminID   uuid.UUID
	Message   string
	NewStatus string
	Notes     *string
}

// Respond attaches an admin response and sets the requested status.
func (s *Service) Respond(ctx context.Context, in RespondInput) (*domain.ContactMessage, error) {
	if in.Message == "" {
		return nil, apperr.Validation("Response message is required")
	}
	if !domain.IsValidContactStatus(in.NewStatus) || in.NewStatus == domain.ContactPending {
		return nil, apperr.Validation("Status must be read, replied, resolved or closed")
	}

	if _, err := s.get(ctx, in.MessageID); err != nil {
		return nil, err
	}

	now := time.Now()
	updates := map[string]interface{}{
		"response_message": in.Message,
		"responded_by":     in.AdminID,
		"responded_at":     now,
		"status":           in.NewStatus,
	}
	if in.Notes != nil {
		updates["admin_notes"] = in.Notes
	}
	if err := s.DB.WithContext(ctx).Model(&domain.ContactMessage{}).
		Where("message_id = ?", in.MessageID).
		Updates(updates).Error; err != nil {
		return nil, err
	}

	msg, err := s.get(ctx, in.MessageID)
	if err != nil {
		return nil, err
	}
	if s.Mail != nil && msg.ContactPreference == domain.PreferEmail {
		var sender domain.User
		if err := s.DB.WithContext(ctx).Where("user_id = ?", msg.UserID).First(&sender).Error; err == nil {
			if err := s.Mail.SendContactResponse(ctx, sender.Email, sender.Fullname, msg.Subject); err != nil {
				log.Warn().Err(err).Str("message_id", msg.MessageID.String()).Msg("contact response email failed")
			}
		}
	}
	return msg, nil
}

// UpdateStatus sets a status directly, without a response body (e.g. closing
// without replying). Any-to-any by explicit admin action.
func (s *Service) UpdateStatus(ctx context.Context, messageID uuid.UUID, newStatus string, notes *string) (*domain.ContactMessage, error) {
	if !domain.IsValidContactStatus(newStatus) {
		return nil, apperr.Validation("Unknown message status")
	}
	if _, err := s.get(ctx, messageID); err != nil {
		return nil, err
	}
	updates := map[string]interface{}{"status": newStatus}
	if notes != nil {
		updates["admin_notes"] = notes
	}
	if err := s.DB.WithContext(ctx).Model(&domain.ContactMessage{}).
		Where("message_id = ?", messageID).
		Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.get(ctx, messageID)
}

// ListForUser returns the user's own messages, newest first.
func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID, status string) ([]domain.ContactMessage, error) {
	q := s.DB.WithContext(ctx).Where("user_id = ?", userID)
	var err error
	if q, err = filterStatus(q, status); err != nil {
		return nil, err
	}
	var messages []domain.ContactMessage
	if err := q.Order("\"createdAt\" DESC").Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

// AdminListing is the admin view: messages plus per-status counts.
type AdminListing struct {
	Messages []domain.ContactMessage `json:"messages"`
	Counts   map[string]int64        `json:"counts"`
	Total    int64                   `json:"total"`
}

// ListForAdmin returns all messages (optionally filtered) with status counts
// taken over the whole table, not the filtered slice.
func (s *Service) ListForAdmin(ctx context.Context, status string) (*AdminListing, error) {
	q := s.DB.WithContext(ctx).Model(&domain.ContactMessage{})
	var err error
	if q, err = filterStatus(q, status); err != nil {
		return nil, err
	}
	var messages []domain.ContactMessage
	if err := q.Order("\"createdAt\" DESC").Find(&messages).Error; err != nil {
		return nil, err
	}

	type statusCount struct {
		Status string
		Count  int64
	}
	var rows []statusCount
	if err := s.DB.WithContext(ctx).Model(&domain.ContactMessage{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[string]int64)
	var total int64
	for _, r := range rows {
		counts[r.Status] = r.Count
		total += r.Count
	}
	return &AdminListing{Messages: messages, Counts: counts, Total: total}, nil
}

func (s *Service) get(ctx context.Context, messageID uuid.UUID) (*domain.ContactMessage, error) {
	var msg domain.ContactMessage
	if err := s.DB.WithContext(ctx).Where("message_id = ?", messageID).First(&msg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Message not found")
		}
		return nil, err
	}
	return &msg, nil
}

func filterStatus(q *gorm.DB, status string) (*gorm.DB, error) {
	if status == "" {
		return q, nil
	}
	if !domain.IsValidContactStatus(status) {
		return nil, apperr.Validation("Unknown message status")
	}
	return q.Where("status = ?", status), nil
}
