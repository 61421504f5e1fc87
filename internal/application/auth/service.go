package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"propshare-backend/internal/application/emails"
	"propshare-backend/internal/domain"
	"propshare-backend/internal/infrastructure/otpstore"
	"propshare-backend/internal/middleware"
	"propshare-backend/internal/pkg/apperr"
	"propshare-backend/internal/pkg/constants"
	"propshare-backend/internal/pkg/validation"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Service handles registration, login and password reset.
type Service struct {
	DB        *gorm.DB
	OTP       *otpstore.Store
	Mail      emails.Sender
	JWTSecret string
	TokenTTL  time.Duration
}

type RegisterInput struct {
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// Register creates an investor account.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	if !validation.IsValidFullname(in.Fullname) {
		return nil, apperr.Validation("A valid full name is required")
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if !validation.IsValidEmail(email) {
		return nil, apperr.Validation("A valid email is required")
	}
	if !validation.IsValidPassword(in.Password) {
		return nil, apperr.Validation("Password must be at least 8 characters with a letter, a number and a special character")
	}

	var existing domain.User
	err := s.DB.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil, apperr.Conflict("Email is already registered")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &domain.User{
		Fullname:     in.Fullname,
		Email:        email,
		PasswordHash: string(hash),
		Role:         constants.Investor,
	}
	if in.Phone != "" {
		user.Phone = &in.Phone
	}
	if err := s.DB.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// LoginResult carries the authenticated user and their bearer token.
type LoginResult struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}

// Login verifies credentials and issues a bearer token.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if email == "" || password == "" {
		return nil, apperr.Validation("Email and password are required")
	}
	var user domain.User
	if err := s.DB.WithContext(ctx).Where("email = ?", strings.ToLower(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Authorization("Invalid email or password")
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, apperr.Authorization("Invalid email or password")
	}

	token, err := middleware.SignToken(s.JWTSecret, user.UserID.String(), user.Role, s.TokenTTL)
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: &user, Token: token}, nil
}

// Me loads the caller's account.
func (s *Service) Me(ctx context.Context, userID string) (*domain.User, error) {
	var user domain.User
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, err
	}
	return &user, nil
}

// RequestPasswordReset stores a short-lived code for the account's email.
// Delivery is an external concern; the endpoint never discloses whether the
// email exists.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if !validation.IsValidEmail(email) {
		return apperr.Validation("A valid email is required")
	}

	var user domain.User
	if err := s.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	code, err := otpstore.GenerateCode()
	if err != nil {
		return err
	}
	if err := s.OTP.Put(ctx, email, code); err != nil {
		return err
	}
	if s.Mail != nil {
		if err := s.Mail.SendPasswordResetCode(ctx, email, user.Fullname, code, s.OTP.TTL); err != nil {
			log.Warn().Err(err).Str("email", email).Msg("reset code email failed")
		}
	}
	log.Info().Str("email", email).Msg("password reset code issued")
	return nil
}

// ResetPassword consumes the code and sets a new password.
func (s *Service) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if !validation.IsValidPassword(newPassword) {
		return apperr.Validation("Password must be at least 8 characters with a letter, a number and a special character")
	}

	ok, err := s.OTP.Verify(ctx, email, code)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Authorization("Invalid or expired reset code")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	res := s.DB.WithContext(ctx).Model(&domain.User{}).
		Where("email = ?", email).
		Update("password_hash", string(hash))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("User not found")
	}
	return nil
}
