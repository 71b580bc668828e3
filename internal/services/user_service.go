package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"orbit/internal/credential"
	apperrors "orbit/internal/errors"
	"orbit/internal/ledger"
	"orbit/internal/logger"
	"orbit/internal/mailer"
	"orbit/internal/models"
)

// UserServiceConfig carries the settings the credential flows depend on.
type UserServiceConfig struct {
	BcryptCost  int
	FrontendURL string
}

// userService handles user-related business logic.
type userService struct {
	db     *gorm.DB
	mailer mailer.Sender
	cfg    UserServiceConfig
	now    func() time.Time
}

// NewUserService creates a new UserServicer.
func NewUserService(db *gorm.DB, sender mailer.Sender, cfg UserServiceConfig) UserServicer {
	return &userService{db: db, mailer: sender, cfg: cfg, now: time.Now}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new user with an empty ledger.
func (s *userService) Register(name, email, password string) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "name, email and password are required")
	}

	var count int64
	if err := s.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateEmail
	}

	hash, err := credential.HashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	user := &models.User{
		Name:      name,
		Email:     email,
		Password:  hash,
		OrbitData: ledger.Ledger{},
	}
	if err := s.db.Create(user).Error; err != nil {
		// Lost a race with a concurrent signup for the same address.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrDuplicateEmail
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return user, nil
}

// Login verifies credentials. Unknown email and wrong password fail the same way.
func (s *userService) Login(email, password string) (*models.User, error) {
	var user models.User
	err := s.db.Where("email = ?", normalizeEmail(email)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			credential.BurnPasswordCheck(password, s.cfg.BcryptCost)
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if !credential.CheckPassword(user.Password, password) {
		return nil, apperrors.ErrInvalidCredentials
	}
	return &user, nil
}

// GetUserByID retrieves a user by ID
func (s *userService) GetUserByID(id string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.WithMessage(apperrors.ErrNotFound, "User not found")
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// CountUsers returns the number of registered users.
func (s *userService) CountUsers() (int64, error) {
	var count int64
	if err := s.db.Model(&models.User{}).Count(&count).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return count, nil
}

// ForgotPassword issues a reset token, replacing any earlier one, and mails
// the reset link. If delivery fails the token is cleared again.
func (s *userService) ForgotPassword(ctx context.Context, email string) error {
	var user models.User
	if err := s.db.Where("email = ?", normalizeEmail(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUserNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	tok, err := credential.IssueResetToken(s.now())
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := s.db.Model(&user).Updates(map[string]interface{}{
		"reset_password_token":  tok.Hash,
		"reset_password_expire": tok.ExpiresAt,
	}).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	link := fmt.Sprintf("%s/reset-password/%s", strings.TrimRight(s.cfg.FrontendURL, "/"), tok.Plaintext)
	msg, err := mailer.ResetPasswordMessage(user.Email, link)
	if err == nil {
		err = s.mailer.Send(ctx, msg)
	}
	if err != nil {
		logger.Get().Errorw("Password reset email failed", "user_id", user.ID, "error", err)
		if clearErr := s.clearResetToken(user.ID); clearErr != nil {
			logger.Get().Errorw("Failed to clear reset token", "user_id", user.ID, "error", clearErr)
		}
		return apperrors.Wrap(apperrors.ErrEmailSend, err)
	}
	return nil
}

func (s *userService) clearResetToken(userID string) error {
	return s.db.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"reset_password_token":  "",
		"reset_password_expire": nil,
	}).Error
}

// ResetPassword consumes a reset token and sets a new password. The token is
// checked and cleared by the same UPDATE, so it can be used at most once.
func (s *userService) ResetPassword(token, newPassword string) error {
	if newPassword == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "password is required")
	}
	hashed := credential.HashResetToken(token)

	var user models.User
	if err := s.db.Where("reset_password_token = ? AND reset_password_token <> ''", hashed).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrInvalidResetToken
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := credential.VerifyResetToken(user.ResetPasswordToken, user.ResetPasswordExpire, token, s.now()); err != nil {
		return apperrors.Wrap(apperrors.ErrInvalidResetToken, err)
	}

	passwordHash, err := credential.HashPassword(newPassword, s.cfg.BcryptCost)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	res := s.db.Model(&models.User{}).
		Where("id = ? AND reset_password_token = ?", user.ID, hashed).
		Updates(map[string]interface{}{
			"password":              passwordHash,
			"reset_password_token":  "",
			"reset_password_expire": nil,
		})
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrInvalidResetToken
	}
	return nil
}
