package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/nattapon/inkwell/internal/models"
	"github.com/nattapon/inkwell/internal/store"
)

// ResetTokenTTL bounds how long an issued reset link stays usable.
const ResetTokenTTL = time.Hour

// UserStore defines the interface for account persistence.
type UserStore interface {
	CreateUser(ctx context.Context, name, email, hashedPw string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetUserByResetToken(ctx context.Context, token string) (*models.User, error)
	SetResetToken(ctx context.Context, userID primitive.ObjectID, token string, expiresAt time.Time) error
	ResetPassword(ctx context.Context, userID primitive.ObjectID, newHash string) error
}

// Notifier delivers the reset link to the account's email address.
type Notifier interface {
	Send(to, subject, htmlBody string) error
}

// Service implements registration, login and the password-reset state
// machine (NoToken -> TokenIssued -> NoToken).
type Service struct {
	users    UserStore
	notifier Notifier
	baseURL  string
}

func NewService(users UserStore, notifier Notifier, baseURL string) *Service {
	return &Service{users: users, notifier: notifier, baseURL: baseURL}
}

// Register creates a new account. Returns store.ErrConflict when the
// email is already taken.
func (s *Service) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return s.users.CreateUser(ctx, name, email, string(hashed))
}

// GetUser loads an account by id.
func (s *Service) GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.users.GetUserByID(ctx, id)
}

// Login verifies the credentials and returns the account.
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// RequestReset issues a fresh single-use reset token for the account
// with the given email and mails the reset link. The token is persisted
// before the mail goes out: if delivery fails the caller gets
// ErrNotificationFailed but the token stays valid, and a retried
// request simply overwrites it.
func (s *Service) RequestReset(ctx context.Context, email string) error {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}

	token, err := newResetToken()
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}
	if err := s.users.SetResetToken(ctx, user.ID, token, time.Now().Add(ResetTokenTTL)); err != nil {
		return err
	}

	link := fmt.Sprintf("%s/reset-password/%s", s.baseURL, token)
	body := fmt.Sprintf("<p>Click this link to reset your password: <a href=%q>Reset password</a><br>Thank you!</p>", link)
	if err := s.notifier.Send(user.Email, "Password reset", body); err != nil {
		return fmt.Errorf("%w: %v", ErrNotificationFailed, err)
	}
	return nil
}

// ValidateResetToken returns the account holding a still-valid token,
// or ErrInvalidToken for unknown, consumed or expired tokens.
func (s *Service) ValidateResetToken(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	user, err := s.users.GetUserByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if !user.ResetTokenExpiresAt.IsZero() && time.Now().After(user.ResetTokenExpiresAt) {
		return nil, ErrInvalidToken
	}
	return user, nil
}

// CompleteReset consumes a reset token and stores the new password.
// The mismatch check runs before the token lookup, so a bad submission
// never burns the token.
func (s *Service) CompleteReset(ctx context.Context, token, newPassword, confirmPassword string) error {
	if newPassword != confirmPassword {
		return ErrPasswordMismatch
	}
	user, err := s.ValidateResetToken(ctx, token)
	if err != nil {
		return err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.users.ResetPassword(ctx, user.ID, string(hashed))
}
