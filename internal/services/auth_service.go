package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/finbooks/finbooks/internal/auth"
	"github.com/finbooks/finbooks/internal/models"
	"github.com/finbooks/finbooks/pkg/crypto"
)

var (
	// ErrInvalidLogin indicates the email/password pair did not match.
	ErrInvalidLogin = errors.New("auth service: invalid credentials")
	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = errors.New("auth service: user not found")
	// ErrEmailTaken rejects registering an email twice.
	ErrEmailTaken = errors.New("auth service: email already registered")
)

// AuthService owns user accounts and session token issuance.
type AuthService struct {
	db  *gorm.DB
	jwt *auth.JWTService
}

// NewAuthService constructs an auth service.
func NewAuthService(db *gorm.DB, jwt *auth.JWTService) (*AuthService, error) {
	if db == nil {
		return nil, errors.New("auth service: db is required")
	}
	if jwt == nil {
		return nil, errors.New("auth service: jwt service is required")
	}
	return &AuthService{db: db, jwt: jwt}, nil
}

// RegisterInput captures the fields accepted when creating a user account.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

// Session bundles an issued token with its user.
type Session struct {
	Token string
	User  *models.User
}

// Register creates a user account with a bcrypt hashed password.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	if s == nil {
		return nil, errors.New("auth service: service not initialised")
	}
	ctx = ensuredContext(ctx)

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: a valid email is required", ErrValidation)
	}
	if len(input.Password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", ErrValidation)
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}

	hash, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Email:    email,
		Password: hash,
		Name:     strings.TrimSpace(input.Name),
		IsActive: true,
	}

	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Login verifies credentials and issues an access token. Inactive accounts
// and unknown emails fail identically so the response leaks nothing.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	if s == nil {
		return nil, errors.New("auth service: service not initialised")
	}
	ctx = ensuredContext(ctx)

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrInvalidLogin
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidLogin
		}
		return nil, err
	}

	if !user.IsActive || !crypto.VerifyPassword(user.Password, password) {
		return nil, ErrInvalidLogin
	}

	token, err := s.jwt.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	return &Session{Token: token, User: &user}, nil
}

// GetUser retrieves a user by identifier.
func (s *AuthService) GetUser(ctx context.Context, id string) (*models.User, error) {
	if s == nil {
		return nil, errors.New("auth service: service not initialised")
	}
	ctx = ensuredContext(ctx)

	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: id is required", ErrValidation)
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// TokenTTL exposes the access token lifetime for cookie expiry.
func (s *AuthService) TokenTTL() int {
	if s == nil || s.jwt == nil {
		return 0
	}
	return int(s.jwt.TTL().Seconds())
}
