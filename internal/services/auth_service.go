package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go-pos-retail/internal/auth"
	"go-pos-retail/internal/models"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// RegisterRequest creates a staff account.
type RegisterRequest struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type AuthService struct {
	db     *gorm.DB
	log    *zap.Logger
	tokens *auth.Issuer
}

func NewAuthService(db *gorm.DB, log *zap.Logger, tokens *auth.Issuer) *AuthService {
	return &AuthService{db: db, log: log.Named("auth.service"), tokens: tokens}
}

// Login checks the password and returns a signed token.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	// 1. Find User in DB
	var user models.User
	err := s.db.WithContext(ctx).Where("username = ?", strings.TrimSpace(username)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	// 2. Verify Password (Bcrypt)
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	// 3. Generate JWT Token
	token, err := s.tokens.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		return "", nil, err
	}
	s.log.Info("staff logged in", zap.Uint("user_id", user.ID), zap.String("role", user.Role))
	return token, &user, nil
}

// Register creates a non-admin staff account. Role defaults to cashier.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || len(req.Password) < 6 {
		return nil, fmt.Errorf("%w: username and a password of at least 6 characters are required", ErrValidation)
	}
	role := strings.ToLower(strings.TrimSpace(req.Role))
	switch role {
	case "":
		role = "cashier"
	case "cashier", "manager":
	default:
		return nil, fmt.Errorf("%w: role %q cannot self-register", ErrValidation, req.Role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := models.User{
		Username:     username,
		Name:         strings.TrimSpace(req.Name),
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, fmt.Errorf("%w: username %s already exists", ErrDuplicate, username)
		}
		return nil, err
	}
	s.log.Info("staff registered", zap.Uint("user_id", user.ID), zap.String("role", role))
	return &user, nil
}
