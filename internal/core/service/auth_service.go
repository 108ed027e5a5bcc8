package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/safebase/safebase/internal/core/domain"
	"github.com/safebase/safebase/internal/core/repository"
	"github.com/safebase/safebase/internal/infrastructure/sqlite"
	"golang.org/x/crypto/bcrypt"
)

const (
	BcryptCost        = 10
	MinPasswordLength = 6
)

type AuthService struct {
	userRepo  repository.UserRepository
	jwtSecret string
	tokenTTL  time.Duration
}

func NewAuthService(userRepo repository.UserRepository, jwtSecret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
	}
}

// HashPassword hashes a password using bcrypt
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword verifies a password against a hash
func (s *AuthService) VerifyPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// Register creates a user and returns it with a fresh token.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*domain.User, string, error) {
	if name == "" || email == "" {
		return nil, "", Validationf("name and email are required")
	}
	if len(password) < MinPasswordLength {
		return nil, "", Validationf("password must be at least %d characters", MinPasswordLength)
	}

	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, "", Conflictf("email already registered: %s", email)
	}

	hashed, err := s.HashPassword(password)
	if err != nil {
		return nil, "", err
	}

	user := domain.NewUser(name, email, hashed)
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.generateJWT(user.ID)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// Login validates credentials and returns the user with a fresh token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", Unauthorizedf("invalid credentials")
	}

	if !s.VerifyPassword(password, user.Password) {
		return nil, "", Unauthorizedf("invalid credentials")
	}

	token, err := s.generateJWT(user.ID)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// GetUser returns the user owning a validated token subject.
func (s *AuthService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if errors.Is(err, sqlite.ErrNotFound) {
		return nil, Unauthorizedf("unknown user")
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateProfile changes name and email.
func (s *AuthService) UpdateProfile(ctx context.Context, userID, name, email string) (*domain.User, error) {
	if name == "" || email == "" {
		return nil, Validationf("name and email are required")
	}

	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if email != user.Email {
		if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
			return nil, Conflictf("email already registered: %s", email)
		}
	}

	user.Name = name
	user.Email = email
	user.UpdatedAt = time.Now().UTC()
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

// ChangePassword verifies the current password before replacing it.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}

	if !s.VerifyPassword(currentPassword, user.Password) {
		return Unauthorizedf("current password is incorrect")
	}
	if len(newPassword) < MinPasswordLength {
		return Validationf("password must be at least %d characters", MinPasswordLength)
	}

	hashed, err := s.HashPassword(newPassword)
	if err != nil {
		return err
	}

	user.Password = hashed
	user.UpdatedAt = time.Now().UTC()
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}

// ValidateToken validates a JWT token and returns the claims
func (s *AuthService) ValidateToken(tokenString string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, Unauthorizedf("invalid token")
	}

	if claims, ok := token.Claims.(*TokenClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, Unauthorizedf("invalid token claims")
}

func (s *AuthService) generateJWT(userID string) (string, error) {
	now := time.Now()

	claims := TokenClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "safebase",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// TokenClaims represents JWT claims
type TokenClaims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}
