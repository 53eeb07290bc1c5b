package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rocaconstrucciones/backend/internal/config"
	"github.com/rocaconstrucciones/backend/internal/models"
	"github.com/rocaconstrucciones/backend/pkg/crypto"
	jwtpkg "github.com/rocaconstrucciones/backend/pkg/jwt"
	"gorm.io/gorm"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type AuthService struct {
	db    *gorm.DB
	redis *redis.Client
	cfg   *config.Config
}

func NewAuthService(db *gorm.DB, redis *redis.Client, cfg *config.Config) *AuthService {
	return &AuthService{
		db:    db,
		redis: redis,
		cfg:   cfg,
	}
}

// Login authenticates a user by email and password and issues a session token
func (s *AuthService) Login(email, password string) (string, *models.User, error) {
	var user models.User

	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if !user.IsActive {
		return "", nil, ErrInvalidCredentials
	}

	if !crypto.CheckPassword(password, user.PasswordHash) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := jwtpkg.GenerateToken(user.ID.String(), jwtpkg.SessionToken, s.cfg.JWTSecret, s.cfg.SessionDuration)
	if err != nil {
		return "", nil, err
	}

	now := time.Now().UTC()
	if err := s.db.Model(&user).Update("last_login", now).Error; err != nil {
		log.Printf("WARN: failed to update last_login for %s: %v", user.Email, err)
	}
	user.LastLogin = &now

	return token, &user, nil
}

// Logout invalidates a session token by blacklisting it for its remaining TTL
func (s *AuthService) Logout(token string) error {
	claims, err := jwtpkg.ValidateToken(token, s.cfg.JWTSecret)
	if err != nil {
		// already unusable
		return nil
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}

	ctx := context.Background()
	blacklistKey := fmt.Sprintf("blacklist:token:%s", token)
	if err := s.redis.Set(ctx, blacklistKey, 1, ttl).Err(); err != nil {
		log.Printf("WARN: could not blacklist token in Redis: %v", err)
	}
	return nil
}

// ValidateSessionToken validates a session token and returns its claims
func (s *AuthService) ValidateSessionToken(token string) (*jwtpkg.Claims, error) {
	claims, err := jwtpkg.ValidateToken(token, s.cfg.JWTSecret)
	if err != nil {
		return nil, err
	}

	if claims.TokenType != jwtpkg.SessionToken {
		return nil, errors.New("invalid token type")
	}

	// If redis is down the blacklist check is skipped and the request proceeds
	ctx := context.Background()
	blacklistKey := fmt.Sprintf("blacklist:token:%s", token)
	exists, err := s.redis.Exists(ctx, blacklistKey).Result()
	if err != nil {
		log.Printf("WARN: could not connect to Redis to check token blacklist: %v", err)
	} else if exists > 0 {
		return nil, errors.New("token is blacklisted")
	}

	return claims, nil
}

// GetUserByID retrieves a user by ID
func (s *AuthService) GetUserByID(userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
