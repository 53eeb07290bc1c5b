package services

import (
	"errors"

	"github.com/google/uuid"
	"github.com/rocaconstrucciones/backend/internal/config"
	"github.com/rocaconstrucciones/backend/internal/models"
	"github.com/rocaconstrucciones/backend/pkg/crypto"
	"gorm.io/gorm"
)

var ErrEmailTaken = errors.New("email already exists")

type UserService struct {
	db  *gorm.DB
	cfg *config.Config
}

func NewUserService(db *gorm.DB, cfg *config.Config) *UserService {
	return &UserService{db: db, cfg: cfg}
}

// UserUpdate carries the optional fields of a partial update
type UserUpdate struct {
	Email    *string
	FullName *string
	Role     *string
	IsActive *bool
}

// GetAll returns all users, newest first
func (s *UserService) GetAll() ([]models.User, error) {
	var users []models.User
	if err := s.db.Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// GetByID returns a single user
func (s *UserService) GetByID(id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// Create inserts a new user with a hashed password
func (s *UserService) Create(email, password, fullName, role string) (*models.User, error) {
	var count int64
	if err := s.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}

	hash, err := crypto.HashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		FullName:     fullName,
		Role:         role,
		IsActive:     true,
	}
	if err := s.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// Update applies a partial update; only supplied fields are touched
func (s *UserService) Update(id uuid.UUID, upd UserUpdate) (*models.User, error) {
	user, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	var cols []string
	if upd.Email != nil {
		var count int64
		if err := s.db.Model(&models.User{}).
			Where("email = ? AND id != ?", *upd.Email, id).
			Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, ErrEmailTaken
		}
		user.Email = *upd.Email
		cols = append(cols, "email")
	}
	if upd.FullName != nil {
		user.FullName = *upd.FullName
		cols = append(cols, "full_name")
	}
	if upd.Role != nil {
		user.Role = *upd.Role
		cols = append(cols, "role")
	}
	if upd.IsActive != nil {
		user.IsActive = *upd.IsActive
		cols = append(cols, "is_active")
	}

	if len(cols) == 0 {
		return user, nil
	}

	if err := s.db.Model(user).Select(cols).Updates(*user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePassword replaces a user's password hash
func (s *UserService) ChangePassword(id uuid.UUID, password string) error {
	hash, err := crypto.HashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		return err
	}

	result := s.db.Model(&models.User{}).Where("id = ?", id).Update("password_hash", hash)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a user
func (s *UserService) Delete(id uuid.UUID) error {
	result := s.db.Delete(&models.User{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
