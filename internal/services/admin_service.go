package services

import (
	"errors"
	"log"

	"github.com/rocaconstrucciones/backend/internal/config"
	"github.com/rocaconstrucciones/backend/internal/models"
	"github.com/rocaconstrucciones/backend/pkg/crypto"
	"gorm.io/gorm"
)

type AdminService struct {
	db  *gorm.DB
	cfg *config.Config
}

func NewAdminService(db *gorm.DB, cfg *config.Config) *AdminService {
	return &AdminService{db: db, cfg: cfg}
}

// EnsureAdminUser provisions the admin account from configuration. It is
// idempotent: an existing account is left alone unless AdminForceReset is
// set, in which case its password is re-hashed from AdminPassword.
func (s *AdminService) EnsureAdminUser() error {
	var admin models.User
	err := s.db.Where("email = ?", s.cfg.AdminEmail).First(&admin).Error

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		hash, herr := crypto.HashPassword(s.cfg.AdminPassword, s.cfg.BcryptCost)
		if herr != nil {
			return herr
		}
		admin = models.User{
			Email:        s.cfg.AdminEmail,
			PasswordHash: hash,
			FullName:     "Administrator",
			Role:         models.RoleAdmin,
			IsActive:     true,
		}
		if cerr := s.db.Create(&admin).Error; cerr != nil {
			return cerr
		}
		log.Printf("Default admin created: %s", s.cfg.AdminEmail)
		return nil
	}

	if s.cfg.AdminForceReset {
		hash, herr := crypto.HashPassword(s.cfg.AdminPassword, s.cfg.BcryptCost)
		if herr != nil {
			return herr
		}
		if uerr := s.db.Model(&admin).Update("password_hash", hash).Error; uerr != nil {
			return uerr
		}
		log.Printf("Admin password reset for %s (ADMIN_FORCE_RESET)", s.cfg.AdminEmail)
	}

	return nil
}
