package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BotConfig holds the chatbot prompt material for one user. PublicToken is
// the capability token for the unauthenticated context endpoint; it is issued
// once at create and never regenerated.
type BotConfig struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID          uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	BotName         string    `gorm:"size:255" json:"bot_name"`
	SystemRole      string    `gorm:"type:text" json:"system_role"`
	TonePersonality string    `gorm:"type:text" json:"tone_personality"`
	BusinessContext string    `gorm:"type:text" json:"business_context"`
	Constraints     string    `gorm:"type:text" json:"constraints"`
	FAQExamples     string    `gorm:"type:text" json:"faq_examples"`
	PublicToken     string    `gorm:"uniqueIndex;not null" json:"public_token"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (b *BotConfig) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.PublicToken == "" {
		b.PublicToken = uuid.New().String()
	}
	return nil
}
