package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rocaconstrucciones/backend/internal/config"
	"github.com/rocaconstrucciones/backend/internal/models"
	"gorm.io/gorm"
)

// BotContext is the public, token-authorized view of a bot configuration,
// shaped for consumption by the external chat workflow
type BotContext struct {
	BotName             string `json:"botName"`
	SystemRole          string `json:"systemRole"`
	Personality         string `json:"personality"`
	Context             string `json:"context"`
	CriticalConstraints string `json:"criticalConstraints"`
	KnowledgeBase       string `json:"knowledgeBase"`
}

type BotService struct {
	db     *gorm.DB
	cfg    *config.Config
	client *http.Client
}

func NewBotService(db *gorm.DB, cfg *config.Config) *BotService {
	return &BotService{
		db:  db,
		cfg: cfg,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// GetConfig returns the bot config for a user, or nil when none exists yet
func (s *BotService) GetConfig(userID uuid.UUID) (*models.BotConfig, error) {
	var cfg models.BotConfig
	if err := s.db.Where("user_id = ?", userID).First(&cfg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cfg, nil
}

// UpsertConfig creates or updates the user's bot config. The public token is
// issued on create and never changes afterwards.
func (s *BotService) UpsertConfig(userID uuid.UUID, in models.BotConfig) (*models.BotConfig, error) {
	existing, err := s.GetConfig(userID)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		cfg := models.BotConfig{
			UserID:          userID,
			BotName:         in.BotName,
			SystemRole:      in.SystemRole,
			TonePersonality: in.TonePersonality,
			BusinessContext: in.BusinessContext,
			Constraints:     in.Constraints,
			FAQExamples:     in.FAQExamples,
		}
		if err := s.db.Create(&cfg).Error; err != nil {
			return nil, err
		}
		return &cfg, nil
	}

	updates := map[string]interface{}{
		"bot_name":         in.BotName,
		"system_role":      in.SystemRole,
		"tone_personality": in.TonePersonality,
		"business_context": in.BusinessContext,
		"constraints":      in.Constraints,
		"faq_examples":     in.FAQExamples,
	}
	if err := s.db.Model(existing).Updates(updates).Error; err != nil {
		return nil, err
	}
	return existing, nil
}

// GetContextByToken resolves a capability token to the public context view
func (s *BotService) GetContextByToken(token string) (*BotContext, error) {
	var cfg models.BotConfig
	if err := s.db.Where("public_token = ?", token).First(&cfg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &BotContext{
		BotName:             cfg.BotName,
		SystemRole:          cfg.SystemRole,
		Personality:         cfg.TonePersonality,
		Context:             cfg.BusinessContext,
		CriticalConstraints: cfg.Constraints,
		KnowledgeBase:       cfg.FAQExamples,
	}, nil
}

// ForwardChat relays a visitor message to the configured chat webhook and
// returns the raw JSON answer
func (s *BotService) ForwardChat(message, sessionID string) (json.RawMessage, error) {
	if s.cfg.ChatWebhookURL == "" {
		return nil, errors.New("chat webhook not configured")
	}

	payload, err := json.Marshal(map[string]string{
		"message":   message,
		"sessionId": sessionID,
	})
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Post(s.cfg.ChatWebhookURL, "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("chat webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("chat webhook read failed: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("chat webhook returned status %d", resp.StatusCode)
	}

	if !json.Valid(body) {
		return nil, errors.New("chat webhook returned invalid JSON")
	}
	return json.RawMessage(body), nil
}
