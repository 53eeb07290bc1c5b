package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rocaconstrucciones/backend/internal/middleware"
	"github.com/rocaconstrucciones/backend/internal/models"
	"github.com/rocaconstrucciones/backend/internal/services"
)

type BotHandler struct {
	botService *services.BotService
}

func NewBotHandler(botService *services.BotService) *BotHandler {
	return &BotHandler{botService: botService}
}

// GetConfig returns the calling user's bot config, or {} when none exists
// GET /bot/config
func (h *BotHandler) GetConfig(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	cfg, err := h.botService.GetConfig(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if cfg == nil {
		c.JSON(http.StatusOK, gin.H{})
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// UpdateConfig creates or updates the calling user's bot config
// PUT /bot/config
func (h *BotHandler) UpdateConfig(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req struct {
		BotName         string `json:"bot_name"`
		SystemRole      string `json:"system_role"`
		TonePersonality string `json:"tone_personality"`
		BusinessContext string `json:"business_context"`
		Constraints     string `json:"constraints"`
		FAQExamples     string `json:"faq_examples"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cfg, err := h.botService.UpsertConfig(user.ID, models.BotConfig{
		BotName:         req.BotName,
		SystemRole:      req.SystemRole,
		TonePersonality: req.TonePersonality,
		BusinessContext: req.BusinessContext,
		Constraints:     req.Constraints,
		FAQExamples:     req.FAQExamples,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, cfg)
}

// GetContext serves the public, token-authorized context view
// GET /bot/context/:token
func (h *BotHandler) GetContext(c *gin.Context) {
	token := c.Param("token")

	ctx, err := h.botService.GetContextByToken(token)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Invalid Token"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, ctx)
}

// Chat proxies a visitor message to the external chat webhook
// POST /bot/chat
func (h *BotHandler) Chat(c *gin.Context) {
	var req struct {
		Message   string `json:"message" binding:"required"`
		SessionID string `json:"sessionId"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}

	answer, err := h.botService.ForwardChat(req.Message, req.SessionID)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Chat service unavailable"})
		return
	}

	c.Data(http.StatusOK, "application/json", answer)
}
