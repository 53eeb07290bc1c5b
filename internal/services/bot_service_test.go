package services

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/rocaconstrucciones/backend/internal/config"
	"github.com/rocaconstrucciones/backend/internal/models"
	"gorm.io/gorm"
)

func seedBotUser(t *testing.T, db *gorm.DB) uuid.UUID {
	t.Helper()
	user := models.User{Email: "owner@example.com", PasswordHash: "x", Role: models.RoleAdmin, IsActive: true}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return user.ID
}

func TestBotUpsertConfig_TokenIssuedOnceAndStable(t *testing.T) {
	db := openTestDB(t)
	svc := NewBotService(db, &config.Config{})
	userID := seedBotUser(t, db)

	created, err := svc.UpsertConfig(userID, models.BotConfig{BotName: "Roca Bot"})
	if err != nil {
		t.Fatalf("UpsertConfig failed: %v", err)
	}
	if created.PublicToken == "" {
		t.Fatalf("public token not issued on create")
	}

	updated, err := svc.UpsertConfig(userID, models.BotConfig{BotName: "Roca Bot v2", SystemRole: "assistant"})
	if err != nil {
		t.Fatalf("UpsertConfig failed: %v", err)
	}
	if updated.PublicToken != created.PublicToken {
		t.Fatalf("public token changed on update: %s != %s", updated.PublicToken, created.PublicToken)
	}

	got, err := svc.GetConfig(userID)
	if err != nil {
		t.Fatalf("GetConfig failed: %v", err)
	}
	if got.BotName != "Roca Bot v2" || got.SystemRole != "assistant" {
		t.Fatalf("update not persisted: %+v", got)
	}
	if got.PublicToken != created.PublicToken {
		t.Fatalf("persisted token changed: %s", got.PublicToken)
	}
}

func TestBotGetConfig_NilWhenAbsent(t *testing.T) {
	db := openTestDB(t)
	svc := NewBotService(db, &config.Config{})

	cfg, err := svc.GetConfig(uuid.New())
	if err != nil {
		t.Fatalf("GetConfig failed: %v", err)
	}
	if cfg != nil {
		t.Fatalf("want nil config, got %+v", cfg)
	}
}

func TestBotGetContextByToken(t *testing.T) {
	db := openTestDB(t)
	svc := NewBotService(db, &config.Config{})
	userID := seedBotUser(t, db)

	created, err := svc.UpsertConfig(userID, models.BotConfig{
		BotName:         "Roca Bot",
		SystemRole:      "assistant",
		TonePersonality: "friendly",
		BusinessContext: "construction company",
		Constraints:     "never quote prices",
		FAQExamples:     "Q: hours? A: 9-5",
	})
	if err != nil {
		t.Fatalf("UpsertConfig failed: %v", err)
	}

	ctx, err := svc.GetContextByToken(created.PublicToken)
	if err != nil {
		t.Fatalf("GetContextByToken failed: %v", err)
	}
	if ctx.BotName != "Roca Bot" ||
		ctx.SystemRole != "assistant" ||
		ctx.Personality != "friendly" ||
		ctx.Context != "construction company" ||
		ctx.CriticalConstraints != "never quote prices" ||
		ctx.KnowledgeBase != "Q: hours? A: 9-5" {
		t.Fatalf("context view mismatch: %+v", ctx)
	}

	// The public view must not expose the owner or the token itself
	data, err := json.Marshal(ctx)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	for _, field := range []string{"user_id", "public_token", "id"} {
		if _, ok := m[field]; ok {
			t.Fatalf("public context leaks %q", field)
		}
	}
}

func TestBotGetContextByToken_Unknown(t *testing.T) {
	db := openTestDB(t)
	svc := NewBotService(db, &config.Config{})

	if _, err := svc.GetContextByToken(uuid.New().String()); err != ErrNotFound {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestForwardChat_RelaysMessageAndAnswer(t *testing.T) {
	var received map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &received); err != nil {
			t.Errorf("webhook got invalid JSON: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"answer":"We build houses."}`))
	}))
	defer server.Close()

	svc := NewBotService(openTestDB(t), &config.Config{ChatWebhookURL: server.URL})

	answer, err := svc.ForwardChat("What do you do?", "sess-1")
	if err != nil {
		t.Fatalf("ForwardChat failed: %v", err)
	}
	if string(answer) != `{"answer":"We build houses."}` {
		t.Fatalf("unexpected answer: %s", answer)
	}
	if received["message"] != "What do you do?" || received["sessionId"] != "sess-1" {
		t.Fatalf("webhook payload mismatch: %v", received)
	}
}

func TestForwardChat_WebhookErrors(t *testing.T) {
	t.Run("unconfigured", func(t *testing.T) {
		svc := NewBotService(openTestDB(t), &config.Config{})
		if _, err := svc.ForwardChat("hi", "s"); err == nil {
			t.Fatalf("want error when webhook is unconfigured")
		}
	})

	t.Run("non-2xx status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))
		defer server.Close()

		svc := NewBotService(openTestDB(t), &config.Config{ChatWebhookURL: server.URL})
		if _, err := svc.ForwardChat("hi", "s"); err == nil {
			t.Fatalf("want error on webhook 500")
		}
	})

	t.Run("invalid JSON answer", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<html>not json</html>"))
		}))
		defer server.Close()

		svc := NewBotService(openTestDB(t), &config.Config{ChatWebhookURL: server.URL})
		if _, err := svc.ForwardChat("hi", "s"); err == nil {
			t.Fatalf("want error on invalid JSON answer")
		}
	})
}
