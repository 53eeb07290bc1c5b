package services

import (
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rocaconstrucciones/backend/internal/config"
	"github.com/rocaconstrucciones/backend/internal/models"
	"github.com/rocaconstrucciones/backend/pkg/crypto"
	"gorm.io/gorm"
)

// unreachableRedis returns a client whose commands always fail, which
// exercises the fail-open path
func unreachableRedis() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
}

func newAuthService(t *testing.T) (*AuthService, *gorm.DB) {
	t.Helper()
	db := openTestDB(t)
	cfg := &config.Config{
		JWTSecret:       "test-secret",
		SessionDuration: time.Hour,
		BcryptCost:      4,
	}
	return NewAuthService(db, unreachableRedis(), cfg), db
}

func seedAuthUser(t *testing.T, db *gorm.DB, email, password string, active bool) *models.User {
	t.Helper()
	hash, err := crypto.HashPassword(password, 4)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	user := &models.User{Email: email, PasswordHash: hash, Role: models.RoleAdmin, IsActive: active}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return user
}

func TestLogin_IssuesValidSessionToken(t *testing.T) {
	svc, db := newAuthService(t)
	seedAuthUser(t, db, "ana@example.com", "secret-password", true)

	token, user, err := svc.Login("ana@example.com", "secret-password")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if token == "" {
		t.Fatalf("empty token")
	}
	if user.LastLogin == nil {
		t.Fatalf("last_login not set")
	}

	claims, err := svc.ValidateSessionToken(token)
	if err != nil {
		t.Fatalf("issued token does not validate: %v", err)
	}
	if claims.UserID != user.ID.String() {
		t.Fatalf("claims carry user %s, want %s", claims.UserID, user.ID)
	}
}

func TestLogin_RejectsBadCredentials(t *testing.T) {
	svc, db := newAuthService(t)
	seedAuthUser(t, db, "ana@example.com", "secret-password", true)
	seedAuthUser(t, db, "off@example.com", "secret-password", false)

	cases := []struct {
		name     string
		email    string
		password string
	}{
		{"wrong password", "ana@example.com", "not-the-password"},
		{"unknown email", "ghost@example.com", "secret-password"},
		{"deactivated account", "off@example.com", "secret-password"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := svc.Login(tc.email, tc.password); err != ErrInvalidCredentials {
				t.Fatalf("want ErrInvalidCredentials, got %v", err)
			}
		})
	}
}

func TestValidateSessionToken_RejectsGarbage(t *testing.T) {
	svc, _ := newAuthService(t)
	for _, token := range []string{"", "garbage", "a.b.c"} {
		if _, err := svc.ValidateSessionToken(token); err == nil {
			t.Fatalf("token %q should not validate", token)
		}
	}
}

func TestValidateSessionToken_FailsOpenWithoutRedis(t *testing.T) {
	svc, db := newAuthService(t)
	seedAuthUser(t, db, "ana@example.com", "secret-password", true)

	token, _, err := svc.Login("ana@example.com", "secret-password")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	// Logout cannot blacklist when redis is unreachable; the session still
	// validates until it expires.
	if err := svc.Logout(token); err != nil {
		t.Fatalf("Logout should not raise: %v", err)
	}
	if _, err := svc.ValidateSessionToken(token); err != nil {
		t.Fatalf("blacklist check must fail open: %v", err)
	}
}

func TestLogout_ToleratesInvalidToken(t *testing.T) {
	svc, _ := newAuthService(t)
	if err := svc.Logout("garbage"); err != nil {
		t.Fatalf("Logout of an invalid token should be a no-op: %v", err)
	}
}
