package jwt

import (
	"errors"
	"testing"
	"time"

	"ocorrencias-ponto/backend/config"
)

func newTestManager() *Manager {
	return NewManager(&config.AuthConfig{
		JWTSecret:       "test-secret-key-for-unit-testing",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
	})
}

func TestGenerateAndParseAccessToken(t *testing.T) {
	m := newTestManager()

	token, err := m.GenerateAccessToken("user-1", "ana@example.com")
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	claims, err := m.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}

	if claims.UserID != "user-1" {
		t.Errorf("UserID = %s", claims.UserID)
	}
	if claims.Email != "ana@example.com" {
		t.Errorf("Email = %s", claims.Email)
	}
	if claims.TokenType != TypeAccess {
		t.Errorf("TokenType = %s", claims.TokenType)
	}
	if claims.ID == "" {
		t.Error("jti must be set")
	}
	if ttl := claims.RemainingTTL(time.Now()); ttl <= 14*time.Minute || ttl > 15*time.Minute {
		t.Errorf("RemainingTTL = %v", ttl)
	}
}

func TestGenerateRefreshToken(t *testing.T) {
	m := newTestManager()

	token, err := m.GenerateRefreshToken("user-1", "ana@example.com")
	if err != nil {
		t.Fatalf("GenerateRefreshToken: %v", err)
	}
	claims, err := m.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.TokenType != TypeRefresh {
		t.Errorf("TokenType = %s", claims.TokenType)
	}
	if time.Until(claims.ExpiresAt.Time) < 23*time.Hour {
		t.Errorf("refresh token expires too early: %v", claims.ExpiresAt.Time)
	}
}

func TestParseToken_Expired(t *testing.T) {
	m := NewManager(&config.AuthConfig{JWTSecret: "test-secret-key-for-unit-testing", AccessTokenTTL: -time.Minute})

	token, err := m.GenerateAccessToken("user-1", "a@b.c")
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	if _, err := m.ParseToken(token); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("expected ErrTokenExpired, got %v", err)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, _ := newTestManager().GenerateAccessToken("user-1", "a@b.c")
	other := NewManager(&config.AuthConfig{JWTSecret: "another-secret-key-123456", AccessTokenTTL: time.Minute})

	if _, err := other.ParseToken(token); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("expected ErrTokenInvalid, got %v", err)
	}
	if _, err := other.ParseToken("garbage"); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("expected ErrTokenInvalid for garbage, got %v", err)
	}
}

func TestRemainingTTL_Expired(t *testing.T) {
	c := &Claims{}
	if c.RemainingTTL(time.Now()) != 0 {
		t.Error("no expiry means zero TTL")
	}
}
