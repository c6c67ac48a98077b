package jwt

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testIssuer = "pesio-mra-auth"

func TestGenerateKeyPair(t *testing.T) {
	privateKeyPEM, publicKeyPEM, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair() error = %v", err)
	}

	if len(privateKeyPEM) < 100 {
		t.Error("Private key seems too short")
	}
	if len(publicKeyPEM) < 100 {
		t.Error("Public key seems too short")
	}
}

func TestNewManagerInvalidKeys(t *testing.T) {
	privateKeyPEM, publicKeyPEM, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("Failed to generate key pair: %v", err)
	}

	tests := []struct {
		name          string
		privateKeyPEM string
		publicKeyPEM  string
	}{
		{name: "empty private key", privateKeyPEM: "", publicKeyPEM: publicKeyPEM},
		{name: "empty public key", privateKeyPEM: privateKeyPEM, publicKeyPEM: ""},
		{name: "garbage keys", privateKeyPEM: "not-a-valid-key", publicKeyPEM: "not-a-valid-key"},
		{name: "public passed as private", privateKeyPEM: publicKeyPEM, publicKeyPEM: publicKeyPEM},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewManager(tt.privateKeyPEM, tt.publicKeyPEM, testIssuer, time.Minute); err == nil {
				t.Error("NewManager() expected error, got nil")
			}
		})
	}
}

func TestMintAndDecode(t *testing.T) {
	manager := setupTestManager(t, 30*time.Minute)

	token, err := manager.Mint("user-123", "alice", "teller")
	if err != nil {
		t.Fatalf("Mint() error = %v", err)
	}

	claims, err := manager.Decode(token)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if claims.UserID != "user-123" {
		t.Errorf("Decode() UserID = %v, want user-123", claims.UserID)
	}
	if claims.Username != "alice" {
		t.Errorf("Decode() Username = %v, want alice", claims.Username)
	}
	if claims.RoleName != "teller" {
		t.Errorf("Decode() RoleName = %v, want teller", claims.RoleName)
	}
	if claims.Issuer != testIssuer {
		t.Errorf("Decode() Issuer = %v, want %v", claims.Issuer, testIssuer)
	}
	if claims.ID == "" || claims.IssuedAt == nil || claims.ExpiresAt == nil || claims.NotBefore == nil {
		t.Errorf("Decode() registered claims incomplete: %+v", claims.RegisteredClaims)
	}
	if manager.IsExpired(claims) {
		t.Error("IsExpired() = true for a fresh token")
	}
}

func TestDecodeInvalidToken(t *testing.T) {
	manager := setupTestManager(t, time.Minute)
	other := setupTestManager(t, time.Minute)

	foreign, err := other.Mint("user-123", "alice", "teller")
	if err != nil {
		t.Fatalf("Mint() error = %v", err)
	}

	hs256, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{UserID: "user-123"}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty token", token: ""},
		{name: "malformed token", token: "not.a.valid.token"},
		{name: "random string", token: "random-string-not-jwt"},
		{name: "signed by another key", token: foreign},
		{name: "wrong algorithm", token: hs256},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := manager.Decode(tt.token)
			if !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Decode() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestDecodeMissingUserClaim(t *testing.T) {
	manager := setupTestManager(t, time.Minute)

	token, err := manager.Mint("", "alice", "teller")
	if err != nil {
		t.Fatalf("Mint() error = %v", err)
	}

	if _, err := manager.Decode(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Decode() error = %v, want ErrInvalidToken", err)
	}
}

func TestDecodeExpiredTokenStillReturnsClaims(t *testing.T) {
	manager := setupTestManager(t, 30*time.Minute)
	issued := time.Now().Add(-time.Hour)
	manager.WithClock(func() time.Time { return issued })

	token, err := manager.Mint("user-123", "alice", "teller")
	if err != nil {
		t.Fatalf("Mint() error = %v", err)
	}

	manager.WithClock(time.Now)

	claims, err := manager.Decode(token)
	if err != nil {
		t.Fatalf("Decode() error = %v, expiry must not be enforced by Decode", err)
	}
	if !manager.IsExpired(claims) {
		t.Error("IsExpired() = false for a token issued an hour ago with 30m ttl")
	}
}

func TestIsExpiredWithoutExpiry(t *testing.T) {
	manager := setupTestManager(t, time.Minute)

	if !manager.IsExpired(nil) {
		t.Error("IsExpired(nil) = false")
	}
	if !manager.IsExpired(&Claims{UserID: "user-123"}) {
		t.Error("IsExpired() = false for claims without exp")
	}
}

func TestTokensUniqueness(t *testing.T) {
	manager := setupTestManager(t, time.Minute)

	token1, _ := manager.Mint("user-123", "alice", "teller")
	token2, _ := manager.Mint("user-123", "alice", "teller")

	if token1 == token2 {
		t.Error("Mint() generated identical tokens")
	}
}

func BenchmarkDecode(b *testing.B) {
	privateKeyPEM, publicKeyPEM, _ := GenerateKeyPair()
	manager, _ := NewManager(privateKeyPEM, publicKeyPEM, testIssuer, time.Hour)
	token, _ := manager.Mint("user-123", "alice", "teller")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = manager.Decode(token)
	}
}

func setupTestManager(t *testing.T, ttl time.Duration) *Manager {
	t.Helper()

	privateKeyPEM, publicKeyPEM, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("Failed to generate key pair: %v", err)
	}

	manager, err := NewManager(privateKeyPEM, publicKeyPEM, testIssuer, ttl)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	return manager
}
