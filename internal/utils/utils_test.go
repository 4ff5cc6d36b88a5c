package utils

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple", 4)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !VerifyPassword(hash, "correct horse battery staple") {
		t.Fatal("correct password rejected")
	}
	if VerifyPassword(hash, "wrong password") {
		t.Fatal("wrong password accepted")
	}
}

// A cost outside bcrypt's range must not fail the hash; it falls back to
// the library default.
func TestPasswordCostFallback(t *testing.T) {
	for _, cost := range []int{-1, 0, 99} {
		hash, err := HashPassword("secret-enough", cost)
		if err != nil {
			t.Fatalf("cost %d: HashPassword: %v", cost, err)
		}
		if !VerifyPassword(hash, "secret-enough") {
			t.Fatalf("cost %d: round trip failed", cost)
		}
	}
}

func TestAccessTokenCarriesClaims(t *testing.T) {
	tok, err := NewAccessToken("secret", 42, "CLIENT", 15)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	parsed, err := jwt.Parse(tok.Token, func(t *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("issued token does not verify: %v", err)
	}
	claims := parsed.Claims.(jwt.MapClaims)
	if sub, _ := claims["sub"].(float64); uint64(sub) != 42 {
		t.Fatalf("expected sub 42, got %v", claims["sub"])
	}
	if claims["role"] != "CLIENT" {
		t.Fatalf("expected role CLIENT, got %v", claims["role"])
	}
}

func TestRefreshTokenHashing(t *testing.T) {
	tok, err := NewRefreshToken(14)
	if err != nil {
		t.Fatalf("NewRefreshToken: %v", err)
	}
	if tok.Raw == "" {
		t.Fatal("empty raw token")
	}
	h1 := HashRefreshRaw(tok.Raw)
	h2 := HashRefreshRaw(tok.Raw)
	if h1 != h2 {
		t.Fatal("hash must be deterministic")
	}
	if len(h1) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(h1))
	}
	other, err := NewRefreshToken(14)
	if err != nil {
		t.Fatalf("NewRefreshToken: %v", err)
	}
	if HashRefreshRaw(other.Raw) == h1 {
		t.Fatal("distinct tokens hashed identically")
	}
}
