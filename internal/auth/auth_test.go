package auth_test

import (
	"testing"

	"healthrecord-api/internal/auth"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := auth.HashPassword("testpass123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "testpass123" {
		t.Fatal("password stored in the clear")
	}
	if !auth.CheckPassword(hash, "testpass123") {
		t.Fatal("correct password rejected")
	}
	if auth.CheckPassword(hash, "wrongpassword") {
		t.Fatal("wrong password accepted")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	tok, err := auth.MakeToken("user-1", "secret")
	if err != nil {
		t.Fatalf("make token: %v", err)
	}
	claims, err := auth.ParseToken(tok, "secret")
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.OwnerID != "user-1" {
		t.Errorf("expected owner user-1, got %q", claims.OwnerID)
	}
}

func TestTokenWrongSecret(t *testing.T) {
	tok, _ := auth.MakeToken("user-1", "secret")
	if _, err := auth.ParseToken(tok, "other-secret"); err == nil {
		t.Fatal("expected error for wrong secret")
	}
}

func TestTokenGarbage(t *testing.T) {
	if _, err := auth.ParseToken("not.a.token", "secret"); err == nil {
		t.Fatal("expected error for garbage token")
	}
}

func TestRefreshTokenHashing(t *testing.T) {
	raw, hash, err := auth.GenerateRefreshToken()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if raw == "" || hash == "" {
		t.Fatal("empty token material")
	}
	if raw == hash {
		t.Fatal("raw token equals its hash")
	}
	if auth.HashRefreshToken(raw) != hash {
		t.Fatal("hash mismatch")
	}

	raw2, _, _ := auth.GenerateRefreshToken()
	if raw == raw2 {
		t.Fatal("two generated tokens are identical")
	}
}
