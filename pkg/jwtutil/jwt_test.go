package jwtutil

import "testing"

func TestGenerateAndValidateToken(t *testing.T) {
	util := NewJWTUtil(&JWTConfig{SigningKey: "k", ExpirationHours: 1})
	token, err := util.GenerateToken("owner@example.com", 42, "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, err := util.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != 42 || claims.Email != "owner@example.com" {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if claims.IsAdmin() {
		t.Fatalf("plain owner must not be admin")
	}
}

func TestValidateTokenRejectsForeignKey(t *testing.T) {
	issuer := NewJWTUtil(&JWTConfig{SigningKey: "issuer", ExpirationHours: 1})
	verifier := NewJWTUtil(&JWTConfig{SigningKey: "verifier", ExpirationHours: 1})
	token, err := issuer.GenerateToken("a@b.c", 1, RoleAdmin)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := verifier.ValidateToken(token); err == nil {
		t.Fatalf("expected signature error")
	}
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	util := NewJWTUtil(&JWTConfig{SigningKey: "k", ExpirationHours: -1})
	token, err := util.GenerateToken("a@b.c", 1, "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := util.ValidateToken(token); err == nil {
		t.Fatalf("expected expiry error")
	}
}

func TestValidateTokenRejectsMissingUser(t *testing.T) {
	util := NewJWTUtil(&JWTConfig{SigningKey: "k", ExpirationHours: 1})
	token, err := util.GenerateToken("a@b.c", 0, "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := util.ValidateToken(token); err == nil {
		t.Fatalf("expected error for token without user_id")
	}
}
