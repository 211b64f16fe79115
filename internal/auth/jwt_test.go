package auth

import (
	"errors"
	"testing"
	"time"
)

func TestMintAndParse(t *testing.T) {
	pair, err := MintTokens("user-1", "a@b.io", "admin", "secret", time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("MintTokens() error = %v", err)
	}

	claims, err := ParseAccessClaims(pair.AccessToken, "secret")
	if err != nil {
		t.Fatalf("ParseAccessClaims() error = %v", err)
	}
	if claims.UserID != "user-1" || claims.Role != "admin" || claims.Email != "a@b.io" {
		t.Errorf("unexpected claims: %+v", claims)
	}

	if _, err := ParseAccessClaims(pair.AccessToken, "other-secret"); err == nil {
		t.Error("ParseAccessClaims() accepted a token signed with a different secret")
	}
}

func TestParseAccessClaims_Expired(t *testing.T) {
	pair, err := MintTokens("user-1", "a@b.io", "user", "secret", -time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("MintTokens() error = %v", err)
	}
	if _, err := ParseAccessClaims(pair.AccessToken, "secret"); err == nil {
		t.Error("ParseAccessClaims() accepted an expired token")
	}
}

func TestTokenTypes(t *testing.T) {
	pair, err := MintTokens("user-1", "a@b.io", "admin", "secret", time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("MintTokens() error = %v", err)
	}

	if _, err := ParseAccessClaims(pair.RefreshToken, "secret"); !errors.Is(err, ErrWrongTokenType) {
		t.Errorf("ParseAccessClaims(refresh) error = %v, want ErrWrongTokenType", err)
	}
	if _, err := ParseRefreshClaims(pair.AccessToken, "secret"); !errors.Is(err, ErrWrongTokenType) {
		t.Errorf("ParseRefreshClaims(access) error = %v, want ErrWrongTokenType", err)
	}

	claims, err := ParseRefreshClaims(pair.RefreshToken, "secret")
	if err != nil {
		t.Fatalf("ParseRefreshClaims() error = %v", err)
	}
	if claims.UserID != "user-1" || claims.Role != "" {
		t.Errorf("refresh claims = %+v, want uid only", claims)
	}
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("correct horse", 4)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if !CheckPassword(hash, "correct horse") {
		t.Error("CheckPassword() rejected the right password")
	}
	if CheckPassword(hash, "battery staple") {
		t.Error("CheckPassword() accepted the wrong password")
	}
}
