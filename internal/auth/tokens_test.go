package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestIssueAndValidateAdminToken(t *testing.T) {
	token, err := IssueAdminToken("ops", testSecret, time.Minute)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	claims, err := ValidateAdminToken(token, testSecret)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if claims.Subject != "ops" {
		t.Errorf("expected subject ops, got %q", claims.Subject)
	}
	if claims.Role != "admin" {
		t.Errorf("expected admin role, got %q", claims.Role)
	}
}

func TestIssueAdminTokenRejectsShortSecret(t *testing.T) {
	if _, err := IssueAdminToken("ops", "short", time.Minute); err == nil {
		t.Fatal("expected error for short secret")
	}
}

func TestValidateAdminTokenRejectsWrongSecret(t *testing.T) {
	token, err := IssueAdminToken("ops", testSecret, time.Minute)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	other := strings.Repeat("x", 32)
	if _, err := ValidateAdminToken(token, other); err == nil {
		t.Fatal("expected validation to fail with a different secret")
	}
}

func TestValidateAdminTokenRejectsExpired(t *testing.T) {
	token, err := IssueAdminToken("ops", testSecret, -time.Minute)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	if _, err := ValidateAdminToken(token, testSecret); err == nil {
		t.Fatal("expected validation to fail for expired token")
	}
}

func TestValidateAdminTokenRejectsMissingRole(t *testing.T) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   "ops",
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
		IssuedAt:  jwt.NewNumericDate(now),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	if _, err := ValidateAdminToken(token, testSecret); err == nil {
		t.Fatal("expected validation to fail without admin role")
	}
}
