package utils

import (
	"testing"
	"time"

	"github.com/roomcast/roomcast/internal/models"
)

func TestAdminTokenRoundtrip(t *testing.T) {
	token, err := GenerateAdminToken(models.RoleSuperadmin, "test-secret", time.Hour)
	if err != nil {
		t.Fatalf("GenerateAdminToken failed: %v", err)
	}

	claims, err := ValidateAdminToken(token, "test-secret")
	if err != nil {
		t.Fatalf("ValidateAdminToken failed: %v", err)
	}
	if claims.Role != models.RoleSuperadmin {
		t.Fatalf("Expected role %q, got %q", models.RoleSuperadmin, claims.Role)
	}
}

func TestAdminTokenWrongSecret(t *testing.T) {
	token, err := GenerateAdminToken(models.RoleSuperadmin, "test-secret", time.Hour)
	if err != nil {
		t.Fatalf("GenerateAdminToken failed: %v", err)
	}

	if _, err := ValidateAdminToken(token, "other-secret"); err == nil {
		t.Fatal("Expected validation to fail with the wrong secret")
	}
}

func TestAdminTokenExpired(t *testing.T) {
	token, err := GenerateAdminToken(models.RoleSuperadmin, "test-secret", -time.Minute)
	if err != nil {
		t.Fatalf("GenerateAdminToken failed: %v", err)
	}

	if _, err := ValidateAdminToken(token, "test-secret"); err == nil {
		t.Fatal("Expected validation to fail for an expired token")
	}
}
