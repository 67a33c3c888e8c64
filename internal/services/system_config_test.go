package services

import (
	"testing"

	"github.com/teamhq/teamhq/pkg/response"
)

func TestSystemConfig_SeededDefaults(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSystemConfigService(db)

	if hours := svc.GetInt("auth_access_token_expire_hours", 0); hours != 24 {
		t.Errorf("auth_access_token_expire_hours = %d, expected 24", hours)
	}
	if days := svc.GetInt("audit_retention_days", 0); days != 90 {
		t.Errorf("audit_retention_days = %d, expected 90", days)
	}
}

func TestSystemConfig_GetWithDefault_Unset(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSystemConfigService(db)

	if v := svc.GetWithDefault("no_such_key", "fallback"); v != "fallback" {
		t.Errorf("GetWithDefault = %q, expected %q", v, "fallback")
	}
}

func TestSystemConfig_Set(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSystemConfigService(db)

	if err := svc.Set("audit_retention_days", "30"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if days := svc.GetInt("audit_retention_days", 0); days != 30 {
		t.Errorf("audit_retention_days = %d, expected 30", days)
	}
}

func TestSystemConfig_SetUnknownKey(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSystemConfigService(db)

	err := svc.Set("no_such_key", "value")
	if !response.IsAppError(err, 404) {
		t.Errorf("expected not found for unknown key, got %v", err)
	}
}

func TestSystemConfig_GetInt_Invalid(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSystemConfigService(db)

	if err := svc.Set("audit_retention_days", "not-a-number"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if days := svc.GetInt("audit_retention_days", 7); days != 7 {
		t.Errorf("GetInt = %d, expected fallback 7", days)
	}
}
