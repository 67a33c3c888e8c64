package services

import (
	"testing"

	"github.com/teamhq/teamhq/internal/config"
	"github.com/teamhq/teamhq/internal/models"
	"github.com/teamhq/teamhq/internal/utils"
	"github.com/teamhq/teamhq/pkg/response"
	"gorm.io/gorm"
)

func init() {
	utils.SetJWTSecret("test-secret-key-for-testing")
}

func newTestAuthService(db *gorm.DB) *AuthService {
	return NewAuthService(db,
		&config.LDAPConfig{Enabled: false},
		&config.JWTConfig{Secret: "test-secret-key-for-testing", ExpireHour: 24},
	)
}

func createLocalUser(t *testing.T, db *gorm.DB, username, password, role string) *models.User {
	t.Helper()

	hash, err := utils.HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: hash,
		Role:     role,
		AuthType: "local",
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func TestLogin_Success(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAuthService(db)

	createLocalUser(t, db, "alice", "Str0ng!pass", models.RoleUser)

	result, err := svc.Login(&LoginRequest{Username: "alice", Password: "Str0ng!pass"}, "127.0.0.1", "test-agent")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	if result.AccessToken == "" {
		t.Error("AccessToken should not be empty")
	}
	if result.RefreshToken == "" {
		t.Error("RefreshToken should not be empty")
	}

	claims, err := utils.ParseToken(result.AccessToken)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if claims.Username != "alice" {
		t.Errorf("Username = %q, expected %q", claims.Username, "alice")
	}
	if claims.Role != models.RoleUser {
		t.Errorf("Role = %q, expected %q", claims.Role, models.RoleUser)
	}
	if claims.Email != "alice@example.com" {
		t.Errorf("Email = %q, expected %q", claims.Email, "alice@example.com")
	}
	if !claims.IsActive {
		t.Error("IsActive claim should be true")
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAuthService(db)

	createLocalUser(t, db, "alice", "Str0ng!pass", models.RoleUser)

	_, err := svc.Login(&LoginRequest{Username: "alice", Password: "wrong"}, "", "")
	if !response.IsAppError(err, 401) {
		t.Errorf("expected unauthorized, got %v", err)
	}
}

func TestLogin_UnknownUser(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAuthService(db)

	_, err := svc.Login(&LoginRequest{Username: "ghost", Password: "whatever"}, "", "")
	if !response.IsAppError(err, 401) {
		t.Errorf("expected unauthorized, got %v", err)
	}
}

func TestLogin_DisabledUser(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAuthService(db)

	user := createLocalUser(t, db, "alice", "Str0ng!pass", models.RoleUser)
	db.Model(user).Update("is_active", false)

	_, err := svc.Login(&LoginRequest{Username: "alice", Password: "Str0ng!pass"}, "", "")
	if !response.IsAppError(err, 403) {
		t.Errorf("expected forbidden for disabled user, got %v", err)
	}
}

func TestRefresh_RotatesToken(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAuthService(db)

	createLocalUser(t, db, "alice", "Str0ng!pass", models.RoleUser)

	login, err := svc.Login(&LoginRequest{Username: "alice", Password: "Str0ng!pass"}, "", "")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	refreshed, err := svc.Refresh(login.RefreshToken, "", "")
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if refreshed.RefreshToken == login.RefreshToken {
		t.Error("refresh should rotate the token")
	}

	// The old token is revoked and cannot be reused.
	_, err = svc.Refresh(login.RefreshToken, "", "")
	if !response.IsAppError(err, 401) {
		t.Errorf("expected unauthorized reusing a rotated token, got %v", err)
	}
}

func TestRefresh_InvalidToken(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAuthService(db)

	_, err := svc.Refresh("bogus-token", "", "")
	if !response.IsAppError(err, 401) {
		t.Errorf("expected unauthorized, got %v", err)
	}
}

func TestRevokeRefreshToken(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAuthService(db)

	createLocalUser(t, db, "alice", "Str0ng!pass", models.RoleUser)

	login, err := svc.Login(&LoginRequest{Username: "alice", Password: "Str0ng!pass"}, "", "")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	if err := svc.RevokeRefreshToken(login.RefreshToken); err != nil {
		t.Fatalf("RevokeRefreshToken() error = %v", err)
	}

	_, err = svc.Refresh(login.RefreshToken, "", "")
	if !response.IsAppError(err, 401) {
		t.Errorf("expected unauthorized after revocation, got %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAuthService(db)

	user := createLocalUser(t, db, "alice", "Str0ng!pass", models.RoleUser)

	err := svc.ChangePassword(user.ID, &ChangePasswordRequest{
		OldPassword: "Str0ng!pass",
		NewPassword: "N3w!passwd",
	})
	if err != nil {
		t.Fatalf("ChangePassword() error = %v", err)
	}

	if _, err := svc.Login(&LoginRequest{Username: "alice", Password: "N3w!passwd"}, "", ""); err != nil {
		t.Errorf("login with new password failed: %v", err)
	}
}

func TestChangePassword_WrongOld(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAuthService(db)

	user := createLocalUser(t, db, "alice", "Str0ng!pass", models.RoleUser)

	err := svc.ChangePassword(user.ID, &ChangePasswordRequest{
		OldPassword: "wrong",
		NewPassword: "N3w!passwd",
	})
	if !response.IsAppError(err, 401) {
		t.Errorf("expected unauthorized, got %v", err)
	}
}

func TestChangePassword_WeakNew(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAuthService(db)

	user := createLocalUser(t, db, "alice", "Str0ng!pass", models.RoleUser)

	err := svc.ChangePassword(user.ID, &ChangePasswordRequest{
		OldPassword: "Str0ng!pass",
		NewPassword: "weak",
	})
	if !response.IsAppError(err, 400) {
		t.Errorf("expected bad request for weak password, got %v", err)
	}
}

func TestCreateAdminIfNotExists(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAuthService(db)

	if err := svc.CreateAdminIfNotExists(); err != nil {
		t.Fatalf("CreateAdminIfNotExists() error = %v", err)
	}

	var count int64
	db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count)
	if count != 1 {
		t.Fatalf("admin count = %d, expected 1", count)
	}

	// Second call is a no-op.
	if err := svc.CreateAdminIfNotExists(); err != nil {
		t.Fatalf("second CreateAdminIfNotExists() error = %v", err)
	}
	db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count)
	if count != 1 {
		t.Errorf("admin count = %d, expected still 1", count)
	}
}
