package controllers_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mwasonga/soko-api/initializers"
	"github.com/mwasonga/soko-api/models"
	"github.com/mwasonga/soko-api/utils"
)

func TestRegisterAndLogin(t *testing.T) {
	server := setupServer(t)

	rec := doJSON(t, server, http.MethodPost, "/auth/register", "", gin.H{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "password123",
	}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	// Registered users get the plain role, never admin.
	var user models.User
	if err := initializers.DB.Where("username = ?", "alice").First(&user).Error; err != nil {
		t.Fatalf("user not persisted: %v", err)
	}
	if user.Role != "user" {
		t.Errorf("expected role user, got %s", user.Role)
	}

	rec = doJSON(t, server, http.MethodPost, "/auth/login", "", gin.H{
		"identifier": "alice",
		"password":   "password123",
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, server, http.MethodPost, "/auth/login", "", gin.H{
		"identifier": "alice",
		"password":   "wrong-password",
	}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for wrong password, got %d", rec.Code)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	server := setupServer(t)
	createUser(t, server, "alice", "alice@example.com", "password123", "user")

	rec := doJSON(t, server, http.MethodPost, "/auth/register", "", gin.H{
		"username": "alice",
		"email":    "other@example.com",
		"password": "password123",
	}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for duplicate username, got %d", rec.Code)
	}
}

func TestForgotPasswordDoesNotLeakAccounts(t *testing.T) {
	server := setupServer(t)
	createUser(t, server, "alice", "alice@example.com", "password123", "user")

	known := doJSON(t, server, http.MethodPost, "/auth/forgot-password", "", gin.H{
		"email": "alice@example.com",
	}, nil)
	unknown := doJSON(t, server, http.MethodPost, "/auth/forgot-password", "", gin.H{
		"email": "nobody@example.com",
	}, nil)

	if known.Code != http.StatusOK || unknown.Code != http.StatusOK {
		t.Fatalf("expected 200 for both, got %d and %d", known.Code, unknown.Code)
	}
	if known.Body.String() != unknown.Body.String() {
		t.Errorf("responses differ, endpoint leaks registered emails:\n%s\n%s",
			known.Body.String(), unknown.Body.String())
	}
}

func TestPasswordResetFlow(t *testing.T) {
	server := setupServer(t)
	createUser(t, server, "alice", "alice@example.com", "oldpassword1", "user")

	var user models.User
	initializers.DB.Where("username = ?", "alice").First(&user)
	token := utils.MakeResetToken(user.ID, user.Password)

	rec := doJSON(t, server, http.MethodPost, "/auth/reset-password-confirm", "", gin.H{
		"token":       token,
		"newPassword": "newpassword1",
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	// New password works, old one is gone.
	rec = doJSON(t, server, http.MethodPost, "/auth/login", "", gin.H{
		"identifier": "alice",
		"password":   "newpassword1",
	}, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("login with new password failed: %d", rec.Code)
	}
	rec = doJSON(t, server, http.MethodPost, "/auth/login", "", gin.H{
		"identifier": "alice",
		"password":   "oldpassword1",
	}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("old password still accepted: %d", rec.Code)
	}

	// The token was bound to an older password hash, so it is spent.
	rec = doJSON(t, server, http.MethodPost, "/auth/reset-password-confirm", "", gin.H{
		"token":       token,
		"newPassword": "anotherpassword1",
	}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 reusing a spent token, got %d", rec.Code)
	}
}

func TestPasswordResetRejectsGarbageToken(t *testing.T) {
	server := setupServer(t)

	rec := doJSON(t, server, http.MethodPost, "/auth/reset-password-confirm", "", gin.H{
		"token":       "not-a-real-token",
		"newPassword": "newpassword1",
	}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}
