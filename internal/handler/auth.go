package handler

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	authmw "fonto/internal/middleware"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/argon2"
)

// Argon2 parameters
const (
	argon2Time    = 1
	argon2Memory  = 64 * 1024
	argon2Threads = 4
	argon2KeyLen  = 32
	saltLen       = 16
)

// Nonce actions.
const (
	ActionURLPath = "sample_font_url_path"
)

var nonceActions = map[string]bool{
	ActionURLPath: true,
}

// HashPassword generates an argon2id hash of the password
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey([]byte(password), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)

	// $argon2id$salt$hash
	encodedSalt := base64.RawStdEncoding.EncodeToString(salt)
	encodedHash := base64.RawStdEncoding.EncodeToString(hash)

	return fmt.Sprintf("$argon2id$%s$%s", encodedSalt, encodedHash), nil
}

// verifyPassword checks if the provided password matches the stored hash
func verifyPassword(password, storedHash string) (bool, error) {
	parts := strings.Split(storedHash, "$")
	if len(parts) != 4 || parts[0] != "" || parts[1] != "argon2id" {
		return false, errors.New("invalid hash format")
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[2])
	if err != nil {
		return false, err
	}

	expectedHash, err := base64.RawStdEncoding.DecodeString(parts[3])
	if err != nil {
		return false, err
	}

	hash := argon2.IDKey([]byte(password), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)

	return subtle.ConstantTimeCompare(hash, expectedHash) == 1, nil
}

// Login authenticates the administrator
func (h *Handler) Login(c echo.Context) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	if h.auth.AdminPasswordHash == "" {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "Admin account not configured"})
	}

	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(h.auth.AdminUser)) == 1
	passOK, err := verifyPassword(req.Password, h.auth.AdminPasswordHash)
	if err != nil {
		h.log.Error("Stored admin password hash is invalid", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to verify credentials"})
	}
	if !userOK || !passOK {
		h.log.Warn("Failed login attempt", zap.String("username", req.Username), zap.String("remote_ip", c.RealIP()))
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
	}

	token, err := authmw.IssueToken(h.auth.JWTSecret, h.auth.AdminUser, authmw.RoleAdmin, h.auth.TokenTTL)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to generate token"})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"token": token,
		"user": map[string]interface{}{
			"username": h.auth.AdminUser,
			"role":     authmw.RoleAdmin,
		},
	})
}

// GetCurrentUser returns the authenticated user
func (h *Handler) GetCurrentUser(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"username": c.Get("username"),
		"role":     c.Get("role"),
	})
}

// GetNonce issues a nonce for the action named by the "action" query value.
func (h *Handler) GetNonce(c echo.Context) error {
	action := c.QueryParam("action")
	if !nonceActions[action] {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Unknown action"})
	}
	username, _ := c.Get("username").(string)

	nonce, err := authmw.IssueNonce(h.auth.JWTSecret, action, username, h.auth.NonceTTL)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to generate nonce"})
	}
	return c.JSON(http.StatusOK, map[string]string{"nonce": nonce})
}
