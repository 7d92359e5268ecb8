package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// RoleAdmin is the role of users that may manage fonts.
const RoleAdmin = "admin"

// NonceHeader carries the nonce of AJAX requests that do not post a form.
const NonceHeader = "X-Fonto-Nonce"

type JWTClaims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// NonceClaims bind a short-lived token to one action and one user.
type NonceClaims struct {
	Action   string `json:"action"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// IssueToken signs a session token for username.
func IssueToken(secret, username, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &JWTClaims{
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// JWTAuth middleware verifies the bearer token and stores its user in the
// context under "username" and "role".
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Missing authorization header"})
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid authorization format"})
			}

			claims := &JWTClaims{}
			token, err := jwt.ParseWithClaims(tokenString, claims, keyFunc(secret),
				jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
			if err != nil || !token.Valid {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid token"})
			}

			c.Set("username", claims.Username)
			c.Set("role", claims.Role)

			return next(c)
		}
	}
}

// AdminOnly middleware requires admin role
func AdminOnly() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Get("role") != RoleAdmin {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "Admin access required"})
			}
			return next(c)
		}
	}
}

// IssueNonce signs a nonce allowing username to perform action until ttl
// elapses.
func IssueNonce(secret, action, username string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &NonceClaims{
		Action:   action,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

var errNonceMismatch = errors.New("nonce issued for another action or user")

// VerifyNonce checks that nonce was issued for action and username and has
// not expired.
func VerifyNonce(secret, nonce, action, username string) error {
	claims := &NonceClaims{}
	token, err := jwt.ParseWithClaims(nonce, claims, keyFunc(secret),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return err
	}
	if !token.Valid {
		return jwt.ErrTokenInvalidClaims
	}
	if claims.Action != action || claims.Username != username {
		return errNonceMismatch
	}
	return nil
}

// RequireNonce middleware rejects requests without a valid nonce for action.
// The nonce is read from the "nonce" form value or the X-Fonto-Nonce header.
// It must run after JWTAuth.
func RequireNonce(secret, action string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			nonce := c.FormValue("nonce")
			if nonce == "" {
				nonce = c.Request().Header.Get(NonceHeader)
			}
			username, _ := c.Get("username").(string)
			if nonce == "" || VerifyNonce(secret, nonce, action, username) != nil {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "Invalid nonce"})
			}
			return next(c)
		}
	}
}

func keyFunc(secret string) jwt.Keyfunc {
	return func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}
}
