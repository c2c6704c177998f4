package auth

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// unlockSubject marks tokens minted by the PIN unlock flow; anything else
// signed with the same secret is rejected.
const unlockSubject = "unlock"

// TokenIssuer mints the short-lived tokens handed out after a successful
// PIN check.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenIssuer creates a token issuer. A non-positive ttl falls back to
// five minutes, enough to confirm one destructive action.
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl}
}

// Issue signs a fresh unlock token.
func (i *TokenIssuer) Issue() (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   unlockSubject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign unlock token: %w", err)
	}
	return signed, nil
}

// UnlockConfig holds the configuration for the unlock middleware
type UnlockConfig struct {
	Secret string
	Logger *zap.Logger

	// Enabled mirrors the PIN lock setting; when it returns false the
	// middleware waves every request through.
	Enabled func() bool
}

// RequireUnlock guards destructive routes: the request must carry a valid,
// unexpired unlock token in the Authorization header.
func RequireUnlock(config UnlockConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if config.Enabled != nil && !config.Enabled() {
				return next(c)
			}

			path := c.Request().URL.Path
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				config.Logger.Warn("Missing unlock token",
					zap.String("path", path),
					zap.String("method", c.Request().Method))
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"error": "Unlock token required",
					"code":  "MISSING_UNLOCK_TOKEN",
				})
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				config.Logger.Warn("Invalid authorization header format",
					zap.String("path", path))
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"error": "Invalid authorization header format. Expected: Bearer <token>",
					"code":  "INVALID_AUTH_FORMAT",
				})
			}

			token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
				}
				return []byte(config.Secret), nil
			})
			if err != nil || !token.Valid {
				config.Logger.Warn("Unlock token validation failed",
					zap.String("path", path),
					zap.Error(err))
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"error": "Invalid or expired unlock token",
					"code":  "INVALID_UNLOCK_TOKEN",
				})
			}

			claims, ok := token.Claims.(*jwt.RegisteredClaims)
			if !ok || claims.Subject != unlockSubject {
				config.Logger.Warn("Unlock token with wrong subject",
					zap.String("path", path))
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"error": "Invalid or expired unlock token",
					"code":  "INVALID_UNLOCK_TOKEN",
				})
			}

			return next(c)
		}
	}
}
