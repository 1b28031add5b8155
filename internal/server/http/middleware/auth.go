package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/healthmart/internal/domain/errors"
	pkgAuth "github.com/polkiloo/healthmart/internal/pkg/auth"
)

const (
	// UserIDContextKey is a gin context key for authenticated user identifier.
	UserIDContextKey = "userID"
	authCookieName   = "healthmart_token"
	authCookieMaxAge = 30 * 24 * 60 * 60
)

// TokenParser resolves a bearer token into a user id.
type TokenParser interface {
	ParseToken(token string) (int64, error)
}

// AdminChecker reports whether a user holds the admin role.
type AdminChecker interface {
	IsAdmin(ctx context.Context, userID int64) (bool, error)
}

// AuthRequired ensures user is authenticated before accessing handler.
func AuthRequired(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			abort(c, http.StatusUnauthorized, "not authorized to access this route")
			return
		}

		userID, err := parser.ParseToken(token)
		if err != nil {
			if errors.Is(err, pkgAuth.ErrInvalidToken) {
				abort(c, http.StatusUnauthorized, "not authorized to access this route")
				return
			}
			_ = c.Error(err)
			abort(c, http.StatusInternalServerError, "internal server error")
			return
		}

		c.Set(UserIDContextKey, userID)
		c.Next()
	}
}

// AdminRequired rejects authenticated users without the admin role.
// It must run after AuthRequired.
func AdminRequired(checker AdminChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetInt64(UserIDContextKey)
		ok, err := checker.IsAdmin(c.Request.Context(), userID)
		switch {
		case errors.Is(err, domainErrors.ErrNotFound):
			abort(c, http.StatusUnauthorized, "not authorized to access this route")
		case err != nil:
			_ = c.Error(err)
			abort(c, http.StatusInternalServerError, "internal server error")
		case !ok:
			abort(c, http.StatusForbidden, "admin role required")
		default:
			c.Next()
		}
	}
}

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "error": msg})
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}

	if cookie, err := c.Cookie(authCookieName); err == nil {
		return cookie
	}
	return ""
}

// SetAuthCookie writes auth token cookie to response.
func SetAuthCookie(c *gin.Context, token string) {
	c.SetCookie(authCookieName, token, authCookieMaxAge, "/", "", false, true)
	c.Header("Authorization", "Bearer "+token)
}
