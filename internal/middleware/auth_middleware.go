// internal/middleware/auth_middleware.go
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"adscreen-service/internal/domain/auth"
	"adscreen-service/internal/pkg/i18n"
	"adscreen-service/internal/pkg/jwt"
	"adscreen-service/internal/pkg/response"
	"adscreen-service/internal/pkg/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	ctxUserID = "user_id"
	ctxRole   = "role"
	ctxJTI    = "jti"
	ctxEmail  = "email"
)

type TokenVerifier interface {
	Verify(token string) (*jwt.Claims, error)
}

type SessionLookup interface {
	GetSession(ctx context.Context, userID int64, jti string) (*session.SessionData, error)
}

type AuthMiddleware struct {
	verifier   TokenVerifier
	sessions   SessionLookup
	cookieName string
	logger     *zap.Logger
}

func NewAuthMiddleware(verifier TokenVerifier, sessions SessionLookup, cookieName string, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		verifier:   verifier,
		sessions:   sessions,
		cookieName: cookieName,
		logger:     logger,
	}
}

// Auth requires a valid token backed by a live server-side session.
func (m *AuthMiddleware) Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := m.extractToken(c)
		if token == "" {
			response.Unauthorized(c)
			return
		}

		if err := m.authenticate(c, token); err != nil {
			if errors.Is(err, session.ErrNotFound) {
				response.Error(c, http.StatusUnauthorized, i18n.MsgSessionExpired, err)
				return
			}
			response.Error(c, http.StatusUnauthorized, i18n.MsgUnauthorized, err)
			return
		}

		c.Next()
	}
}

// OptionalAuth sets the principal when a valid session is present and never aborts.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := m.extractToken(c); token != "" {
			if err := m.authenticate(c, token); err != nil {
				m.logger.Debug("optional auth ignored invalid token", zap.Error(err))
			}
		}
		c.Next()
	}
}

func (m *AuthMiddleware) authenticate(c *gin.Context, token string) error {
	claims, err := m.verifier.Verify(token)
	if err != nil {
		return err
	}

	sess, err := m.sessions.GetSession(c.Request.Context(), claims.UserID, claims.ID)
	if err != nil {
		return err
	}

	SetPrincipal(c, auth.Principal{UserID: claims.UserID, Role: auth.Role(claims.Role)})
	c.Set(ctxJTI, claims.ID)
	c.Set(ctxEmail, sess.Email)
	return nil
}

// RequireRole aborts with 403 unless the caller has one of roles.
// MUST be used after Auth() middleware
func (m *AuthMiddleware) RequireRole(roles ...auth.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := GetPrincipal(c)
		if !ok {
			response.Unauthorized(c)
			return
		}

		for _, role := range roles {
			if p.Role == role {
				c.Next()
				return
			}
		}
		response.Forbidden(c)
	}
}

// AdminOnly returns middlewares for admin-only routes (Auth + RequireRole)
func (m *AuthMiddleware) AdminOnly() []gin.HandlerFunc {
	return []gin.HandlerFunc{
		m.Auth(),
		m.RequireRole(auth.RoleAdmin),
	}
}

// MerchantOnly lets business accounts and admins through.
func (m *AuthMiddleware) MerchantOnly() []gin.HandlerFunc {
	return []gin.HandlerFunc{
		m.Auth(),
		m.RequireRole(auth.RoleBusiness, auth.RoleAdmin),
	}
}

// extractToken prefers the session cookie and falls back to a Bearer header.
func (m *AuthMiddleware) extractToken(c *gin.Context) string {
	if cookie, err := c.Cookie(m.cookieName); err == nil && cookie != "" {
		return cookie
	}

	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	return ""
}
