// internal/middleware/helpers.go
package middleware

import (
	"adscreen-service/internal/domain/auth"

	"github.com/gin-gonic/gin"
)

// GetPrincipal returns the authenticated caller, if any.
func GetPrincipal(c *gin.Context) (auth.Principal, bool) {
	id, ok := c.Get(ctxUserID)
	if !ok {
		return auth.Principal{}, false
	}
	userID, ok := id.(int64)
	if !ok {
		return auth.Principal{}, false
	}
	role, _ := c.Get(ctxRole)
	r, _ := role.(auth.Role)
	return auth.Principal{UserID: userID, Role: r}, true
}

// SetPrincipal stores the caller on the request context.
func SetPrincipal(c *gin.Context, p auth.Principal) {
	c.Set(ctxUserID, p.UserID)
	c.Set(ctxRole, p.Role)
}

// MustGetPrincipal gets the caller from context or panics
func MustGetPrincipal(c *gin.Context) auth.Principal {
	p, ok := GetPrincipal(c)
	if !ok {
		panic("principal not found in context")
	}
	return p
}

// OptionalPrincipal returns nil for anonymous requests.
func OptionalPrincipal(c *gin.Context) *auth.Principal {
	p, ok := GetPrincipal(c)
	if !ok {
		return nil
	}
	return &p
}

// GetJTI returns the session id of the current token.
func GetJTI(c *gin.Context) (string, bool) {
	jti, exists := c.Get(ctxJTI)
	if !exists {
		return "", false
	}
	s, ok := jti.(string)
	return s, ok
}

// IsAuthenticated checks if request is authenticated
func IsAuthenticated(c *gin.Context) bool {
	_, exists := c.Get(ctxUserID)
	return exists
}

// IsAdmin checks if user is an admin
func IsAdmin(c *gin.Context) bool {
	p, ok := GetPrincipal(c)
	return ok && p.IsAdmin()
}
