// internal/middleware/lang_middleware.go
package middleware

import (
	"adscreen-service/internal/pkg/i18n"

	"github.com/gin-gonic/gin"
)

// Language negotiates the response language once per request.
func Language() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("lang", i18n.Negotiate(c.GetHeader("Accept-Language")))
		c.Next()
	}
}
