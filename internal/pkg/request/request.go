// internal/pkg/request/request.go
package request

import (
	"strconv"

	xerrors "adscreen-service/internal/pkg/errors"
	"adscreen-service/internal/pkg/i18n"
	"adscreen-service/internal/pkg/response"
	"adscreen-service/internal/pkg/validation"

	"github.com/gin-gonic/gin"
)

// BindJSON binds the body into dst and writes a 400 on failure.
func BindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.HandleError(c, validation.FromBindError(err))
		return false
	}
	return true
}

// BindOptionalJSON accepts an empty body and leaves dst at its zero value.
func BindOptionalJSON(c *gin.Context, dst interface{}) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	return BindJSON(c, dst)
}

// BindQuery binds query parameters into dst and writes a 400 on failure.
func BindQuery(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		response.HandleError(c, validation.FromBindError(err))
		return false
	}
	return true
}

// ParamID parses a positive int64 path parameter.
func ParamID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.ValidationError(c, xerrors.NewValidationError(name, i18n.FieldInvalid))
		return 0, false
	}
	return id, true
}
