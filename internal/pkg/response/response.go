// internal/pkg/response/response.go
package response

import (
	"errors"
	"net/http"

	xerrors "adscreen-service/internal/pkg/errors"
	"adscreen-service/internal/pkg/i18n"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"
)

// Response defines the standard API response format.
type Response struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Code    string            `json:"code,omitempty"`
	Data    interface{}       `json:"data,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// Lang returns the negotiated response language for the request.
func Lang(c *gin.Context) language.Tag {
	if v, ok := c.Get("lang"); ok {
		if tag, ok := v.(language.Tag); ok {
			return tag
		}
	}
	return i18n.Negotiate(c.GetHeader("Accept-Language"))
}

// Success sends a successful response with a localized message and optional data.
func Success(c *gin.Context, status int, messageID string, data interface{}) {
	if status == 0 {
		status = http.StatusOK
	}

	c.JSON(status, Response{
		Success: true,
		Message: i18n.T(Lang(c), messageID),
		Data:    data,
	})
}

// Error sends a standardized error response. err is attached to the gin context
// for the logging middleware and is never written to the client.
func Error(c *gin.Context, code int, messageID string, err error, data ...interface{}) {
	c.Abort()

	if err != nil {
		_ = c.Error(err)
	}

	resp := Response{
		Success: false,
		Message: i18n.T(Lang(c), messageID),
		Code:    messageID,
	}
	if len(data) > 0 {
		resp.Data = data[0]
	}

	c.JSON(code, resp)
}

// ValidationError sends a 400 with localized field level messages.
func ValidationError(c *gin.Context, verr *xerrors.ValidationError) {
	c.Abort()
	lang := Lang(c)

	fields := make(map[string]string, len(verr.Fields))
	for field, id := range verr.Fields {
		fields[field] = i18n.T(lang, id)
	}

	c.JSON(http.StatusBadRequest, Response{
		Success: false,
		Message: i18n.T(lang, i18n.MsgValidationFailed),
		Code:    i18n.MsgValidationFailed,
		Errors:  fields,
	})
}

// Unauthorized sends a 401 Unauthorized response.
func Unauthorized(c *gin.Context) {
	Error(c, http.StatusUnauthorized, i18n.MsgUnauthorized, nil)
}

// Forbidden sends a 403 Forbidden response.
func Forbidden(c *gin.Context) {
	Error(c, http.StatusForbidden, i18n.MsgForbidden, nil)
}

// NotFound sends a 404 Not Found response.
func NotFound(c *gin.Context) {
	Error(c, http.StatusNotFound, i18n.MsgNotFound, nil)
}

// HandleError maps service errors onto the HTTP error taxonomy.
func HandleError(c *gin.Context, err error) {
	var verr *xerrors.ValidationError
	if errors.As(err, &verr) {
		ValidationError(c, verr)
		return
	}

	var cerr *xerrors.ConflictError
	if errors.As(err, &cerr) {
		id := cerr.MessageID
		if !i18n.Has(id) {
			id = i18n.MsgConflict
		}
		Error(c, http.StatusConflict, id, err, cerr.Details)
		return
	}

	switch {
	case errors.Is(err, xerrors.ErrNotFound):
		Error(c, http.StatusNotFound, i18n.MsgNotFound, err)
	case errors.Is(err, xerrors.ErrUnauthorized):
		Error(c, http.StatusUnauthorized, i18n.MsgUnauthorized, err)
	case errors.Is(err, xerrors.ErrSessionExpired):
		Error(c, http.StatusUnauthorized, i18n.MsgSessionExpired, err)
	case errors.Is(err, xerrors.ErrForbidden):
		Error(c, http.StatusForbidden, i18n.MsgForbidden, err)
	case errors.Is(err, xerrors.ErrQuotaExceeded):
		Error(c, http.StatusForbidden, i18n.MsgQuotaExceeded, err)
	case errors.Is(err, xerrors.ErrConflict):
		Error(c, http.StatusConflict, i18n.MsgConflict, err)
	case errors.Is(err, xerrors.ErrInvalidState):
		Error(c, http.StatusConflict, i18n.MsgInvalidState, err)
	case errors.Is(err, xerrors.ErrInvalidInput):
		Error(c, http.StatusBadRequest, i18n.MsgInvalidRequest, err)
	case errors.Is(err, xerrors.ErrRateLimited):
		Error(c, http.StatusTooManyRequests, i18n.MsgRateLimited, err)
	case errors.Is(err, xerrors.ErrUpstream):
		Error(c, http.StatusInternalServerError, i18n.MsgUpstream, err)
	default:
		Error(c, http.StatusInternalServerError, i18n.MsgInternal, err)
	}
}
