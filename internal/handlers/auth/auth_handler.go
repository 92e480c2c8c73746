// internal/handlers/auth/auth_handler.go
package auth

import (
	"errors"
	"net/http"
	"time"

	"adscreen-service/internal/domain/auth"
	"adscreen-service/internal/middleware"
	"adscreen-service/internal/pkg/i18n"
	"adscreen-service/internal/pkg/jwt"
	"adscreen-service/internal/pkg/request"
	"adscreen-service/internal/pkg/response"
	authUsecase "adscreen-service/internal/service/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CookieConfig controls the session cookie written on login.
type CookieConfig struct {
	Name   string
	Domain string
	Secure bool
}

// SessionCloser drops live sockets bound to a session that was just revoked.
type SessionCloser interface {
	DisconnectSession(userID int64, sessionID, reason string)
}

type AuthHandler struct {
	authService *authUsecase.AuthService
	sessions    SessionCloser
	cookie      CookieConfig
	logger      *zap.Logger
}

func NewAuthHandler(authService *authUsecase.AuthService, sessions SessionCloser, cookie CookieConfig, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		sessions:    sessions,
		cookie:      cookie,
		logger:      logger,
	}
}

// Register creates a business or customer account and signs it in.
func (h *AuthHandler) Register(c *gin.Context) {
	var req auth.RegisterRequest
	if !request.BindJSON(c, &req) {
		return
	}

	resp, token, err := h.authService.Register(c.Request.Context(), &req, authUsecase.ClientInfo{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		response.HandleError(c, err)
		return
	}

	h.setSessionCookie(c, token)
	response.Success(c, http.StatusCreated, i18n.MsgRegistered, resp)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req auth.LoginRequest
	if !request.BindJSON(c, &req) {
		return
	}
	req.IPAddress = c.ClientIP()
	req.UserAgent = c.Request.UserAgent()

	resp, token, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, authUsecase.ErrInvalidCredentials) {
			response.Error(c, http.StatusUnauthorized, i18n.MsgInvalidCredentials, err)
			return
		}
		response.HandleError(c, err)
		return
	}

	h.setSessionCookie(c, token)
	response.Success(c, http.StatusOK, i18n.MsgLoginSuccess, resp)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	p := middleware.MustGetPrincipal(c)
	jti, _ := middleware.GetJTI(c)

	if err := h.authService.Logout(c.Request.Context(), p.UserID, jti); err != nil {
		response.HandleError(c, err)
		return
	}

	if h.sessions != nil && jti != "" {
		h.sessions.DisconnectSession(p.UserID, jti, "logout")
	}

	h.clearSessionCookie(c)
	response.Success(c, http.StatusOK, i18n.MsgLogoutSuccess, nil)
}

func (h *AuthHandler) Me(c *gin.Context) {
	p := middleware.MustGetPrincipal(c)

	user, err := h.authService.Me(c.Request.Context(), p.UserID)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, i18n.MsgOK, user)
}

// ListUsers is admin only.
func (h *AuthHandler) ListUsers(c *gin.Context) {
	var filters auth.UserListFilters
	if !request.BindQuery(c, &filters) {
		return
	}
	if filters.Page == 0 {
		filters.Page = 1
	}
	if filters.PageSize == 0 {
		filters.PageSize = 20
	}

	result, err := h.authService.ListUsers(c.Request.Context(), &filters)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, i18n.MsgOK, result)
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token *jwt.Token) {
	maxAge := int(time.Until(token.ExpiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, token.Value, maxAge, "/", h.cookie.Domain, h.cookie.Secure, true)
}

func (h *AuthHandler) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, "", -1, "/", h.cookie.Domain, h.cookie.Secure, true)
}
