// internal/service/auth/auth.go
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"adscreen-service/internal/domain/auth"
	xerrors "adscreen-service/internal/pkg/errors"
	"adscreen-service/internal/pkg/i18n"
	"adscreen-service/internal/pkg/jwt"
	"adscreen-service/internal/pkg/session"
	"adscreen-service/internal/repository/postgres"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials covers both unknown emails and wrong passwords.
var ErrInvalidCredentials = fmt.Errorf("invalid credentials: %w", xerrors.ErrUnauthorized)

type UserStore interface {
	Create(ctx context.Context, u *auth.User) error
	FindByID(ctx context.Context, id int64) (*auth.User, error)
	FindByEmail(ctx context.Context, email string) (*auth.User, error)
	UpdateLastLogin(ctx context.Context, id int64, at time.Time) error
	List(ctx context.Context, filters *auth.UserListFilters) ([]auth.User, int64, error)
}

type TokenIssuer interface {
	Generate(userID int64, role string) (*jwt.Token, error)
}

type SessionStore interface {
	CreateSession(ctx context.Context, s *session.SessionData) error
	InvalidateSession(ctx context.Context, userID int64, jti string) error
}

type LoginLimiter interface {
	CheckLoginAttempt(ctx context.Context, ip, email string) (bool, int64, error)
	ResetLoginAttempts(ctx context.Context, ip, email string) error
}

// ClientInfo describes where a login came from.
type ClientInfo struct {
	IPAddress string
	UserAgent string
}

type AuthService struct {
	users       UserStore
	tokens      TokenIssuer
	sessions    SessionStore
	rateLimiter LoginLimiter
	logger      *zap.Logger
	bcryptCost  int
}

func NewAuthService(
	users UserStore,
	tokens TokenIssuer,
	sessions SessionStore,
	rateLimiter LoginLimiter,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		users:       users,
		tokens:      tokens,
		sessions:    sessions,
		rateLimiter: rateLimiter,
		logger:      logger,
		bcryptCost:  bcrypt.DefaultCost,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ========== Registration ==========

// Register creates a business or customer account and signs it in.
func (s *AuthService) Register(ctx context.Context, req *auth.RegisterRequest, client ClientInfo) (*auth.LoginResponse, *jwt.Token, error) {
	if req.Role != auth.RoleBusiness && req.Role != auth.RoleCustomer {
		return nil, nil, xerrors.NewValidationError("role", i18n.FieldOneOf)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &auth.User{
		Email:        normalizeEmail(req.Email),
		PasswordHash: string(hashedPassword),
		FullName:     strings.TrimSpace(req.FullName),
		Phone:        optional(req.Phone),
		Role:         req.Role,
		IsActive:     true,
	}
	if req.Role == auth.RoleBusiness {
		user.BusinessName = optional(req.BusinessName)
		user.OfferLimit = auth.DefaultOfferLimit
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, xerrors.ErrConflict) {
			return nil, nil, &xerrors.ConflictError{MessageID: i18n.MsgEmailTaken}
		}
		return nil, nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user registered",
		zap.Int64("user_id", user.ID),
		zap.String("role", string(user.Role)))

	return s.startSession(ctx, user, client)
}

// ========== Login ==========

// Login authenticates with email and password, rate limited per IP and email.
func (s *AuthService) Login(ctx context.Context, req *auth.LoginRequest) (*auth.LoginResponse, *jwt.Token, error) {
	email := normalizeEmail(req.Email)

	allowed, remaining, err := s.rateLimiter.CheckLoginAttempt(ctx, req.IPAddress, email)
	if err != nil {
		return nil, nil, fmt.Errorf("rate limiter error: %w", err)
	}
	if !allowed {
		s.logger.Warn("login rate limited", zap.String("ip", req.IPAddress))
		return nil, nil, xerrors.ErrRateLimited
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Info("failed login attempt",
			zap.Int64("user_id", user.ID),
			zap.Int64("remaining_attempts", remaining))
		return nil, nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, nil, xerrors.ErrForbidden
	}

	if err := s.rateLimiter.ResetLoginAttempts(ctx, req.IPAddress, email); err != nil {
		s.logger.Warn("failed to reset login attempts", zap.Error(err))
	}

	return s.startSession(ctx, user, ClientInfo{IPAddress: req.IPAddress, UserAgent: req.UserAgent})
}

func (s *AuthService) startSession(ctx context.Context, user *auth.User, client ClientInfo) (*auth.LoginResponse, *jwt.Token, error) {
	token, err := s.tokens.Generate(user.ID, string(user.Role))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate token: %w", err)
	}

	now := time.Now()
	if err := s.sessions.CreateSession(ctx, &session.SessionData{
		JTI:            token.JTI,
		UserID:         user.ID,
		Email:          user.Email,
		Role:           string(user.Role),
		IPAddress:      client.IPAddress,
		UserAgent:      client.UserAgent,
		LoginAt:        now,
		LastActivityAt: now,
		ExpiresAt:      token.ExpiresAt,
	}); err != nil {
		return nil, nil, fmt.Errorf("failed to create session: %w", err)
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.logger.Warn("failed to update last login", zap.Int64("user_id", user.ID), zap.Error(err))
	}
	user.LastLoginAt = &now

	s.logger.Info("user logged in", zap.Int64("user_id", user.ID))

	return &auth.LoginResponse{ExpiresAt: token.ExpiresAt, User: user}, token, nil
}

// ========== Session ==========

func (s *AuthService) Logout(ctx context.Context, userID int64, jti string) error {
	if err := s.sessions.InvalidateSession(ctx, userID, jti); err != nil {
		return fmt.Errorf("failed to invalidate session: %w", err)
	}
	s.logger.Info("user logged out", zap.Int64("user_id", userID))
	return nil
}

func (s *AuthService) Me(ctx context.Context, userID int64) (*auth.User, error) {
	return s.users.FindByID(ctx, userID)
}

// ========== Admin ==========

func (s *AuthService) ListUsers(ctx context.Context, filters *auth.UserListFilters) (*auth.UserListResponse, error) {
	users, total, err := s.users.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return &auth.UserListResponse{
		Users:      users,
		Total:      total,
		Page:       filters.Page,
		PageSize:   filters.PageSize,
		TotalPages: postgres.TotalPages(total, filters.PageSize),
	}, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
