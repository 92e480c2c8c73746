// internal/service/auth/admin_create.go
package auth

import (
	"context"
	"errors"
	"fmt"

	"adscreen-service/internal/domain/auth"
	xerrors "adscreen-service/internal/pkg/errors"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// EnsureAdminExists creates the bootstrap admin account if it is missing (called on startup).
func (s *AuthService) EnsureAdminExists(ctx context.Context, email, password, fullName string) error {
	if email == "" || password == "" || fullName == "" {
		s.logger.Info("admin bootstrap credentials not configured, skipping")
		return nil
	}
	email = normalizeEmail(email)

	existing, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if !existing.IsAdmin() {
			return fmt.Errorf("email %s already exists but is not an admin", email)
		}
		s.logger.Info("admin already exists, skipping creation")
		return nil
	case !errors.Is(err, xerrors.ErrNotFound):
		return fmt.Errorf("failed to check admin existence: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &auth.User{
		Email:        email,
		PasswordHash: string(hashedPassword),
		FullName:     fullName,
		Role:         auth.RoleAdmin,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, admin); err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}

	s.logger.Info("admin created successfully",
		zap.String("email", email),
		zap.Int64("user_id", admin.ID),
	)
	return nil
}
