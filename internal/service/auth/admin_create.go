// internal/service/auth/admin_create.go
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"nichifier-service/internal/domain/auth"
	xerrors "nichifier-service/internal/pkg/errors"

	"go.uber.org/zap"
)

// EnsureAdminExists creates an admin account if none exists (called on startup)
func (s *AuthService) EnsureAdminExists(ctx context.Context, email, password, fullName string) error {
	exists, err := s.users.ExistsByRole(ctx, auth.RoleAdmin)
	if err != nil {
		return fmt.Errorf("failed to check admin existence: %w", err)
	}
	if exists {
		s.logger.Info("admin already exists, skipping creation")
		return nil
	}

	email = normalizeEmail(email)
	fullName = strings.TrimSpace(fullName)
	if email == "" || password == "" || fullName == "" {
		return fmt.Errorf("admin email, password, and name must be provided via environment variables")
	}
	if err := validatePassword(password); err != nil {
		return err
	}

	// An existing account with this email is promoted instead of duplicated.
	existing, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		if err := s.users.UpdatePrivileges(ctx, existing.ID, auth.RoleAdmin, true); err != nil {
			return fmt.Errorf("failed to promote existing user to admin: %w", err)
		}
		s.logger.Info("existing user promoted to admin", zap.String("email", email))
		return nil
	}
	if !errors.Is(err, xerrors.ErrNotFound) {
		return fmt.Errorf("failed to check email: %w", err)
	}

	hashed, err := s.hashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &auth.User{
		Email:          email,
		HashedPassword: hashed,
		FullName:       fullName,
		Role:           auth.RoleAdmin,
		IsPremium:      true,
	}
	if err := s.users.Create(ctx, admin); err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}

	s.logger.Info("admin created successfully",
		zap.String("email", email),
		zap.String("full_name", fullName),
		zap.Int64("user_id", admin.ID),
	)
	return nil
}
