package auth

import (
	"context"
	"time"

	"nichifier-service/internal/domain/auth"
	"nichifier-service/internal/domain/monetisation"
)

// UserStore persists accounts.
type UserStore interface {
	Create(ctx context.Context, u *auth.User) error
	FindByID(ctx context.Context, id int64) (*auth.User, error)
	FindByEmail(ctx context.Context, email string) (*auth.User, error)
	UpdatePrivileges(ctx context.Context, id int64, role auth.Role, isPremium bool) error
	ExistsByRole(ctx context.Context, role auth.Role) (bool, error)
}

// LoginLimiter throttles password attempts per IP and email.
type LoginLimiter interface {
	CheckLoginAttempt(ctx context.Context, ip, email string) (bool, int64, error)
	ResetLoginAttempts(ctx context.Context, ip, email string) error
}

// TokenBlacklist tracks revoked token ids.
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, expiresAt time.Time) error
	IsTokenBlacklisted(ctx context.Context, jti string) (bool, error)
}

// CreatorPlans exposes the creator plan lookups used for profiles and privileges.
type CreatorPlans interface {
	GetActiveCreatorSubscription(ctx context.Context, userID int64) (*monetisation.CreatorSubscription, error)
	PlanUsage(ctx context.Context, userID int64) (*monetisation.PlanUsage, error)
	AttachCreatorPrivileges(ctx context.Context, user *auth.User) (*monetisation.CreatorPlan, error)
}
