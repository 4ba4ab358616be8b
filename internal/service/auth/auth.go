// internal/service/auth/auth.go
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"nichifier-service/internal/domain/auth"
	xerrors "nichifier-service/internal/pkg/errors"
	"nichifier-service/internal/pkg/jwt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	users       UserStore
	jwtManager  *jwt.Manager
	rateLimiter LoginLimiter
	blacklist   TokenBlacklist
	plans       CreatorPlans
	hashCost    int
	logger      *zap.Logger
}

func NewAuthService(
	users UserStore,
	jwtManager *jwt.Manager,
	rateLimiter LoginLimiter,
	blacklist TokenBlacklist,
	plans CreatorPlans,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		users:       users,
		jwtManager:  jwtManager,
		rateLimiter: rateLimiter,
		blacklist:   blacklist,
		plans:       plans,
		hashCost:    bcrypt.DefaultCost,
		logger:      logger,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validatePassword(password string) error {
	n := utf8.RuneCountInString(password)
	if n < auth.MinPasswordLength || n > auth.MaxPasswordLength {
		return xerrors.Invalid("password must be between %d and %d characters", auth.MinPasswordLength, auth.MaxPasswordLength)
	}
	return nil
}

// ========== Registration ==========

// Register creates a subscriber account and logs it in.
func (s *AuthService) Register(ctx context.Context, req *auth.RegisterRequest) (*auth.LoginResponse, error) {
	email := normalizeEmail(req.Email)
	fullName := strings.TrimSpace(req.FullName)
	if email == "" || fullName == "" {
		return nil, xerrors.Invalid("email and full name are required")
	}
	if err := validatePassword(req.Password); err != nil {
		return nil, err
	}

	hashed, err := s.hashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &auth.User{
		Email:          email,
		HashedPassword: hashed,
		FullName:       fullName,
		Role:           auth.RoleSubscriber,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, xerrors.ErrConflict) {
			return nil, fmt.Errorf("email already registered: %w", xerrors.ErrConflict)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user registered", zap.Int64("user_id", user.ID), zap.String("email", email))
	return s.issueToken(user)
}

// ========== Login ==========

// Login authenticates a user with email/password
func (s *AuthService) Login(ctx context.Context, req *auth.LoginRequest) (*auth.LoginResponse, error) {
	email := normalizeEmail(req.Email)

	allowed, remaining, err := s.rateLimiter.CheckLoginAttempt(ctx, req.IPAddress, email)
	if err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}
	if !allowed {
		return nil, fmt.Errorf("too many login attempts, please try again in 15 minutes: %w", xerrors.ErrRateLimited)
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			return nil, fmt.Errorf("invalid credentials: %w", xerrors.ErrUnauthorized)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := checkPassword(user.HashedPassword, req.Password); err != nil {
		s.logger.Warn("failed login attempt",
			zap.String("email", email),
			zap.String("ip", req.IPAddress),
			zap.Int64("remaining", remaining),
		)
		return nil, fmt.Errorf("invalid credentials: %w", xerrors.ErrUnauthorized)
	}

	if err := s.rateLimiter.ResetLoginAttempts(ctx, req.IPAddress, email); err != nil {
		s.logger.Warn("failed to reset login attempts", zap.Error(err))
	}

	if _, err := s.plans.AttachCreatorPrivileges(ctx, user); err != nil {
		s.logger.Error("failed to attach creator privileges", zap.Int64("user_id", user.ID), zap.Error(err))
	}

	return s.issueToken(user)
}

func (s *AuthService) issueToken(user *auth.User) (*auth.LoginResponse, error) {
	token, _, expiresAt, err := s.jwtManager.Generator.Generate(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	return &auth.LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		User:        user,
	}, nil
}

// ========== Logout ==========

// Logout revokes the token for the rest of its lifetime.
func (s *AuthService) Logout(ctx context.Context, claims *jwt.Claims) error {
	if claims.ExpiresAt == nil {
		return fmt.Errorf("token has no expiry: %w", xerrors.ErrInvalidInput)
	}
	if err := s.blacklist.BlacklistToken(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return fmt.Errorf("failed to blacklist token: %w", err)
	}
	s.logger.Info("user logged out", zap.Int64("user_id", claims.UserID))
	return nil
}

// ========== Token validation ==========

// Authenticate verifies the token, rejects revoked ones and loads the current user so
// role checks use the stored role rather than the one in the token.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*jwt.Claims, *auth.User, error) {
	claims, err := s.jwtManager.Verifier.Verify(token)
	if err != nil {
		return nil, nil, fmt.Errorf("%v: %w", err, xerrors.ErrUnauthorized)
	}

	revoked, err := s.blacklist.IsTokenBlacklisted(ctx, claims.ID)
	if err != nil {
		return nil, nil, err
	}
	if revoked {
		return nil, nil, xerrors.ErrSessionExpired
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			return nil, nil, fmt.Errorf("user no longer exists: %w", xerrors.ErrUnauthorized)
		}
		return nil, nil, err
	}
	return claims, user, nil
}

// ========== Profile ==========

// Profile returns the user with their active creator plan and niche usage.
func (s *AuthService) Profile(ctx context.Context, userID int64) (*auth.Profile, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if _, err := s.plans.AttachCreatorPrivileges(ctx, user); err != nil {
		return nil, err
	}

	active, err := s.plans.GetActiveCreatorSubscription(ctx, userID)
	if err != nil {
		return nil, err
	}
	usage, err := s.plans.PlanUsage(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &auth.Profile{
		User:       user,
		ActivePlan: active,
		PlanUsage:  usage,
	}, nil
}

// ========== Roles ==========

// PromoteUser sets a user's role. Creator and admin roles also grant premium.
func (s *AuthService) PromoteUser(ctx context.Context, req *auth.PromoteRequest) (*auth.User, error) {
	role := auth.Role(strings.ToLower(strings.TrimSpace(string(req.Role))))
	if !role.IsValid() {
		return nil, xerrors.Invalid("unknown role %q", req.Role)
	}

	user, err := s.users.FindByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	premium := user.IsPremium || role.GrantsPremium()
	if err := s.users.UpdatePrivileges(ctx, user.ID, role, premium); err != nil {
		return nil, fmt.Errorf("failed to promote user: %w", err)
	}
	user.Role = role
	user.IsPremium = premium

	s.logger.Info("user role changed",
		zap.Int64("user_id", user.ID),
		zap.String("role", string(role)),
		zap.Bool("is_premium", premium),
	)
	return user, nil
}
