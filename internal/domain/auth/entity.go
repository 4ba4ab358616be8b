// internal/domain/auth/entity.go
package auth

import "time"

// Role is a coarse access level stored on the user row.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleNicheAdmin Role = "niche_admin"
	RoleSubscriber Role = "subscriber"
)

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleNicheAdmin, RoleSubscriber:
		return true
	}
	return false
}

// GrantsPremium reports whether the role implies premium access on promotion.
func (r Role) GrantsPremium() bool {
	return r == RoleAdmin || r == RoleNicheAdmin
}

// User is a registered account.
type User struct {
	ID             int64     `json:"id" db:"id"`
	Email          string    `json:"email" db:"email"`
	HashedPassword string    `json:"-" db:"hashed_password"`
	FullName       string    `json:"full_name" db:"full_name"`
	Role           Role      `json:"role" db:"role"`
	IsPremium      bool      `json:"is_premium" db:"is_premium"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// IsAdmin reports whether the user has the platform admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
