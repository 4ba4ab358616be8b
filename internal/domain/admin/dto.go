// internal/domain/admin/dto.go
package admin

import (
	"nichifier-service/internal/domain/auth"
	"nichifier-service/internal/domain/niche"
)

// NicheOwner is the slice of the owning account shown next to a niche.
type NicheOwner struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

// NicheListing is a niche with its owner, if it has one.
type NicheListing struct {
	*niche.Niche
	Owner *NicheOwner `json:"owner"`
}

// Dashboard is the admin overview of every account and niche.
type Dashboard struct {
	Users      []*auth.User    `json:"users"`
	Niches     []*NicheListing `json:"niches"`
	UserCount  int             `json:"user_count"`
	NicheCount int             `json:"niche_count"`
}
