package domain

import (
	"strings"
	"time"
)

// Well-known role names. Roles are stored as plain uppercase strings; any
// framework-specific prefixing is a presentation concern and never reaches
// the domain.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// CredentialRecord maps to the user_access table and carries everything the
// authentication core needs about a subject. It is read-only to the auth
// core; account administration happens elsewhere.
type CredentialRecord struct {
	ID           int64
	Username     string
	PasswordHash string
	Roles        []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NormalizeRoles trims, uppercases and de-duplicates role names, dropping
// empties. An empty result is valid and means no special privileges.
func NormalizeRoles(roles []string) []string {
	seen := make(map[string]struct{}, len(roles))
	out := make([]string, 0, len(roles))
	for _, role := range roles {
		role = strings.ToUpper(strings.TrimSpace(role))
		if role == "" {
			continue
		}
		if _, dup := seen[role]; dup {
			continue
		}
		seen[role] = struct{}{}
		out = append(out, role)
	}
	return out
}
