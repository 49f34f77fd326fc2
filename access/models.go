package access

import (
	"fmt"
	"strings"
	"time"

	"jobmatrimony/domain"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
	RoleGuest Role = "guest"
)

// rank orders roles so a policy can state a minimum.
func (r Role) rank() int {
	switch r {
	case RoleAdmin:
		return 3
	case RoleUser:
		return 2
	case RoleGuest:
		return 1
	default:
		return 0
	}
}

// AtLeast reports whether r grants everything min grants.
func (r Role) AtLeast(min Role) bool {
	return r.rank() >= min.rank()
}

// ParseRole normalizes a role name and rejects unknown values.
func ParseRole(s string) (Role, error) {
	role := Role(strings.ToLower(strings.TrimSpace(s)))
	if !isValidRole(role) {
		return "", fmt.Errorf("access: invalid role %q: %w", s, domain.ErrInvalidInput)
	}
	return role, nil
}

func isValidRole(role Role) bool {
	switch role {
	case RoleAdmin, RoleUser, RoleGuest:
		return true
	default:
		return false
	}
}

// Assignment is one row of the roles table.
type Assignment struct {
	Identity  domain.Identity
	Role      Role
	CreatedAt time.Time
	UpdatedAt time.Time
}
