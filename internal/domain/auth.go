package domain

import "time"

// Role is the closed set of caller privileges.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ParseRole maps a serialized role onto the closed set.
func ParseRole(raw string) (Role, bool) {
	switch Role(raw) {
	case RoleUser:
		return RoleUser, true
	case RoleAdmin:
		return RoleAdmin, true
	default:
		return "", false
	}
}

// IsAdmin reports whether the role carries elevated privileges.
func (r Role) IsAdmin() bool {
	switch r {
	case RoleAdmin:
		return true
	case RoleUser:
		return false
	default:
		return false
	}
}

// Identity is the authenticated caller, re-derived from a verified token on every request.
type Identity struct {
	SubjectID string
	Email     string
	Role      Role
}

// Token represents issued authentication token metadata.
type Token struct {
	Value     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
