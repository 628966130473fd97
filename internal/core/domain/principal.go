package domain

import (
	"fmt"
	"strings"
)

// Role is the coarse access level carried by a bearer token.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleClient Role = "client"
)

// ParseRole validates a role string coming from a token or a registration payload.
func ParseRole(value string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(value))) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleClient:
		return RoleClient, nil
	default:
		return "", fmt.Errorf("unknown role %q", value)
	}
}

// Principal is the authenticated identity derived from a verified bearer
// token. It lives for a single request (or a single consumed message) and is
// never persisted.
type Principal struct {
	ID   string
	Role Role
}

// Require returns the principal unchanged when role is empty or matches the
// principal's role; otherwise it reports ErrForbidden. Callers chain token
// resolution and Require before any mutating or publishing operation.
func (p Principal) Require(role Role) (Principal, error) {
	if p.ID == "" {
		return Principal{}, ErrUnauthenticated
	}
	if role != "" && p.Role != role {
		return Principal{}, fmt.Errorf("%w: role %s required", ErrForbidden, role)
	}
	return p, nil
}
