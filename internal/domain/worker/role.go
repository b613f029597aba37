package worker

import (
	"errors"
	"strings"
)

// Role is a user role as stored in the `workers` table.
type Role string

const (
	RoleWorker  Role = "WORKER"
	RoleManager Role = "MANAGER"
)

var ErrInvalidRole = errors.New("invalid role")

// ParseRole normalizes (uppercases+trims) and validates a role string.
func ParseRole(s string) (Role, error) {
	role := Role(strings.ToUpper(strings.TrimSpace(s)))
	if role.Valid() {
		return role, nil
	}
	return "", ErrInvalidRole
}

// Valid reports whether role is one of the allowed role constants.
func (role Role) Valid() bool {
	switch role {
	case RoleWorker, RoleManager:
		return true
	default:
		return false
	}
}

// String returns the string representation of the Role.
func (role Role) String() string {
	return string(role)
}

func (role Role) IsWorker() bool  { return role == RoleWorker }
func (role Role) IsManager() bool { return role == RoleManager }
