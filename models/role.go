package models

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Role is the integer flag on a user record. Only the administrator value is
// meaningful to the client; every other value is a standard user.
type Role int

const (
	RoleUnknown Role = 0
	RoleAdmin   Role = 1
	RoleUser    Role = 2
)

// ParseRole accepts the role as the API sends it, number or string.
// Comparison is loose: 1, 1.0 and "1" are all the administrator role.
// Values that are not whole numbers count as standard users.
func ParseRole(v any) Role {
	s := strings.TrimSpace(FormatValue(v))
	if s == "" {
		return RoleUnknown
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return RoleUser
	}
	return Role(int(f))
}

// IsAdmin reports whether r is the administrator role.
func (r Role) IsAdmin() bool { return r == RoleAdmin }

func (r Role) String() string {
	if r == RoleAdmin {
		return "Admin"
	}
	return "Usuario"
}

// IsNumericAdmin reports whether v is the number 1. Unlike ParseRole, the
// string "1" does not match.
func IsNumericAdmin(v any) bool {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return err == nil && f == 1
	case float64:
		return n == 1
	case int:
		return n == 1
	case int64:
		return n == 1
	}
	return false
}
