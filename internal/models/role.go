package models

import (
	"encoding/json"
	"fmt"
)

// Role is the privilege level a member holds within a group.
// Roles are ordered: member < editor < admin.
type Role int

// Role values. The integer codes are part of the storage format.
const (
	RoleMember Role = 1
	RoleEditor Role = 2
	RoleAdmin  Role = 3
)

// roleNames maps role codes to their wire names.
var roleNames = map[Role]string{
	RoleMember: "member",
	RoleEditor: "editor",
	RoleAdmin:  "admin",
}

// ParseRole resolves a role name into a Role value.
func ParseRole(name string) (Role, error) {
	for role, roleName := range roleNames {
		if roleName == name {
			return role, nil
		}
	}
	return 0, fmt.Errorf("unknown role: %q", name)
}

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	_, ok := roleNames[r]
	return ok
}

// AtLeast reports whether the role grants at least the given privilege level.
func (r Role) AtLeast(other Role) bool {
	return r >= other
}

// String returns the role's wire name.
func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return fmt.Sprintf("role(%d)", int(r))
}

// MarshalJSON encodes the role as its wire name.
func (r Role) MarshalJSON() ([]byte, error) {
	name, ok := roleNames[r]
	if !ok {
		return nil, fmt.Errorf("cannot marshal unknown role %d", int(r))
	}
	return json.Marshal(name)
}

// UnmarshalJSON decodes a role from its wire name.
func (r *Role) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseRole(name)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
