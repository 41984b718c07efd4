// kz-api - CS2KZ records and game-server backend
// SPDX-License-Identifier: MIT

package auth

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// Permissions is a 64-bit set of named permission flags attached to a user
// account. The zero value carries no permissions.
type Permissions uint64

// Permission bits. Admin is a distinct top bit deliberately not included in
// All: holding every management permission does not make a user an admin.
const (
	PermissionNone Permissions = 0

	PermissionManageServers Permissions = 1 << 0
	PermissionManageMaps    Permissions = 1 << 1
	PermissionManageBans    Permissions = 1 << 2
	PermissionManageRecords Permissions = 1 << 3

	PermissionAdmin Permissions = 1 << 63

	PermissionAll = PermissionManageServers | PermissionManageMaps |
		PermissionManageBans | PermissionManageRecords
)

var permissionNames = map[Permissions]string{
	PermissionManageServers: "manage-servers",
	PermissionManageMaps:    "manage-maps",
	PermissionManageBans:    "manage-bans",
	PermissionManageRecords: "manage-records",
	PermissionAdmin:         "admin",
}

var permissionValues = func() map[string]Permissions {
	m := make(map[string]Permissions, len(permissionNames))
	for bit, name := range permissionNames {
		m[name] = bit
	}
	return m
}()

// Contains reports whether every bit set in required is also set in p.
// Any value contains PermissionNone.
func (p Permissions) Contains(required Permissions) bool {
	return p&required == required
}

// Union returns the combination of both permission sets.
func (p Permissions) Union(other Permissions) Permissions {
	return p | other
}

// Names returns the names of the individual bits set in p, in a stable order.
func (p Permissions) Names() []string {
	order := []Permissions{
		PermissionManageServers,
		PermissionManageMaps,
		PermissionManageBans,
		PermissionManageRecords,
		PermissionAdmin,
	}
	var names []string
	for _, bit := range order {
		if p.Contains(bit) {
			names = append(names, permissionNames[bit])
		}
	}
	return names
}

// String renders the set as a comma-separated name list, or "none".
func (p Permissions) String() string {
	names := p.Names()
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ",")
}

// ParsePermission resolves a single permission name. Unknown names are an
// error rather than silently mapping to the empty set.
func ParsePermission(name string) (Permissions, error) {
	if p, ok := permissionValues[name]; ok {
		return p, nil
	}
	return PermissionNone, fmt.Errorf("unknown permission %q", name)
}

// ParsePermissionList unions the named permissions, silently dropping unknown
// names. This lax behavior is intentional so permission lists from older or
// newer peers remain readable.
func ParsePermissionList(names []string) Permissions {
	p := PermissionNone
	for _, name := range names {
		if bit, ok := permissionValues[name]; ok {
			p = p.Union(bit)
		}
	}
	return p
}

// UnmarshalJSON accepts an integer bitmask, a single name string, or a list
// of name strings. A single unknown name is rejected; unknown names inside a
// list are dropped.
func (p *Permissions) UnmarshalJSON(data []byte) error {
	var raw uint64
	if err := json.Unmarshal(data, &raw); err == nil {
		*p = Permissions(raw)
		return nil
	}

	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		parsed, err := ParsePermission(name)
		if err != nil {
			return err
		}
		*p = parsed
		return nil
	}

	var names []string
	if err := json.Unmarshal(data, &names); err == nil {
		*p = ParsePermissionList(names)
		return nil
	}

	return fmt.Errorf("permissions must be an integer, a name, or a list of names")
}

// MarshalJSON renders the set as a list of names.
func (p Permissions) MarshalJSON() ([]byte, error) {
	names := p.Names()
	if names == nil {
		names = []string{}
	}
	return json.Marshal(names)
}
