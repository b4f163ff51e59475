// File: internal/policy/permissions.go
package policy

import (
	"fmt"
	"sort"

	"github.com/xkilldash9x/wardsim/api/schemas"
)

// PermissionTable maps each role to the set of actions it may perform. It
// is immutable after construction; the access policy consults it as pure
// data rather than through inline conditionals.
type PermissionTable struct {
	allowed map[schemas.Role]map[schemas.Action]struct{}
}

// NewPermissionTable builds an immutable table from a role/action mapping.
func NewPermissionTable(perms map[schemas.Role][]schemas.Action) (*PermissionTable, error) {
	if len(perms) == 0 {
		return nil, fmt.Errorf("permission table cannot be empty")
	}
	allowed := make(map[schemas.Role]map[schemas.Action]struct{}, len(perms))
	for role, actions := range perms {
		set := make(map[schemas.Action]struct{}, len(actions))
		for _, a := range actions {
			set[a] = struct{}{}
		}
		allowed[role] = set
	}
	return &PermissionTable{allowed: allowed}, nil
}

// Allows reports whether the role's permitted set contains the action.
// Unknown roles have an empty permitted set.
func (t *PermissionTable) Allows(role schemas.Role, action schemas.Action) bool {
	set, ok := t.allowed[role]
	if !ok {
		return false
	}
	_, ok = set[action]
	return ok
}

// ActionsFor returns the permitted actions for a role. The slice is sorted
// so agents drawing from it produce identical traffic for identical seeds.
func (t *PermissionTable) ActionsFor(role schemas.Role) []schemas.Action {
	set, ok := t.allowed[role]
	if !ok {
		return nil
	}
	actions := make([]schemas.Action, 0, len(set))
	for a := range set {
		actions = append(actions, a)
	}
	sort.Slice(actions, func(i, j int) bool { return actions[i] < actions[j] })
	return actions
}
