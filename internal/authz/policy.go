// Package authz is the single place role/permission decisions are made.
// Call sites never recompute ad hoc boolean flags; they ask the policy.
package authz

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleMember  Role = "member"
	RoleViewer  Role = "viewer"
)

type Action string

const (
	ActionTaskRead       Action = "task:read"
	ActionTaskCreate     Action = "task:create"
	ActionTaskUpdate     Action = "task:update"
	ActionTaskDelete     Action = "task:delete"
	ActionTaskAssign     Action = "task:assign"
	ActionCategoryManage Action = "category:manage"
)

var policy = map[Role]map[Action]bool{
	RoleAdmin: {
		ActionTaskRead:       true,
		ActionTaskCreate:     true,
		ActionTaskUpdate:     true,
		ActionTaskDelete:     true,
		ActionTaskAssign:     true,
		ActionCategoryManage: true,
	},
	RoleManager: {
		ActionTaskRead:       true,
		ActionTaskCreate:     true,
		ActionTaskUpdate:     true,
		ActionTaskDelete:     true,
		ActionTaskAssign:     true,
		ActionCategoryManage: true,
	},
	RoleMember: {
		ActionTaskRead:   true,
		ActionTaskCreate: true,
		ActionTaskUpdate: true,
		ActionTaskDelete: true,
	},
	RoleViewer: {
		ActionTaskRead: true,
	},
}

// Allowed reports whether role may perform action. Unknown roles and
// unknown actions are denied.
func Allowed(role Role, action Action) bool {
	actions, ok := policy[role]
	if !ok {
		return false
	}
	return actions[action]
}

// ParseRole maps a raw claim to a Role, defaulting unknown values to
// the most restricted role.
func ParseRole(raw string) Role {
	switch Role(raw) {
	case RoleAdmin, RoleManager, RoleMember, RoleViewer:
		return Role(raw)
	default:
		return RoleViewer
	}
}

// Elevated roles see every row, not just their own.
func Elevated(role Role) bool {
	return role == RoleAdmin || role == RoleManager
}
