package policy

import "forumhub/internal/model"

// Action names a privileged operation gated by role.
type Action string

const (
	ActionDeleteThread  Action = "delete_thread"
	ActionLockThread    Action = "lock_thread"
	ActionWarnUser      Action = "warn_user"
	ActionUnbanUser     Action = "unban_user"
	ActionCreateSection Action = "create_section"
	ActionDeleteSection Action = "delete_section"
	ActionDeleteChat    Action = "delete_chat"
)

// elevatedActions is the fixed set of actions that require an elevated role.
var elevatedActions = map[Action]bool{
	ActionDeleteThread:  true,
	ActionLockThread:    true,
	ActionWarnUser:      true,
	ActionUnbanUser:     true,
	ActionCreateSection: true,
	ActionDeleteSection: true,
	ActionDeleteChat:    true,
}

// Level returns the position of a role in the total order admin > mod > user.
// Unknown roles get -1 and fail every permission check.
func Level(r model.Role) int {
	switch r {
	case model.RoleAdmin:
		return 3
	case model.RoleMod:
		return 2
	case model.RoleUser:
		return 1
	default:
		return -1
	}
}

// Valid reports whether r is one of the known roles.
func Valid(r model.Role) bool {
	return Level(r) > 0
}

// Elevated reports whether r is admin or mod.
func Elevated(r model.Role) bool {
	return Level(r) >= Level(model.RoleMod)
}

// CanView reports whether a role may see a section with the given allowed set.
func CanView(r model.Role, allowed []model.Role) bool {
	if !Valid(r) {
		return false
	}
	for _, a := range allowed {
		if a == r {
			return true
		}
	}
	return false
}

// RequiresElevated reports whether the action is restricted to admin/mod.
func RequiresElevated(a Action) bool {
	return elevatedActions[a]
}
