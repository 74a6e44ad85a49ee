package user

// Role represents a user's global role (matches user_role enum)
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
	RoleServer    Role = "server"
)

// roleLevel defines the partial order between roles. Every permission
// decision goes through Permits below, never through ad hoc string
// comparisons at call sites.
var roleLevel = map[Role]int{
	RoleUser:      0,
	RoleModerator: 1,
	RoleAdmin:     2,
	RoleServer:    3,
}

// Action is a permission-gated operation on the platform
type Action string

const (
	ActionWarn             Action = "warn"
	ActionMute             Action = "mute"
	ActionBan              Action = "ban"
	ActionManageReports    Action = "manage_reports"
	ActionListUsers        Action = "list_users"
	ActionManageModerators Action = "manage_moderators"
	ActionManagePublicChat Action = "manage_public_chat"
	ActionViewAuditLog     Action = "view_audit_log"
)

// minRole maps each action to the weakest role allowed to perform it
var minRole = map[Action]Role{
	ActionWarn:             RoleModerator,
	ActionMute:             RoleModerator,
	ActionBan:              RoleModerator,
	ActionManageReports:    RoleModerator,
	ActionListUsers:        RoleModerator,
	ActionManageModerators: RoleAdmin,
	ActionManagePublicChat: RoleAdmin,
	ActionViewAuditLog:     RoleAdmin,
}

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	_, ok := roleLevel[r]
	return ok
}

// AtLeast reports whether r ranks at or above other
func (r Role) AtLeast(other Role) bool {
	return roleLevel[r] >= roleLevel[other]
}

// Permits reports whether the role may perform the given action
func (r Role) Permits(a Action) bool {
	min, ok := minRole[a]
	if !ok {
		return false
	}
	return r.AtLeast(min)
}

// ValidRoles returns the roles a user may hold on registration
func ValidRoles() []Role {
	return []Role{RoleUser}
}
