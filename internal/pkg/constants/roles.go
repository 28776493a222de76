package constants

// Staff permission roles (the invitation form's 権限 select).
const (
	Owner    = "owner"
	Admin    = "admin"
	Operator = "operator"
	Viewer   = "viewer"
)

// InviteRoles is the fixed enumeration a staff invitation can grant, in display order.
var InviteRoles = []string{Owner, Admin, Operator, Viewer}

// RoleLabels are the Japanese labels shown for each role.
var RoleLabels = map[string]string{
	Owner:    "オーナー",
	Admin:    "管理者",
	Operator: "オペレーター",
	Viewer:   "閲覧者",
}
