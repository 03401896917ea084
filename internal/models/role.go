package models

// Role is the closed set of profile roles. Authorization decisions compare
// ranks via authz.Rank, never raw strings.
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleAdmin      Role = "admin"
	RoleOwner      Role = "owner"
	RoleManager    Role = "manager"
	RoleStaff      Role = "staff"
)

func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleOwner, RoleManager, RoleStaff:
		return true
	}
	return false
}
