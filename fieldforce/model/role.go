package model

type Role string

const (
	RoleSuperAdmin  Role = "super_admin"
	RoleBranchAdmin Role = "branch_admin"
	RoleOfficer     Role = "officer"
	RoleDriver      Role = "driver"
)

func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleBranchAdmin, RoleOfficer, RoleDriver:
		return true
	}
	return false
}

func (r Role) IsAdmin() bool {
	return r == RoleSuperAdmin || r == RoleBranchAdmin
}
