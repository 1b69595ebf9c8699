package models

// User roles recognised by the API
const (
	RoleManager    = "manager"
	RoleDispatcher = "dispatcher"
	RoleSafety     = "safety"
	RoleFinance    = "finance"
)

// IsValidRole reports whether role is one of the known user roles
func IsValidRole(role string) bool {
	switch role {
	case RoleManager, RoleDispatcher, RoleSafety, RoleFinance:
		return true
	}
	return false
}
