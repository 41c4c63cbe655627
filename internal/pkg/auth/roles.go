package auth

const (
	// RoleClient is a default registered user
	RoleClient = "CLIENT"
	// RoleMember is a team member
	RoleMember = "MEMBER"
	// RoleAdmin manages leads and users
	RoleAdmin = "ADMIN"
	// RoleSuperAdmin has all permissions
	RoleSuperAdmin = "SUPER_ADMIN"
)

var roleRank = map[string]int{RoleClient: 1, RoleMember: 2, RoleAdmin: 3, RoleSuperAdmin: 4}

// ValidRole checks if role is known
func ValidRole(role string) bool {
	_, ok := roleRank[role]
	return ok
}

// HasRole checks if role is equal or higher than min
func HasRole(role, min string) bool {
	r, ok := roleRank[role]
	return ok && r >= roleRank[min]
}
