package authz

const (
	RoleOperations = 20
	RoleAudit      = 30
	RoleAdmin      = 50
)

// WriteRoles may create, update or change the lifecycle state of clients,
// cards and contracts.
var WriteRoles = []int{RoleOperations, RoleAdmin}

func CanWrite(roleID int) bool {
	for _, r := range WriteRoles {
		if r == roleID {
			return true
		}
	}
	return false
}

func IsReadOnly(roleID int) bool {
	return roleID == RoleAudit
}
