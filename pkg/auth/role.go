package auth

// Role is the access level granted by a shared secret.
type Role string

const (
	// RoleAdmin sees parts and products and may run backups.
	RoleAdmin Role = "admin"
	// RoleRestricted sees products only.
	RoleRestricted Role = "restricted"
)

// categoryProduct mirrors the inventory "product" item type. auth stays
// independent of the inventory packages, so categories are plain strings.
const categoryProduct = "product"

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleRestricted
}

// CanAccess reports whether role may see items of the given category.
func CanAccess(role Role, category string) bool {
	switch role {
	case RoleAdmin:
		return true
	case RoleRestricted:
		return category == categoryProduct
	default:
		return false
	}
}
