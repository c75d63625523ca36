package entity

// Roles válidos del actor.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleStaff   = "staff"
	RoleViewer  = "viewer"
)

// Identity es el actor que invoca una operación (lo entrega el colaborador de identidad).
type Identity struct {
	ID   string
	Role string
}

// IsPrivileged indica admin o manager.
func (i Identity) IsPrivileged() bool {
	return i.Role == RoleAdmin || i.Role == RoleManager
}

// ValidRole valida el rol recibido en tokens o altas.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleManager, RoleStaff, RoleViewer:
		return true
	}
	return false
}
