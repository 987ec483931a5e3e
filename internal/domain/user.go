package domain

import (
	"strings"
	"time"
)

// Role enumerates the closed set of actor roles.
type Role string

const (
	RoleAdministrator Role = "ADMINISTRATOR"
	RoleOperator      Role = "OPERATOR"
	RoleTechnician    Role = "TECHNICIAN"
)

var roleAliases = map[string]Role{
	"ADMINISTRATOR": RoleAdministrator,
	"ADMINISTRADOR": RoleAdministrator,
	"OPERATOR":      RoleOperator,
	"OPERADOR":      RoleOperator,
	"TECHNICIAN":    RoleTechnician,
	"TECNICO":       RoleTechnician,
}

// ParseRole accepts canonical role names and the legacy Spanish labels.
func ParseRole(raw string) (Role, bool) {
	role, ok := roleAliases[strings.ToUpper(strings.TrimSpace(raw))]
	return role, ok
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdministrator, RoleOperator, RoleTechnician:
		return true
	default:
		return false
	}
}

// User is a directory entry for people who file or work tickets.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	FullName     string
	Email        string
	Role         Role
	CourtID      *string
	Active       bool
	Deleted      bool
	CreatedAt    time.Time
}

// Live reports whether the user may be referenced by new ticket data.
func (u *User) Live() bool {
	return u.Active && !u.Deleted
}

// Actor is the authenticated identity performing an operation.
type Actor struct {
	UserID   string
	Username string
	Role     Role
}

// ActorFromUser builds the actor identity for a directory user.
func ActorFromUser(u *User) Actor {
	return Actor{UserID: u.ID, Username: u.Username, Role: u.Role}
}
