// Package domain contains the core entities of the Connect server.
package domain

import "time"

// Role represents what kind of member a user is on the platform.
type Role string

const (
	// RoleStudent is a currently enrolled student.
	RoleStudent Role = "student"
	// RoleAlumni is a graduate of the institution.
	RoleAlumni Role = "alumni"
	// RoleMentor is an industry or faculty mentor.
	RoleMentor Role = "mentor"
	// RoleAdmin administers the platform.
	RoleAdmin Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleAlumni, RoleMentor, RoleAdmin:
		return true
	}
	return false
}

// UserStatus represents the user's account status.
type UserStatus string

// UserStatusActive is the only status the account subsystem assigns today.
const UserStatusActive UserStatus = "active"

// User is an account owned by the (external) account subsystem.
// The suggestion engine only reads it.
type User struct {
	ID        int64      `json:"user_id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      Role       `json:"role"`
	Status    UserStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
}
