package model

import "time"

// Roles carried in the JWT "role" claim. Clients post repair requests;
// technicians bid on and carry them out.
const (
	RoleClient     = "CLIENT"
	RoleTechnician = "TECHNICIAN"
)

// User mirrors the users table. The password hash never leaves the
// repository/handler layer; responses expose only id, email and role.
type User struct {
	ID           uint64    `json:"id"`    // users.id
	Email        string    `json:"email"` // users.email (unique, lower-cased)
	PasswordHash string    `json:"-"`     // users.password_hash (bcrypt)
	Role         string    `json:"role"`  // CLIENT | TECHNICIAN
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
