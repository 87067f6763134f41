package domain

import "time"

// Role is the self-declared role a member picks in their profile.
type Role string

const (
	RoleVolunteer     Role = "Volunteer"
	RoleHelpRequested Role = "Help Requested"
	RoleAdmin         Role = "Admin"
)

// Roles lists every role accepted by profile updates.
var Roles = []Role{RoleVolunteer, RoleHelpRequested, RoleAdmin}

// Valid reports whether the role is one of the enumerated set.
func (r Role) Valid() bool {
	for _, role := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasPermission reports whether the role satisfies the required role.
// Admin satisfies everything; other roles only satisfy themselves.
func (r Role) HasPermission(required Role) bool {
	if r == RoleAdmin {
		return true
	}
	return r == required
}

// User is a registered member of the outreach community.
// JSON tags follow the wire contract of the reference front-end:
// camelCase names, snake_case image reference.
type User struct {
	ID              string    `json:"id"`
	FirstName       string    `json:"firstName"`
	LastName        string    `json:"lastName"`
	Email           string    `json:"email"`
	PasswordHash    string    `json:"-"`
	Role            Role      `json:"role"`
	ProfileImageURL *string   `json:"profile_image_url"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
