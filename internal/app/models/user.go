package models

import "time"

// Role is the platform-wide role of a user
type Role string

const (
	RoleStudent Role = "student"
	RoleFaculty Role = "faculty"
)

// Theme is the UI theme preference stored on the profile
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// User represents a registered student or faculty member
type User struct {
	ID              int64     `json:"id" db:"id"`
	Name            string    `json:"name" db:"name"`
	Email           string    `json:"email" db:"email"`
	PasswordHash    string    `json:"-" db:"password_hash"`
	Role            Role      `json:"role" db:"role"`
	Department      string    `json:"department" db:"department"`
	Bio             *string   `json:"bio,omitempty" db:"bio"`
	Interests       []string  `json:"interests,omitempty" db:"interests"`
	ProfilePhotoURL *string   `json:"profilePhotoUrl,omitempty" db:"profile_photo_url"`
	Theme           Theme     `json:"theme" db:"theme"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt" db:"updated_at"`
}

// Actor is the authenticated identity performing an operation. It is resolved
// once by the auth middleware and passed explicitly into every engine and
// service call; nothing reads identity from ambient state.
type Actor struct {
	ID         int64
	Name       string
	Role       Role
	Department string
}

// IsFaculty reports whether the actor holds the faculty role
func (a Actor) IsFaculty() bool {
	return a.Role == RoleFaculty
}
