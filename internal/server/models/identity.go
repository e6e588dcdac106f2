package models

import "github.com/dmitrijs2005/gophauth/internal/common"

// Role is the coarse role carried by a directory identity.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Identity is a user record owned by the external directory. It is treated
// as read-only input for the duration of a request and never persisted here.
type Identity struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	PhoneNumber  string
	Role         Role
	Active       bool
}

// Authorities renders the role as the claims list put into access tokens.
func (i *Identity) Authorities() []string {
	role := i.Role
	if role == "" {
		role = RoleUser
	}
	return []string{common.RolePrefix + string(role)}
}

// NewIdentity is the directory create request. Password is the raw password;
// hashing is the directory's job.
type NewIdentity struct {
	Username    string
	Email       string
	Password    string
	FirstName   string
	LastName    string
	PhoneNumber string
	Role        Role
}

// Profile is the public view of an identity (no password hash).
type Profile struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	FirstName   string `json:"firstName,omitempty"`
	LastName    string `json:"lastName,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	Role        Role   `json:"role"`
	Active      bool   `json:"active"`
}

// Profile strips secrets off the identity.
func (i *Identity) Profile() Profile {
	return Profile{
		ID:          i.ID,
		Username:    i.Username,
		Email:       i.Email,
		FirstName:   i.FirstName,
		LastName:    i.LastName,
		PhoneNumber: i.PhoneNumber,
		Role:        i.Role,
		Active:      i.Active,
	}
}
