package domain

import "time"

// User is the persisted account record behind the credential store.
type User struct {
	ID           string
	FullName     string
	Email        string
	Phone        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicProfile strips credential material for API responses and listings.
type PublicProfile struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Role     Role   `json:"role"`
}

// Profile returns the user's public projection.
func (u User) Profile() PublicProfile {
	return PublicProfile{
		ID:       u.ID,
		FullName: u.FullName,
		Email:    u.Email,
		Phone:    u.Phone,
		Role:     u.Role,
	}
}
