package domain

import "time"

// User is an account that can authenticate and submit complaints.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity returns the token subject for the account.
func (u *User) Identity() Identity {
	return Identity{SubjectID: u.ID, Email: u.Email, Role: u.Role}
}
