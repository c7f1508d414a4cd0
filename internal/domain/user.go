package domain

import "time"

// Role distinguishes drivers from parking spot owners.
type Role string

const (
	RoleUser  Role = "user"
	RoleOwner Role = "owner"
)

// User is the domain model for registered accounts.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Phone        *string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
