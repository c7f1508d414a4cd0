package dto

import (
	"time"

	"github.com/spec-kit/parking-service/internal/domain"
)

// RegisterRequest payload for new accounts.
type RegisterRequest struct {
	Name     string       `json:"name"`
	Email    string       `json:"email"`
	Password string       `json:"password"`
	Phone    *string      `json:"phone,omitempty"`
	Role     *domain.Role `json:"role,omitempty"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse is the account as returned by register and login.
type UserResponse struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Phone     *string     `json:"phone,omitempty"`
	Role      domain.Role `json:"role"`
	CreatedAt time.Time   `json:"createdAt"`
}

// ProfileResponse is the reduced identity returned by getuser.
type ProfileResponse struct {
	ID    string      `json:"id"`
	Email string      `json:"email"`
	Name  string      `json:"name"`
	Role  domain.Role `json:"role"`
}

// AuthResponse standard response for register and login.
type AuthResponse struct {
	User      UserResponse `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

// CurrentUserResponse wraps the profile for getuser.
type CurrentUserResponse struct {
	User ProfileResponse `json:"user"`
}

// NewUserResponse maps a domain user, leaving the password hash behind.
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// NewProfileResponse maps a domain user to its reduced profile.
func NewProfileResponse(u *domain.User) ProfileResponse {
	return ProfileResponse{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}
