package models

import "time"

type User struct {
	ID          string     `json:"_id"`
	Roles       []string   `json:"roles,omitempty"`
	Email       string     `json:"email"`
	Name        string     `json:"name,omitempty"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	Avatar      string     `json:"avatar,omitempty"`
	Address     string     `json:"address,omitempty"`
	Phone       string     `json:"phone,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type Credentials struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=160"`
}

// AuthResponse is the backend payload for both login and register.
type AuthResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires"`
	User        User   `json:"user"`
}

// UpdateProfileRequest carries only the fields the backend lets a user
// change. Password/NewPassword ride along for the change-password flow;
// the confirm field is validated here and never forwarded.
type UpdateProfileRequest struct {
	Name        string     `json:"name,omitempty"`
	Phone       string     `json:"phone,omitempty"`
	Address     string     `json:"address,omitempty"`
	Avatar      string     `json:"avatar,omitempty"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	Password    string     `json:"password,omitempty"`
	NewPassword string     `json:"new_password,omitempty"`
}

type ChangePasswordRequest struct {
	Password        string `json:"password" binding:"required,min=6,max=160"`
	NewPassword     string `json:"new_password" binding:"required,min=6,max=160"`
	ConfirmPassword string `json:"confirm_password" binding:"required,eqfield=NewPassword"`
}
