package domain

import "time"

// UserProfile is the backend-owned user record; the client only keeps a cached copy.
type UserProfile struct {
	ID        string     `json:"id"`
	Username  string     `json:"username"`
	Fullname  string     `json:"fullname"`
	Email     string     `json:"email"`
	IsActive  *bool      `json:"is_active,omitempty"`
	IsValid   *bool      `json:"is_valid,omitempty"`
	IsDeleted *bool      `json:"is_deleted,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	CreatedBy *string    `json:"created_by,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
	UpdatedBy *string    `json:"updated_by,omitempty"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterInput struct {
	Username string `json:"username"`
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserUpdate is a partial profile update; nil fields are not sent.
type UserUpdate struct {
	Username *string `json:"username,omitempty"`
	Fullname *string `json:"fullname,omitempty"`
	Email    *string `json:"email,omitempty"`
}

// AuthResponse is the backend answer to login and register.
type AuthResponse struct {
	AccessToken string       `json:"access_token"`
	User        *UserProfile `json:"user"`
}
