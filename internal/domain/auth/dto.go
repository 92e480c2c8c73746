// internal/domain/auth/dto.go
package auth

import "time"

// RegisterRequest for user registration. Admins are never self-registered.
type RegisterRequest struct {
	Email        string `json:"email" binding:"required,email,max=255"`
	Phone        string `json:"phone" binding:"omitempty,max=32"`
	Password     string `json:"password" binding:"required,min=8,max=72"`
	FullName     string `json:"full_name" binding:"required,max=255"`
	Role         Role   `json:"role" binding:"required,oneof=business customer"`
	BusinessName string `json:"business_name" binding:"required_if=Role business,max=255"`
}

// LoginRequest for user login
type LoginRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required"`
	Device    string `json:"device" binding:"omitempty,max=128"`
	IPAddress string `json:"-"`
	UserAgent string `json:"-"`
}

// LoginResponse is returned alongside the session cookie.
type LoginResponse struct {
	ExpiresAt time.Time `json:"expires_at"`
	User      *User     `json:"user"`
}

type UserListFilters struct {
	Role     Role   `form:"role" binding:"omitempty,oneof=admin business customer"`
	Search   string `form:"search" binding:"omitempty,max=100"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

type UserListResponse struct {
	Users      []User `json:"users"`
	Total      int64  `json:"total"`
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
	TotalPages int    `json:"total_pages"`
}
