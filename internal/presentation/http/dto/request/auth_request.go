package request

import "github.com/sangkips/beautypos-api/internal/domain/enum"

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// CreateUserRequest represents a staff account creation request
type CreateUserRequest struct {
	Email     string    `json:"email" binding:"required,email"`
	Password  string    `json:"password" binding:"required,min=8"`
	FirstName string    `json:"firstName" binding:"required,max=255"`
	LastName  string    `json:"lastName" binding:"required,max=255"`
	Role      enum.Role `json:"role" binding:"required"`
}

// UpdateUserRequest represents a partial staff account update
type UpdateUserRequest struct {
	Email     *string    `json:"email" binding:"omitempty,email"`
	Password  *string    `json:"password" binding:"omitempty,min=8"`
	FirstName *string    `json:"firstName" binding:"omitempty,max=255"`
	LastName  *string    `json:"lastName" binding:"omitempty,max=255"`
	Role      *enum.Role `json:"role"`
	IsActive  *bool      `json:"isActive"`
}

// UserFilterRequest represents user list parameters
type UserFilterRequest struct {
	Search string `form:"search"`
	Role   string `form:"role" binding:"omitempty,oneof=ADMIN SELLER"`
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
}
