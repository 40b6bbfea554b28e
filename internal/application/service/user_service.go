package service

import (
	"context"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/beautypos-api/internal/domain/entity"
	"github.com/sangkips/beautypos-api/internal/domain/enum"
	"github.com/sangkips/beautypos-api/internal/domain/repository"
	"github.com/sangkips/beautypos-api/pkg/apperror"
	"github.com/sangkips/beautypos-api/pkg/pagination"
	"github.com/sangkips/beautypos-api/pkg/utils"
)

const minPasswordLength = 8

// UserService handles staff user management
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a new user service
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// CreateUserInput represents the create user input
type CreateUserInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      enum.Role
}

// UpdateUserInput carries a partial update; nil fields are left unchanged.
type UpdateUserInput struct {
	Email     *string
	Password  *string
	FirstName *string
	LastName  *string
	Role      *enum.Role
	IsActive  *bool
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return "", apperror.NewFieldError("email", "email is invalid")
	}
	return email, nil
}

func (s *UserService) ensureEmailFree(ctx context.Context, email string, self uuid.UUID) error {
	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != self {
		return apperror.NewConflictError("Email already registered")
	}
	return nil
}

// CreateUser creates a staff account
func (s *UserService) CreateUser(ctx context.Context, input *CreateUserInput) (*entity.User, error) {
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	if len(input.Password) < minPasswordLength {
		return nil, apperror.NewFieldError("password", "password must be at least 8 characters")
	}
	if !input.Role.IsValid() {
		return nil, apperror.NewFieldError("role", "role must be ADMIN or SELLER")
	}
	if strings.TrimSpace(input.FirstName) == "" || strings.TrimSpace(input.LastName) == "" {
		return nil, apperror.NewFieldError("name", "first and last name are required")
	}
	if err := s.ensureEmailFree(ctx, email, uuid.Nil); err != nil {
		return nil, err
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		Email:     email,
		Password:  hash,
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
		Role:      input.Role,
		IsActive:  true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetUser returns a user by ID
func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NewNotFoundError("User")
	}
	return user, nil
}

// UpdateUser applies a partial update. Admins cannot demote or disable themselves.
func (s *UserService) UpdateUser(ctx context.Context, actor Actor, id uuid.UUID, input *UpdateUserInput) (*entity.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Email != nil {
		email, err := normalizeEmail(*input.Email)
		if err != nil {
			return nil, err
		}
		if err := s.ensureEmailFree(ctx, email, user.ID); err != nil {
			return nil, err
		}
		user.Email = email
	}
	if input.Password != nil {
		if len(*input.Password) < minPasswordLength {
			return nil, apperror.NewFieldError("password", "password must be at least 8 characters")
		}
		hash, err := utils.HashPassword(*input.Password)
		if err != nil {
			return nil, err
		}
		user.Password = hash
	}
	if input.FirstName != nil {
		user.FirstName = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		user.LastName = strings.TrimSpace(*input.LastName)
	}
	if input.Role != nil {
		if !input.Role.IsValid() {
			return nil, apperror.NewFieldError("role", "role must be ADMIN or SELLER")
		}
		if actor.UserID == user.ID && *input.Role != enum.RoleAdmin {
			return nil, apperror.NewForbiddenError("You cannot remove your own admin role")
		}
		user.Role = *input.Role
	}
	if input.IsActive != nil {
		if actor.UserID == user.ID && !*input.IsActive {
			return nil, apperror.NewForbiddenError("You cannot disable your own account")
		}
		user.IsActive = *input.IsActive
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser soft-deletes a user; their invoices keep the reference
func (s *UserService) DeleteUser(ctx context.Context, actor Actor, id uuid.UUID) error {
	if actor.UserID == id {
		return apperror.NewForbiddenError("You cannot delete your own account")
	}
	if _, err := s.GetUser(ctx, id); err != nil {
		return err
	}
	return s.userRepo.Delete(ctx, id)
}

// ListUsers returns a page of users
func (s *UserService) ListUsers(ctx context.Context, params pagination.Params, search string, role *enum.Role) (*pagination.PaginatedResult[entity.User], error) {
	params.Normalize()
	users, total, err := s.userRepo.List(ctx, params, search, role)
	if err != nil {
		return nil, err
	}
	return pagination.NewPaginatedResult(users, params, total), nil
}
