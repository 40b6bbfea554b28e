package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/beautypos-api/internal/domain/entity"
	"github.com/sangkips/beautypos-api/internal/domain/enum"
	"github.com/sangkips/beautypos-api/internal/presentation/http/dto/response"
	"github.com/sangkips/beautypos-api/pkg/apperror"
	"github.com/sangkips/beautypos-api/pkg/utils"
)

// Context keys set by AuthMiddleware.
const (
	UserIDKey    = "user_id"
	UserEmailKey = "user_email"
	UserRoleKey  = "user_role"
)

// UserLookup loads the account behind a token
type UserLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
}

// AuthMiddleware creates a JWT authentication middleware. When users is set, the
// account is reloaded on every request: deleted or disabled accounts are rejected
// and the stored role replaces the one in the token.
func AuthMiddleware(jwtManager *utils.JWTManager, users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "Authorization header is required")
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			response.Unauthorized(c, "Invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := jwtManager.ValidateAccessToken(parts[1])
		if err != nil {
			response.Unauthorized(c, "Invalid or expired token")
			c.Abort()
			return
		}

		role := enum.Role(claims.Role)
		if !role.IsValid() {
			response.Unauthorized(c, "Invalid token")
			c.Abort()
			return
		}

		if users != nil {
			user, err := users.GetByID(c.Request.Context(), claims.UserID)
			if err != nil {
				response.Error(c, apperror.NewInternalError("load user", err))
				c.Abort()
				return
			}
			if user == nil || !user.IsActive {
				response.Unauthorized(c, "Account is disabled or no longer exists")
				c.Abort()
				return
			}
			role = user.Role
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(UserEmailKey, claims.Email)
		c.Set(UserRoleKey, role)

		c.Next()
	}
}

// RequireRole lets the request through only when the caller has one of roles.
func RequireRole(roles ...enum.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get(UserRoleKey)
		if !exists {
			response.Forbidden(c, "Access denied")
			c.Abort()
			return
		}
		role, ok := value.(enum.Role)
		if !ok {
			response.Forbidden(c, "Access denied")
			c.Abort()
			return
		}

		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}

		response.Forbidden(c, "Insufficient role privileges")
		c.Abort()
	}
}
