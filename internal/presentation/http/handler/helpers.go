package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/beautypos-api/internal/application/service"
	"github.com/sangkips/beautypos-api/internal/domain/enum"
	"github.com/sangkips/beautypos-api/internal/presentation/http/middleware"
	"github.com/sangkips/beautypos-api/pkg/apperror"
)

const dateLayout = "2006-01-02"

// GetUserID extracts the user ID from the Gin context
func GetUserID(c *gin.Context) *uuid.UUID {
	userIDVal, exists := c.Get(middleware.UserIDKey)
	if !exists {
		return nil
	}
	userID, ok := userIDVal.(uuid.UUID)
	if !ok {
		return nil
	}
	return &userID
}

// GetUserRole extracts the user role from the Gin context
func GetUserRole(c *gin.Context) enum.Role {
	role, _ := c.Get(middleware.UserRoleKey)
	r, _ := role.(enum.Role)
	return r
}

// GetActor builds the service actor for the authenticated caller.
func GetActor(c *gin.Context) (service.Actor, bool) {
	userID := GetUserID(c)
	role := GetUserRole(c)
	if userID == nil || !role.IsValid() {
		return service.Actor{}, false
	}
	return service.Actor{UserID: *userID, Role: role}, true
}

func parseID(c *gin.Context, param string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		return uuid.Nil, apperror.NewBadRequestError("Invalid " + param + " format")
	}
	return id, nil
}

func parseOptionalID(field, value string) (*uuid.UUID, error) {
	if value == "" {
		return nil, nil
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return nil, apperror.NewFieldError(field, "must be a valid UUID")
	}
	return &id, nil
}

// parseDate accepts YYYY-MM-DD or RFC 3339. A bare date used as an upper bound
// covers the whole day.
func parseDate(field, value string, endOfDay bool) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, apperror.NewFieldError(field, "must be a date (YYYY-MM-DD) or an RFC 3339 timestamp")
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

func parseDateRange(start, end string) (*time.Time, *time.Time, error) {
	from, err := parseDate("startDate", start, false)
	if err != nil {
		return nil, nil, err
	}
	to, err := parseDate("endDate", end, true)
	if err != nil {
		return nil, nil, err
	}
	return from, to, nil
}
