package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sangkips/beautypos-api/internal/domain/entity"
	"github.com/sangkips/beautypos-api/internal/domain/enum"
	"github.com/sangkips/beautypos-api/internal/infrastructure/database/dbtest"
	"github.com/sangkips/beautypos-api/internal/infrastructure/repository"
	"github.com/sangkips/beautypos-api/internal/presentation/http/middleware"
	"github.com/sangkips/beautypos-api/pkg/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newJWT() *utils.JWTManager {
	return utils.NewJWTManager("test-secret", "beautypos-api", time.Hour)
}

func bearer(t *testing.T, m *utils.JWTManager, id uuid.UUID, role string) string {
	t.Helper()
	token, err := m.GenerateAccessToken(id, "staff@shop.test", role)
	require.NoError(t, err)
	return "Bearer " + token
}

func do(r http.Handler, method, path, auth, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	jwt := newJWT()
	r := gin.New()
	r.Use(middleware.AuthMiddleware(jwt, nil))
	r.GET("/me", func(c *gin.Context) {
		role, _ := c.Get(middleware.UserRoleKey)
		c.String(http.StatusOK, "%s", role)
	})

	id := uuid.New()
	tests := []struct {
		name     string
		auth     string
		wantCode int
	}{
		{name: "missing header", wantCode: http.StatusUnauthorized},
		{name: "wrong scheme", auth: "Basic abc", wantCode: http.StatusUnauthorized},
		{name: "garbage token", auth: "Bearer nope", wantCode: http.StatusUnauthorized},
		{name: "unknown role", auth: bearer(t, jwt, id, "OWNER"), wantCode: http.StatusUnauthorized},
		{name: "seller", auth: bearer(t, jwt, id, "SELLER"), wantCode: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, http.MethodGet, "/me", tt.auth, "")
			assert.Equal(t, tt.wantCode, w.Code)
		})
	}

	w := do(r, http.MethodGet, "/me", bearer(t, jwt, id, "ADMIN"), "")
	assert.Equal(t, "ADMIN", w.Body.String())
}

func TestAuthMiddleware_ReloadsAccount(t *testing.T) {
	db := dbtest.New(t)
	users := repository.NewUserRepository(db)
	jwt := newJWT()

	newUser := func(email string, role enum.Role, active bool) uuid.UUID {
		u := &entity.User{Email: email, Password: "hash", FirstName: "Sam", LastName: "Staff", Role: role, IsActive: true}
		require.NoError(t, users.Create(context.Background(), u))
		if !active {
			u.IsActive = false
			require.NoError(t, users.Update(context.Background(), u))
		}
		return u.ID
	}
	demoted := newUser("demoted@shop.test", enum.RoleSeller, true)
	disabled := newUser("disabled@shop.test", enum.RoleSeller, false)
	deleted := newUser("deleted@shop.test", enum.RoleSeller, true)
	require.NoError(t, users.Delete(context.Background(), deleted))

	r := gin.New()
	r.Use(middleware.AuthMiddleware(jwt, users))
	r.GET("/me", func(c *gin.Context) {
		role, _ := c.Get(middleware.UserRoleKey)
		c.String(http.StatusOK, "%s", role)
	})

	tests := []struct {
		name     string
		auth     string
		wantCode int
		wantRole string
	}{
		{name: "role comes from the account", auth: bearer(t, jwt, demoted, "ADMIN"), wantCode: http.StatusOK, wantRole: "SELLER"},
		{name: "disabled account", auth: bearer(t, jwt, disabled, "SELLER"), wantCode: http.StatusUnauthorized},
		{name: "deleted account", auth: bearer(t, jwt, deleted, "SELLER"), wantCode: http.StatusUnauthorized},
		{name: "unknown account", auth: bearer(t, jwt, uuid.New(), "ADMIN"), wantCode: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, http.MethodGet, "/me", tt.auth, "")
			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantRole != "" {
				assert.Equal(t, tt.wantRole, w.Body.String())
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	jwt := newJWT()
	r := gin.New()
	r.Use(middleware.AuthMiddleware(jwt, nil))
	r.GET("/admin", middleware.RequireRole(enum.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	w := do(r, http.MethodGet, "/admin", bearer(t, jwt, uuid.New(), "SELLER"), "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"FORBIDDEN"`)

	w = do(r, http.MethodGet, "/admin", bearer(t, jwt, uuid.New(), "ADMIN"), "")
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(middleware.RequestID())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := do(r, http.MethodGet, "/", "", "", "X-Request-ID", "abc-123")
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))

	w = do(r, http.MethodGet, "/", "", "")
	_, err := uuid.Parse(w.Header().Get("X-Request-ID"))
	assert.NoError(t, err)
}

func TestRateLimiter_PerCaller(t *testing.T) {
	rl := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		RequestsPerSecond: 0.001,
		BurstSize:         2,
		CleanupInterval:   time.Minute,
		EntryTTL:          time.Minute,
	})
	defer rl.Stop()

	jwt := newJWT()
	r := gin.New()
	r.Use(middleware.AuthMiddleware(jwt, nil), rl.Middleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	alice := bearer(t, jwt, uuid.New(), "SELLER")
	bob := bearer(t, jwt, uuid.New(), "SELLER")

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/", alice, "").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/", alice, "").Code)
	w := do(r, http.MethodGet, "/", alice, "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/", bob, "").Code, "buckets are per user")
}

func TestIdempotency(t *testing.T) {
	db := dbtest.New(t)
	repo := repository.NewIdempotencyRepository(db)
	jwt := newJWT()

	var calls int32
	status := http.StatusCreated
	r := gin.New()
	r.Use(middleware.AuthMiddleware(jwt, nil))
	r.POST("/invoices", middleware.Idempotency(repo), func(c *gin.Context) {
		n := atomic.AddInt32(&calls, 1)
		c.JSON(status, gin.H{"call": n})
	})

	auth := bearer(t, jwt, uuid.New(), "SELLER")
	body := `{"clientId":"x"}`

	first := do(r, http.MethodPost, "/invoices", auth, body, middleware.IdempotencyKeyHeader, "k1")
	require.Equal(t, http.StatusCreated, first.Code)

	replay := do(r, http.MethodPost, "/invoices", auth, body, middleware.IdempotencyKeyHeader, "k1")
	assert.Equal(t, http.StatusCreated, replay.Code)
	assert.Equal(t, "true", replay.Header().Get("X-Idempotency-Replayed"))
	assert.JSONEq(t, first.Body.String(), replay.Body.String())
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))

	conflict := do(r, http.MethodPost, "/invoices", auth, `{"clientId":"y"}`, middleware.IdempotencyKeyHeader, "k1")
	assert.Equal(t, http.StatusConflict, conflict.Code)

	// another user may use the same key
	other := do(r, http.MethodPost, "/invoices", bearer(t, jwt, uuid.New(), "SELLER"), body, middleware.IdempotencyKeyHeader, "k1")
	assert.Equal(t, http.StatusCreated, other.Code)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))

	// without a key every request runs
	do(r, http.MethodPost, "/invoices", auth, body)
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestIdempotency_FailedResponsesAreNotStored(t *testing.T) {
	db := dbtest.New(t)
	repo := repository.NewIdempotencyRepository(db)
	jwt := newJWT()

	var calls int32
	r := gin.New()
	r.Use(middleware.AuthMiddleware(jwt, nil))
	r.POST("/invoices", middleware.Idempotency(repo), func(c *gin.Context) {
		if atomic.AddInt32(&calls, 1) == 1 {
			c.JSON(http.StatusConflict, gin.H{"error": "out of stock"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"ok": true})
	})

	auth := bearer(t, jwt, uuid.New(), "ADMIN")
	w := do(r, http.MethodPost, "/invoices", auth, "{}", middleware.IdempotencyKeyHeader, "retry-me")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(r, http.MethodPost, "/invoices", auth, "{}", middleware.IdempotencyKeyHeader, "retry-me")
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Empty(t, w.Header().Get("X-Idempotency-Replayed"))
}

func TestIdempotency_ConcurrentDuplicatesRunOnce(t *testing.T) {
	db := dbtest.New(t)
	repo := repository.NewIdempotencyRepository(db)
	jwt := newJWT()

	var calls int32
	release := make(chan struct{})
	r := gin.New()
	r.Use(middleware.AuthMiddleware(jwt, nil))
	r.POST("/invoices", middleware.Idempotency(repo), func(c *gin.Context) {
		atomic.AddInt32(&calls, 1)
		<-release
		c.JSON(http.StatusCreated, gin.H{"number": "INV-00001"})
	})

	auth := bearer(t, jwt, uuid.New(), "SELLER")
	const n = 5
	codes := make(chan int, n)
	for i := 0; i < n; i++ {
		go func() {
			codes <- do(r, http.MethodPost, "/invoices", auth, `{"clientId":"x"}`, middleware.IdempotencyKeyHeader, "double-click").Code
		}()
	}

	// the winner is parked in the handler, so every other request must be turned away
	got := map[int]int{}
	for i := 0; i < n-1; i++ {
		select {
		case code := <-codes:
			got[code]++
		case <-time.After(5 * time.Second):
			close(release)
			t.Fatal("duplicate request was not rejected while the first was in flight")
		}
	}
	close(release)
	got[<-codes]++

	assert.Equal(t, map[int]int{http.StatusConflict: n - 1, http.StatusCreated: 1}, got)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))

	replay := do(r, http.MethodPost, "/invoices", auth, `{"clientId":"x"}`, middleware.IdempotencyKeyHeader, "double-click")
	assert.Equal(t, http.StatusCreated, replay.Code)
	assert.Equal(t, "true", replay.Header().Get("X-Idempotency-Replayed"))
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}
