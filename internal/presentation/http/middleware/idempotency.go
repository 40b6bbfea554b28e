package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/beautypos-api/internal/domain/entity"
	"github.com/sangkips/beautypos-api/internal/domain/repository"
	"github.com/sangkips/beautypos-api/internal/presentation/http/dto/response"
	"github.com/sangkips/beautypos-api/pkg/apperror"
)

const (
	// IdempotencyKeyHeader is the HTTP header for idempotency keys
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotencyKeyTTL is how long keys are valid
	IdempotencyKeyTTL = 24 * time.Hour

	idempotencyReplayHeader = "X-Idempotency-Replayed"
	maxIdempotencyKeyLength = 255
)

// responseWriter wraps gin.ResponseWriter to capture the response body
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Idempotency replays the stored response when an authenticated caller repeats a
// request with the same Idempotency-Key. The key is reserved before the handler
// runs, so a duplicate arriving while the first request is in flight gets a 409
// instead of running twice. Only successful responses are kept; after a failure
// the reservation is released and the key can be retried. Reusing a key with a
// different body or endpoint is a conflict.
func Idempotency(repo repository.IdempotencyRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxIdempotencyKeyLength {
			response.BadRequest(c, "Idempotency-Key is too long")
			c.Abort()
			return
		}

		userIDValue, exists := c.Get(UserIDKey)
		if !exists {
			c.Next()
			return
		}
		userID, ok := userIDValue.(uuid.UUID)
		if !ok {
			c.Next()
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			response.BadRequest(c, "Unable to read request body")
			c.Abort()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		sum := sha256.Sum256(body)
		hash := hex.EncodeToString(sum[:])
		endpoint := c.Request.Method + " " + c.FullPath()
		// bookkeeping outlives a client that hangs up mid-request
		ctx := context.WithoutCancel(c.Request.Context())

		existing, err := repo.GetByKey(ctx, key, userID)
		if err != nil {
			log.Printf("Warning: idempotency lookup failed: %v", err)
			c.Next()
			return
		}

		if existing != nil && !existing.IsExpired() {
			if existing.Endpoint != endpoint || existing.RequestHash != hash {
				response.Error(c, apperror.NewConflictError("Idempotency-Key was already used for a different request"))
				c.Abort()
				return
			}
			if existing.IsPending() {
				inProgress(c)
				return
			}
			c.Header(idempotencyReplayHeader, "true")
			c.Data(existing.ResponseCode, "application/json; charset=utf-8", []byte(existing.ResponseBody))
			c.Abort()
			return
		}

		// an expired key with the same value is replaced
		if existing != nil {
			if err := repo.Delete(ctx, existing.ID); err != nil {
				log.Printf("Warning: failed to drop expired idempotency key: %v", err)
			}
		}

		ikey := &entity.IdempotencyKey{
			Key:         key,
			UserID:      userID,
			Endpoint:    endpoint,
			RequestHash: hash,
			ExpiresAt:   time.Now().Add(IdempotencyKeyTTL),
		}
		reserved, err := repo.Reserve(ctx, ikey)
		if err != nil {
			log.Printf("Warning: failed to reserve idempotency key: %v", err)
			c.Next()
			return
		}
		if !reserved {
			inProgress(c)
			return
		}

		blw := &responseWriter{body: &bytes.Buffer{}, ResponseWriter: c.Writer}
		c.Writer = blw

		c.Next()

		status := c.Writer.Status()
		if status < 200 || status >= 300 {
			if err := repo.Delete(ctx, ikey.ID); err != nil {
				log.Printf("Warning: failed to release idempotency key: %v", err)
			}
			return
		}
		if err := repo.Complete(ctx, ikey.ID, status, blw.body.String()); err != nil {
			log.Printf("Warning: failed to store idempotency response: %v", err)
		}
	}
}

func inProgress(c *gin.Context) {
	response.Error(c, apperror.NewConflictError("A request with this Idempotency-Key is still in progress"))
	c.Abort()
}
