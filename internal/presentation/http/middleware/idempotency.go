package middleware

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/dukapay-api/internal/domain/entity"
	"github.com/sangkips/dukapay-api/internal/domain/repository"
	"github.com/sirupsen/logrus"
)

const idempotencyKeyTTL = 24 * time.Hour

// bodyCaptureWriter captures the response body so a successful response can be
// stored and replayed for retried requests.
type bodyCaptureWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *bodyCaptureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// IdempotencyMiddleware replays the stored response when a request carries an
// Idempotency-Key the server has already answered. Keys are scoped per
// customer; guest requests share the zero-UUID scope.
func IdempotencyMiddleware(repo repository.IdempotencyRepository, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader("Idempotency-Key")
		if key == "" {
			c.Next()
			return
		}

		customerID := uuid.Nil
		if id, exists := c.Get("customer_id"); exists {
			if parsed, ok := id.(uuid.UUID); ok {
				customerID = parsed
			}
		}

		existing, err := repo.GetByKey(c.Request.Context(), key, customerID)
		if err != nil {
			log.WithError(err).Error("Failed to look up idempotency key")
			c.Next()
			return
		}

		if existing != nil && !existing.IsExpired() {
			c.Header("X-Idempotency-Replayed", "true")
			c.Data(existing.ResponseCode, "application/json", []byte(existing.ResponseBody))
			c.Abort()
			return
		}

		writer := &bodyCaptureWriter{
			ResponseWriter: c.Writer,
			body:           &bytes.Buffer{},
		}
		c.Writer = writer

		c.Next()

		// Only successful responses are worth replaying; a failed attempt
		// should be retryable with the same key.
		status := c.Writer.Status()
		if status < http.StatusOK || status >= http.StatusMultipleChoices {
			return
		}

		record := &entity.IdempotencyKey{
			Key:          key,
			CustomerID:   customerID,
			Endpoint:     c.FullPath(),
			ResponseCode: status,
			ResponseBody: writer.body.String(),
			ExpiresAt:    time.Now().Add(idempotencyKeyTTL),
		}

		if err := repo.Create(c.Request.Context(), record); err != nil {
			log.WithError(err).WithField("key", key).Error("Failed to store idempotency key")
		}
	}
}
