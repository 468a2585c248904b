package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/dukapay-api/internal/domain/entity"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIdempotencyRepository struct {
	records map[string]*entity.IdempotencyKey
}

func newFakeIdempotencyRepository() *fakeIdempotencyRepository {
	return &fakeIdempotencyRepository{records: make(map[string]*entity.IdempotencyKey)}
}

func (f *fakeIdempotencyRepository) GetByKey(ctx context.Context, key string, customerID uuid.UUID) (*entity.IdempotencyKey, error) {
	return f.records[key+customerID.String()], nil
}

func (f *fakeIdempotencyRepository) Create(ctx context.Context, ikey *entity.IdempotencyKey) error {
	f.records[ikey.Key+ikey.CustomerID.String()] = ikey
	return nil
}

func (f *fakeIdempotencyRepository) DeleteExpired(ctx context.Context) error {
	return nil
}

func idempotencyTestRouter(repo *fakeIdempotencyRepository) (*gin.Engine, *int) {
	gin.SetMode(gin.TestMode)
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	calls := 0
	router := gin.New()
	router.POST("/checkout", IdempotencyMiddleware(repo, log), func(c *gin.Context) {
		calls++
		c.JSON(http.StatusOK, gin.H{"order_id": uuid.New().String()})
	})
	return router, &calls
}

func postWithKey(router *gin.Engine, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/checkout", nil)
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestIdempotencyMiddleware_ReplaysStoredResponse(t *testing.T) {
	repo := newFakeIdempotencyRepository()
	router, calls := idempotencyTestRouter(repo)

	first := postWithKey(router, "key-1")
	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, 1, *calls)

	second := postWithKey(router, "key-1")
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, 1, *calls, "handler must not run again for a replayed key")
	assert.Equal(t, "true", second.Header().Get("X-Idempotency-Replayed"))
	assert.Equal(t, first.Body.String(), second.Body.String())
}

func TestIdempotencyMiddleware_DistinctKeysAreIndependent(t *testing.T) {
	repo := newFakeIdempotencyRepository()
	router, calls := idempotencyTestRouter(repo)

	postWithKey(router, "key-1")
	postWithKey(router, "key-2")

	assert.Equal(t, 2, *calls)
}

func TestIdempotencyMiddleware_NoKeyPassesThrough(t *testing.T) {
	repo := newFakeIdempotencyRepository()
	router, calls := idempotencyTestRouter(repo)

	postWithKey(router, "")
	postWithKey(router, "")

	assert.Equal(t, 2, *calls)
	assert.Empty(t, repo.records)
}

func TestIdempotencyMiddleware_ExpiredKeyIsReprocessed(t *testing.T) {
	repo := newFakeIdempotencyRepository()
	repo.records["key-1"+uuid.Nil.String()] = &entity.IdempotencyKey{
		Key:          "key-1",
		CustomerID:   uuid.Nil,
		ResponseCode: http.StatusOK,
		ResponseBody: `{"order_id":"stale"}`,
		ExpiresAt:    time.Now().Add(-time.Hour),
	}

	router, calls := idempotencyTestRouter(repo)

	w := postWithKey(router, "key-1")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, *calls)
	assert.NotContains(t, w.Body.String(), "stale")
}

func TestIdempotencyMiddleware_FailedResponsesAreNotStored(t *testing.T) {
	repo := newFakeIdempotencyRepository()
	gin.SetMode(gin.TestMode)
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	calls := 0
	router := gin.New()
	router.POST("/checkout", IdempotencyMiddleware(repo, log), func(c *gin.Context) {
		calls++
		c.JSON(http.StatusBadGateway, gin.H{"error": "push rejected"})
	})

	postWithKey(router, "key-1")
	postWithKey(router, "key-1")

	assert.Equal(t, 2, calls, "a failed attempt must stay retryable with the same key")
	assert.Empty(t, repo.records)
}
