package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/dukapay-api/pkg/mpesa"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubReconciler struct {
	err      error
	received *mpesa.CallbackEnvelope
	calls    int
}

func (s *stubReconciler) Reconcile(ctx context.Context, env *mpesa.CallbackEnvelope) error {
	s.calls++
	s.received = env
	return s.err
}

func newWebhookRouter(reconciler *stubReconciler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	router := gin.New()
	router.POST("/webhooks/mpesa", NewWebhookHandler(reconciler, log).MpesaCallback)
	return router
}

func postCallback(t *testing.T, router *gin.Engine, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/mpesa", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func callbackBody(t *testing.T) []byte {
	t.Helper()
	body, err := json.Marshal(mpesa.CallbackEnvelope{
		Body: mpesa.CallbackBody{
			STKCallback: &mpesa.STKCallback{
				MerchantRequestID: "mr-123",
				CheckoutRequestID: "cr-456",
				ResultCode:        0,
				ResultDesc:        "The service request is processed successfully.",
			},
		},
	})
	require.NoError(t, err)
	return body
}

func TestWebhookHandler_AcknowledgesCallback(t *testing.T) {
	reconciler := &stubReconciler{}
	router := newWebhookRouter(reconciler)

	w := postCallback(t, router, callbackBody(t))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, reconciler.calls)
	require.NotNil(t, reconciler.received)
	assert.Equal(t, "mr-123", reconciler.received.Body.STKCallback.MerchantRequestID)

	var ack map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ack))
	assert.Equal(t, float64(0), ack["ResultCode"])
	assert.Equal(t, "Accepted", ack["ResultDesc"])
}

func TestWebhookHandler_AcknowledgesUnparseableBody(t *testing.T) {
	reconciler := &stubReconciler{}
	router := newWebhookRouter(reconciler)

	// A body that will never parse must be acked, not retried forever.
	w := postCallback(t, router, []byte(`{not json`))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, reconciler.calls)

	var ack map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ack))
	assert.Equal(t, float64(0), ack["ResultCode"])
}

func TestWebhookHandler_StoreFailureTriggersRetry(t *testing.T) {
	reconciler := &stubReconciler{err: errors.New("connection reset")}
	router := newWebhookRouter(reconciler)

	w := postCallback(t, router, callbackBody(t))

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, float64(1), body["ResultCode"])
}
