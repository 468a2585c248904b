package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/dukapay-api/pkg/mpesa"
	"github.com/sirupsen/logrus"
)

// Reconciler applies a gateway callback to the local order and ledger.
type Reconciler interface {
	Reconcile(ctx context.Context, env *mpesa.CallbackEnvelope) error
}

// WebhookHandler receives asynchronous payment callbacks from the M-Pesa
// gateway. The gateway only understands the ack contract: anything other than
// a 200 with ResultCode 0 makes it retry, so validation problems are absorbed
// here and only store failures surface as errors.
type WebhookHandler struct {
	reconciler Reconciler
	log        *logrus.Logger
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(reconciler Reconciler, log *logrus.Logger) *WebhookHandler {
	return &WebhookHandler{reconciler: reconciler, log: log}
}

// MpesaCallback handles POST /webhooks/mpesa
func (h *WebhookHandler) MpesaCallback(c *gin.Context) {
	var env mpesa.CallbackEnvelope
	if err := c.ShouldBindJSON(&env); err != nil {
		// A malformed body will never get better on retry; log and ack so the
		// gateway stops resending it.
		h.log.WithError(err).Warn("Discarding unparseable M-Pesa callback")
		h.ack(c)
		return
	}

	if err := h.reconciler.Reconcile(c.Request.Context(), &env); err != nil {
		// A store failure is the one case worth a retry from the gateway.
		h.log.WithError(err).Error("Failed to reconcile M-Pesa callback")
		c.JSON(http.StatusInternalServerError, gin.H{
			"ResultCode": 1,
			"ResultDesc": "Internal error",
		})
		return
	}

	h.ack(c)
}

func (h *WebhookHandler) ack(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"ResultCode": 0,
		"ResultDesc": "Accepted",
	})
}
