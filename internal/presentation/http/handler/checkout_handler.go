package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/dukapay-api/internal/application/service"
	"github.com/sangkips/dukapay-api/internal/presentation/http/dto/request"
	"github.com/sangkips/dukapay-api/internal/presentation/http/dto/response"
	"github.com/sangkips/dukapay-api/pkg/apperror"
)

// CheckoutHandler handles payment-initiation requests
type CheckoutHandler struct {
	checkoutService *service.CheckoutService
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(checkoutService *service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkoutService: checkoutService}
}

// MobileMoney handles POST /checkout/mobile-money
func (h *CheckoutHandler) MobileMoney(c *gin.Context) {
	var req request.MobileMoneyCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.NewValidationError("Invalid request body", err.Error()))
		return
	}

	lines := make([]service.CartLine, 0, len(req.Items))
	for _, item := range req.Items {
		lines = append(lines, service.CartLine{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	result, err := h.checkoutService.Initiate(c.Request.Context(), &service.InitiateCheckoutInput{
		CustomerID: GetCustomerID(c),
		Phone:      req.Phone,
		Lines:      lines,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Payment initiated. Complete the prompt on your phone.", result)
}
