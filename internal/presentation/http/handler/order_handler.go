package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/dukapay-api/internal/application/service"
	"github.com/sangkips/dukapay-api/internal/domain/enum"
	"github.com/sangkips/dukapay-api/internal/domain/repository"
	"github.com/sangkips/dukapay-api/internal/presentation/http/dto/response"
	"github.com/sangkips/dukapay-api/pkg/apperror"
	"github.com/sangkips/dukapay-api/pkg/pagination"
)

// OrderHandler exposes read access to a customer's orders
type OrderHandler struct {
	orderService *service.OrderService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService *service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// List handles GET /orders
func (h *OrderHandler) List(c *gin.Context) {
	customerID := GetCustomerID(c)
	if customerID == nil {
		response.Unauthorized(c, "Authentication required")
		return
	}

	var paginationParams pagination.PaginationParams
	if err := c.ShouldBindQuery(&paginationParams); err != nil {
		response.BadRequest(c, "Invalid pagination parameters")
		return
	}
	paginationParams.Validate()

	params := &repository.OrderFilterParams{Pagination: &paginationParams}

	if raw := c.Query("status"); raw != "" {
		status, ok := enum.ParsePaymentStatus(raw)
		if !ok {
			response.BadRequest(c, "Invalid status filter")
			return
		}
		params.Status = &status
	}

	if raw := c.Query("method"); raw != "" {
		method, ok := enum.ParsePaymentMethod(raw)
		if !ok {
			response.BadRequest(c, "Invalid method filter")
			return
		}
		params.Method = &method
	}

	result, err := h.orderService.ListOrders(c.Request.Context(), *customerID, params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Orders retrieved successfully", result)
}

// Get handles GET /orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	customerID := GetCustomerID(c)
	if customerID == nil {
		response.Unauthorized(c, "Authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid order ID")
		return
	}

	order, err := h.orderService.GetOrder(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	// Orders are private to the customer who placed them.
	if order.OrderedByID == nil || *order.OrderedByID != *customerID {
		response.Error(c, apperror.ErrOrderNotFound)
		return
	}

	response.OK(c, "Order retrieved successfully", order)
}

// ListPayments handles GET /orders/:id/payments
func (h *OrderHandler) ListPayments(c *gin.Context) {
	customerID := GetCustomerID(c)
	if customerID == nil {
		response.Unauthorized(c, "Authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid order ID")
		return
	}

	order, err := h.orderService.GetOrder(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	if order.OrderedByID == nil || *order.OrderedByID != *customerID {
		response.Error(c, apperror.ErrOrderNotFound)
		return
	}

	payments, err := h.orderService.ListPayments(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Payments retrieved successfully", payments)
}
