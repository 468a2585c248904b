package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/dukapay-api/internal/domain/entity"
	"github.com/sangkips/dukapay-api/internal/domain/repository"
	"github.com/sangkips/dukapay-api/pkg/apperror"
	"github.com/sangkips/dukapay-api/pkg/pagination"
)

// OrderService exposes read access to orders and their payment history.
// Orders are never mutated here; all writes go through the checkout and
// reconciliation flows.
type OrderService struct {
	orderRepo   repository.OrderRepository
	paymentRepo repository.PaymentRepository
}

// NewOrderService creates a new order service
func NewOrderService(orderRepo repository.OrderRepository, paymentRepo repository.PaymentRepository) *OrderService {
	return &OrderService{orderRepo: orderRepo, paymentRepo: paymentRepo}
}

// GetOrder retrieves an order with its items
func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	order, err := s.orderRepo.GetWithItems(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperror.ErrOrderNotFound
	}
	return order, nil
}

// ListOrders lists a customer's orders with filtering
func (s *OrderService) ListOrders(ctx context.Context, customerID uuid.UUID, params *repository.OrderFilterParams) (*pagination.PaginatedResult[entity.Order], error) {
	orders, total, err := s.orderRepo.List(ctx, customerID, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(orders, pag), nil
}

// ListPayments returns the payment ledger entries for an order
func (s *OrderService) ListPayments(ctx context.Context, orderID uuid.UUID) ([]entity.Payment, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperror.ErrOrderNotFound
	}
	return s.paymentRepo.ListByOrderID(ctx, orderID)
}
