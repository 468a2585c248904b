package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/dukapay-api/internal/domain/entity"
	"github.com/sangkips/dukapay-api/internal/domain/enum"
	"github.com/sangkips/dukapay-api/pkg/pagination"
)

// OrderRepository defines the interface for order data operations.
//
// The payment state machine is enforced here: MarkPaid and MarkFailed are
// conditional writes guarded by "current status is pending", so concurrent
// callbacks for the same order settle it exactly once. The loser of the race
// observes settled=false and must treat the callback as a duplicate.
type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Order, error)
	GetWithItems(ctx context.Context, id uuid.UUID) (*entity.Order, error)
	// GetByMerchantRequestID finds the order correlated with a gateway
	// callback. Returns (nil, nil) when no order matches.
	GetByMerchantRequestID(ctx context.Context, merchantRequestID string) (*entity.Order, error)
	// SetGatewayCorrelation persists the correlation pair returned by the
	// gateway at push time. Only the initiator calls this, once per order.
	SetGatewayCorrelation(ctx context.Context, id uuid.UUID, merchantRequestID, checkoutRequestID string) error
	// MarkPaid transitions a pending order to paid and attaches the receipt.
	// Returns settled=false without error if the order was no longer pending.
	MarkPaid(ctx context.Context, id uuid.UUID, receipt entity.MpesaReceipt) (settled bool, err error)
	// MarkFailed transitions a pending order to failed with a reason.
	// Returns settled=false without error if the order was no longer pending.
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) (settled bool, err error)
	List(ctx context.Context, customerID uuid.UUID, params *OrderFilterParams) ([]entity.Order, int64, error)
}

// OrderFilterParams contains filtering parameters for order queries
type OrderFilterParams struct {
	Pagination *pagination.PaginationParams
	Status     *enum.PaymentStatus
	Method     *enum.PaymentMethod
}
