package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/dukapay-api/internal/domain/entity"
)

// PaymentRepository defines the interface for the payment ledger.
// The ledger is append-only: there is no update or delete operation.
type PaymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error
	ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]entity.Payment, error)
}
