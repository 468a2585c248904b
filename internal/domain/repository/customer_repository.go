package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/dukapay-api/internal/domain/entity"
)

// CustomerRepository defines the interface for customer data operations
type CustomerRepository interface {
	Create(ctx context.Context, customer *entity.Customer) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Customer, error)
	// RecordPurchase atomically bumps the customer's purchase history after a
	// settled payment. amount is in cents.
	RecordPurchase(ctx context.Context, id uuid.UUID, amount int64) error
}
