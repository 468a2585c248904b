package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/dukapay-api/internal/domain/enum"
	"gorm.io/gorm"
)

// Payment is an append-only ledger entry recording the outcome of one payment
// attempt. It is kept separate from the order so that attempt history survives
// retries; entries are never updated or deleted by the payment flow.
type Payment struct {
	ID      uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	OrderID uuid.UUID          `gorm:"type:uuid;not null;index" json:"order_id"`
	Method  enum.PaymentMethod `gorm:"default:0" json:"method"`
	Amount  int64              `gorm:"not null" json:"-"` // Stored in cents, excluded from JSON
	Status  enum.PaymentStatus `gorm:"default:0" json:"status"`

	// M-Pesa specific fields, present on successful mobile-money entries only.
	MpesaReceiptNumber   *string `gorm:"size:100" json:"mpesa_receipt_number,omitempty"`
	MpesaTransactionDate *string `gorm:"size:20" json:"mpesa_transaction_date,omitempty"`
	MpesaPhoneNumber     *string `gorm:"size:20" json:"mpesa_phone_number,omitempty"`

	CreatedAt time.Time `json:"created_at"`

	// Relationships
	Order Order `gorm:"foreignKey:OrderID" json:"-"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (p Payment) MarshalJSON() ([]byte, error) {
	type Alias Payment
	return json.Marshal(&struct {
		Alias
		Amount float64 `json:"amount"`
	}{
		Alias:  Alias(p),
		Amount: float64(p.Amount) / 100,
	})
}

// BeforeCreate generates a UUID before creating a new payment
func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Payment model
func (Payment) TableName() string {
	return "payments"
}
