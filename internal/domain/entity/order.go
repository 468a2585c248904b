package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/dukapay-api/internal/domain/enum"
	"gorm.io/gorm"
)

// Order represents a customer order. Total and Items are frozen at creation
// time; the payment fields are the only part that changes afterwards, and only
// through the initiation/reconciliation flow.
type Order struct {
	ID            uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	OrderedByID   *uuid.UUID         `gorm:"type:uuid;index" json:"ordered_by,omitempty"` // nil for guest checkout
	Total         int64              `gorm:"not null" json:"-"`                           // Stored in cents, excluded from JSON
	PaymentMethod enum.PaymentMethod `gorm:"default:0" json:"payment_method"`
	PaymentStatus enum.PaymentStatus `gorm:"default:0;index" json:"payment_status"`

	// Gateway correlation pair, set once after a successful STK push and
	// immutable thereafter. The callback is matched on MerchantRequestID.
	MerchantRequestID *string `gorm:"size:100;index" json:"merchant_request_id,omitempty"`
	CheckoutRequestID *string `gorm:"size:100" json:"checkout_request_id,omitempty"`

	// Receipt fields, set exactly once when the callback reports success.
	MpesaReceiptNumber   *string `gorm:"size:100" json:"mpesa_receipt_number,omitempty"`
	MpesaTransactionDate *string `gorm:"size:20" json:"mpesa_transaction_date,omitempty"`
	MpesaPhoneNumber     *string `gorm:"size:20" json:"mpesa_phone_number,omitempty"`

	FailureReason *string `gorm:"type:text" json:"failure_reason,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	OrderedBy *Customer   `gorm:"foreignKey:OrderedByID" json:"-"`
	Items     []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

// MpesaReceipt is the metadata reported by a successful gateway callback.
type MpesaReceipt struct {
	ReceiptNumber   string `json:"receipt_number"`
	TransactionDate string `json:"transaction_date"`
	PhoneNumber     string `json:"phone_number"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (o Order) MarshalJSON() ([]byte, error) {
	type Alias Order
	return json.Marshal(&struct {
		Alias
		Total float64 `json:"total"`
	}{
		Alias: Alias(o),
		Total: float64(o.Total) / 100,
	})
}

// BeforeCreate generates a UUID before creating a new order
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// GetTotalDecimal returns the total as a decimal
func (o *Order) GetTotalDecimal() float64 {
	return float64(o.Total) / 100
}

// Receipt returns the M-Pesa receipt if the order carries one.
func (o *Order) Receipt() *MpesaReceipt {
	if o.MpesaReceiptNumber == nil {
		return nil
	}
	r := &MpesaReceipt{ReceiptNumber: *o.MpesaReceiptNumber}
	if o.MpesaTransactionDate != nil {
		r.TransactionDate = *o.MpesaTransactionDate
	}
	if o.MpesaPhoneNumber != nil {
		r.PhoneNumber = *o.MpesaPhoneNumber
	}
	return r
}

// OrderItem represents a line item in an order
type OrderItem struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	OrderID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID uuid.UUID      `gorm:"type:uuid;not null;index" json:"product_id"`
	Quantity  int            `gorm:"not null" json:"quantity"`
	UnitPrice int64          `gorm:"not null" json:"-"` // Stored in cents, excluded from JSON
	Total     int64          `gorm:"not null" json:"-"` // Stored in cents, excluded from JSON
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Order   Order   `gorm:"foreignKey:OrderID" json:"-"`
	Product Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (oi OrderItem) MarshalJSON() ([]byte, error) {
	type Alias OrderItem
	return json.Marshal(&struct {
		Alias
		UnitPrice float64 `json:"unit_price"`
		Total     float64 `json:"total"`
	}{
		Alias:     Alias(oi),
		UnitPrice: float64(oi.UnitPrice) / 100,
		Total:     float64(oi.Total) / 100,
	})
}

// BeforeCreate generates a UUID before creating a new order item
func (oi *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if oi.ID == uuid.Nil {
		oi.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the OrderItem model
func (OrderItem) TableName() string {
	return "order_items"
}
