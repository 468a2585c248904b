package request

import "github.com/google/uuid"

// CheckoutItemRequest is one cart line in a checkout request
type CheckoutItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity"`
}

// MobileMoneyCheckoutRequest is the body of POST /checkout/mobile-money
type MobileMoneyCheckoutRequest struct {
	Phone string                `json:"phone" binding:"required"`
	Items []CheckoutItemRequest `json:"items" binding:"required,min=1"`
}
