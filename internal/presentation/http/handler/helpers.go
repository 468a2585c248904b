package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GetCustomerID extracts the authenticated customer ID from the request
// context. Returns nil for guest requests.
func GetCustomerID(c *gin.Context) *uuid.UUID {
	id, exists := c.Get("customer_id")
	if !exists {
		return nil
	}

	customerID, ok := id.(uuid.UUID)
	if !ok || customerID == uuid.Nil {
		return nil
	}
	return &customerID
}
