package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/sangkips/dukapay-api/internal/domain/entity"
	"github.com/sangkips/dukapay-api/internal/domain/repository"
	"github.com/sangkips/dukapay-api/pkg/apperror"
	"github.com/sirupsen/logrus"
)

// CartLine is one product reference in a checkout cart.
type CartLine struct {
	ProductID uuid.UUID
	Quantity  int
}

// PricedCart is the output of pricing resolution: order items with
// authoritative unit prices and the cart total, all in cents.
type PricedCart struct {
	Items []entity.OrderItem
	Total int64
}

// PricingResolver resolves cart lines against the product catalog. Lines with
// a non-positive quantity are dropped rather than failing the whole cart; an
// unknown product aborts resolution so no order is ever created for it.
type PricingResolver struct {
	productRepo repository.ProductRepository
	log         *logrus.Logger
}

// NewPricingResolver creates a new pricing resolver
func NewPricingResolver(productRepo repository.ProductRepository, log *logrus.Logger) *PricingResolver {
	return &PricingResolver{productRepo: productRepo, log: log}
}

// Resolve prices the given cart lines. It fails with apperror.ErrEmptyCart if
// no valid lines remain after filtering, and with apperror.ErrProductNotFound
// if any referenced product does not exist.
func (r *PricingResolver) Resolve(ctx context.Context, lines []CartLine) (*PricedCart, error) {
	valid := make([]CartLine, 0, len(lines))
	for _, line := range lines {
		if line.Quantity <= 0 {
			continue
		}
		valid = append(valid, line)
	}

	if len(valid) == 0 {
		return nil, apperror.ErrEmptyCart
	}

	// Batch fetch all products in one query (prevents N+1)
	productIDs := make([]uuid.UUID, len(valid))
	for i, line := range valid {
		productIDs[i] = line.ProductID
	}

	products, err := r.productRepo.GetByIDs(ctx, productIDs)
	if err != nil {
		return nil, err
	}

	productMap := make(map[uuid.UUID]*entity.Product, len(products))
	for i := range products {
		productMap[products[i].ID] = &products[i]
	}

	var total int64
	items := make([]entity.OrderItem, 0, len(valid))
	for _, line := range valid {
		product, exists := productMap[line.ProductID]
		if !exists {
			return nil, fmt.Errorf("%w: %s", apperror.ErrProductNotFound, line.ProductID)
		}

		unitPrice := r.unitPrice(product)
		itemTotal := unitPrice * int64(line.Quantity)
		total += itemTotal

		items = append(items, entity.OrderItem{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: unitPrice,
			Total:     itemTotal,
		})
	}

	return &PricedCart{Items: items, Total: total}, nil
}

// priceData is the billing provider's nested price object stored in PriceJSON.
type priceData struct {
	UnitAmount int64 `json:"unit_amount"`
}

// unitPrice extracts the authoritative unit price in cents from the product's
// vendor price object. Malformed or missing price data prices the line at
// zero with a warning instead of blocking checkout on upstream data issues.
func (r *PricingResolver) unitPrice(product *entity.Product) int64 {
	if product.PriceJSON == nil || *product.PriceJSON == "" {
		if product.SellingPrice > 0 {
			return product.SellingPrice
		}
		r.log.WithField("product_id", product.ID).Warn("Product has no price data, pricing line at zero")
		return 0
	}

	var price priceData
	if err := json.Unmarshal([]byte(*product.PriceJSON), &price); err != nil {
		r.log.WithFields(logrus.Fields{
			"product_id": product.ID,
			"error":      err,
		}).Warn("Failed to parse product price data, pricing line at zero")
		return 0
	}
	if price.UnitAmount < 0 {
		r.log.WithField("product_id", product.ID).Warn("Product price data is negative, pricing line at zero")
		return 0
	}
	return price.UnitAmount
}
