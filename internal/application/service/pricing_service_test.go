package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/dukapay-api/internal/domain/entity"
	"github.com/sangkips/dukapay-api/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string {
	return &s
}

func TestPricingResolver_Resolve(t *testing.T) {
	productRepo := newMockProductRepository()

	shirt := &entity.Product{Name: "Shirt", Slug: "shirt", PriceJSON: strPtr(`{"unit_amount":50000}`)}
	mug := &entity.Product{Name: "Mug", Slug: "mug", PriceJSON: strPtr(`{"unit_amount":25000}`)}
	productRepo.add(shirt)
	productRepo.add(mug)

	resolver := NewPricingResolver(productRepo, testLogger())

	cart, err := resolver.Resolve(context.Background(), []CartLine{
		{ProductID: shirt.ID, Quantity: 1},
		{ProductID: mug.ID, Quantity: 2},
	})

	require.NoError(t, err)
	assert.Len(t, cart.Items, 2)
	assert.Equal(t, int64(100000), cart.Total)
	assert.Equal(t, int64(50000), cart.Items[0].UnitPrice)
	assert.Equal(t, int64(50000), cart.Items[1].Total)
}

func TestPricingResolver_Resolve_DropsNonPositiveQuantities(t *testing.T) {
	productRepo := newMockProductRepository()
	shirt := &entity.Product{Name: "Shirt", Slug: "shirt", PriceJSON: strPtr(`{"unit_amount":50000}`)}
	productRepo.add(shirt)

	resolver := NewPricingResolver(productRepo, testLogger())

	cart, err := resolver.Resolve(context.Background(), []CartLine{
		{ProductID: shirt.ID, Quantity: 1},
		{ProductID: uuid.New(), Quantity: 0},
		{ProductID: uuid.New(), Quantity: -3},
	})

	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)
	assert.Equal(t, int64(50000), cart.Total)
}

func TestPricingResolver_Resolve_EmptyCart(t *testing.T) {
	resolver := NewPricingResolver(newMockProductRepository(), testLogger())

	_, err := resolver.Resolve(context.Background(), []CartLine{})
	assert.ErrorIs(t, err, apperror.ErrEmptyCart)

	_, err = resolver.Resolve(context.Background(), []CartLine{{ProductID: uuid.New(), Quantity: 0}})
	assert.ErrorIs(t, err, apperror.ErrEmptyCart)
}

func TestPricingResolver_Resolve_UnknownProduct(t *testing.T) {
	resolver := NewPricingResolver(newMockProductRepository(), testLogger())

	_, err := resolver.Resolve(context.Background(), []CartLine{
		{ProductID: uuid.New(), Quantity: 1},
	})

	assert.ErrorIs(t, err, apperror.ErrProductNotFound)
}

func TestPricingResolver_Resolve_RepositoryError(t *testing.T) {
	productRepo := newMockProductRepository()
	productRepo.getErr = errors.New("connection refused")

	resolver := NewPricingResolver(productRepo, testLogger())

	_, err := resolver.Resolve(context.Background(), []CartLine{
		{ProductID: uuid.New(), Quantity: 1},
	})
	assert.Error(t, err)
}

func TestPricingResolver_Resolve_FallsBackToSellingPrice(t *testing.T) {
	productRepo := newMockProductRepository()
	product := &entity.Product{Name: "Hat", Slug: "hat", SellingPrice: 30000}
	productRepo.add(product)

	resolver := NewPricingResolver(productRepo, testLogger())

	cart, err := resolver.Resolve(context.Background(), []CartLine{
		{ProductID: product.ID, Quantity: 1},
	})

	require.NoError(t, err)
	assert.Equal(t, int64(30000), cart.Total)
}

func TestPricingResolver_Resolve_MalformedPriceDataPricesAtZero(t *testing.T) {
	productRepo := newMockProductRepository()
	broken := &entity.Product{Name: "Broken", Slug: "broken", PriceJSON: strPtr(`not json`)}
	negative := &entity.Product{Name: "Negative", Slug: "negative", PriceJSON: strPtr(`{"unit_amount":-500}`)}
	productRepo.add(broken)
	productRepo.add(negative)

	resolver := NewPricingResolver(productRepo, testLogger())

	cart, err := resolver.Resolve(context.Background(), []CartLine{
		{ProductID: broken.ID, Quantity: 2},
		{ProductID: negative.ID, Quantity: 1},
	})

	require.NoError(t, err)
	assert.Equal(t, int64(0), cart.Total)
}
