package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/dukapay-api/internal/domain/entity"
	"github.com/sangkips/dukapay-api/internal/domain/enum"
	"github.com/sangkips/dukapay-api/pkg/apperror"
	"github.com/sangkips/dukapay-api/pkg/mpesa"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCheckoutFixture(t *testing.T) (*CheckoutService, *mockOrderRepository, *mockGateway, uuid.UUID) {
	t.Helper()

	productRepo := newMockProductRepository()
	product := &entity.Product{Name: "Shirt", Slug: "shirt", PriceJSON: strPtr(`{"unit_amount":50000}`)}
	productRepo.add(product)

	orderRepo := newMockOrderRepository()
	gateway := &mockGateway{
		resp: &mpesa.STKPushResponse{
			MerchantRequestID: "mr-123",
			CheckoutRequestID: "cr-456",
			ResponseCode:      "0",
		},
	}

	pricing := NewPricingResolver(productRepo, testLogger())
	svc := NewCheckoutService(pricing, orderRepo, gateway, testLogger())
	return svc, orderRepo, gateway, product.ID
}

func TestCheckoutService_Initiate(t *testing.T) {
	svc, orderRepo, gateway, productID := newCheckoutFixture(t)

	result, err := svc.Initiate(context.Background(), &InitiateCheckoutInput{
		Phone: "0712345678",
		Lines: []CartLine{{ProductID: productID, Quantity: 2}},
	})

	require.NoError(t, err)
	assert.Equal(t, "mr-123", result.MerchantRequestID)

	order := orderRepo.orders[result.OrderID]
	require.NotNil(t, order)
	assert.Equal(t, enum.PaymentStatusPending, order.PaymentStatus)
	assert.Equal(t, enum.PaymentMethodMobileMoney, order.PaymentMethod)
	assert.Equal(t, int64(100000), order.Total)
	require.NotNil(t, order.MerchantRequestID)
	assert.Equal(t, "mr-123", *order.MerchantRequestID)
	require.NotNil(t, order.CheckoutRequestID)
	assert.Equal(t, "cr-456", *order.CheckoutRequestID)

	// The push carries the cart total in cents and the raw phone; the
	// gateway client owns normalization and unit conversion.
	require.Len(t, gateway.requests, 1)
	assert.Equal(t, int64(100000), gateway.requests[0].Amount)
	assert.Equal(t, "0712345678", gateway.requests[0].Phone)
}

func TestCheckoutService_Initiate_MissingPhone(t *testing.T) {
	svc, orderRepo, _, productID := newCheckoutFixture(t)

	_, err := svc.Initiate(context.Background(), &InitiateCheckoutInput{
		Phone: "",
		Lines: []CartLine{{ProductID: productID, Quantity: 1}},
	})

	assert.ErrorIs(t, err, apperror.ErrPhoneRequired)
	assert.Zero(t, orderRepo.createCalls, "no order should be created for an invalid request")
}

func TestCheckoutService_Initiate_EmptyCart(t *testing.T) {
	svc, orderRepo, _, _ := newCheckoutFixture(t)

	_, err := svc.Initiate(context.Background(), &InitiateCheckoutInput{
		Phone: "0712345678",
		Lines: []CartLine{},
	})

	assert.ErrorIs(t, err, apperror.ErrEmptyCart)
	assert.Zero(t, orderRepo.createCalls)
}

func TestCheckoutService_Initiate_UnknownProduct(t *testing.T) {
	svc, orderRepo, _, _ := newCheckoutFixture(t)

	_, err := svc.Initiate(context.Background(), &InitiateCheckoutInput{
		Phone: "0712345678",
		Lines: []CartLine{{ProductID: uuid.New(), Quantity: 1}},
	})

	assert.ErrorIs(t, err, apperror.ErrProductNotFound)
	assert.Zero(t, orderRepo.createCalls)
}

func TestCheckoutService_Initiate_PushRejected(t *testing.T) {
	svc, orderRepo, gateway, productID := newCheckoutFixture(t)
	gateway.err = errors.New("invalid credentials")

	_, err := svc.Initiate(context.Background(), &InitiateCheckoutInput{
		Phone: "0712345678",
		Lines: []CartLine{{ProductID: productID, Quantity: 1}},
	})

	require.Error(t, err)
	appErr := apperror.GetAppError(err)
	assert.Equal(t, 502, appErr.Code)

	// Exactly one order exists and it records the rejection.
	assert.Equal(t, 1, orderRepo.createCalls)
	require.Len(t, orderRepo.orders, 1)
	for _, order := range orderRepo.orders {
		assert.Equal(t, enum.PaymentStatusFailed, order.PaymentStatus)
		require.NotNil(t, order.FailureReason)
		assert.Contains(t, *order.FailureReason, "invalid credentials")
	}
}

func TestCheckoutService_Initiate_GuestOrder(t *testing.T) {
	svc, orderRepo, _, productID := newCheckoutFixture(t)

	result, err := svc.Initiate(context.Background(), &InitiateCheckoutInput{
		CustomerID: nil,
		Phone:      "+254712345678",
		Lines:      []CartLine{{ProductID: productID, Quantity: 1}},
	})

	require.NoError(t, err)
	assert.Nil(t, orderRepo.orders[result.OrderID].OrderedByID)
}

func TestCheckoutService_Initiate_CustomerOrder(t *testing.T) {
	svc, orderRepo, _, productID := newCheckoutFixture(t)
	customerID := uuid.New()

	result, err := svc.Initiate(context.Background(), &InitiateCheckoutInput{
		CustomerID: &customerID,
		Phone:      "0712345678",
		Lines:      []CartLine{{ProductID: productID, Quantity: 1}},
	})

	require.NoError(t, err)
	require.NotNil(t, orderRepo.orders[result.OrderID].OrderedByID)
	assert.Equal(t, customerID, *orderRepo.orders[result.OrderID].OrderedByID)
}

func TestCheckoutService_Initiate_CorrelationWriteFails(t *testing.T) {
	svc, orderRepo, _, productID := newCheckoutFixture(t)
	orderRepo.correlationErr = errors.New("write timeout")

	_, err := svc.Initiate(context.Background(), &InitiateCheckoutInput{
		Phone: "0712345678",
		Lines: []CartLine{{ProductID: productID, Quantity: 1}},
	})

	assert.Error(t, err)
	assert.Equal(t, 1, orderRepo.createCalls)
}
