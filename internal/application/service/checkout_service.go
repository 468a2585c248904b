package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sangkips/dukapay-api/internal/domain/entity"
	"github.com/sangkips/dukapay-api/internal/domain/enum"
	"github.com/sangkips/dukapay-api/internal/domain/repository"
	"github.com/sangkips/dukapay-api/pkg/apperror"
	"github.com/sangkips/dukapay-api/pkg/mpesa"
	"github.com/sirupsen/logrus"
)

// PaymentGateway is the outbound dependency of checkout: it submits a push
// payment and returns the gateway-assigned correlation pair. It performs no
// persistence.
type PaymentGateway interface {
	STKPush(ctx context.Context, push mpesa.STKPushRequest) (*mpesa.STKPushResponse, error)
}

// InitiateCheckoutInput is the input to CheckoutService.Initiate.
type InitiateCheckoutInput struct {
	CustomerID *uuid.UUID // nil for guest checkout
	Phone      string
	Lines      []CartLine
}

// CheckoutResult identifies the created order and the gateway request the
// caller can correlate the eventual callback against.
type CheckoutResult struct {
	OrderID           uuid.UUID `json:"order_id"`
	MerchantRequestID string    `json:"request_id"`
}

// CheckoutService orchestrates mobile-money payment initiation: resolve
// pricing, create a pending order, push the payment, and persist the outcome
// on that same order. Exactly one order is created per call, even when the
// downstream push fails.
type CheckoutService struct {
	pricing   *PricingResolver
	orderRepo repository.OrderRepository
	gateway   PaymentGateway
	log       *logrus.Logger
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(
	pricing *PricingResolver,
	orderRepo repository.OrderRepository,
	gateway PaymentGateway,
	log *logrus.Logger,
) *CheckoutService {
	return &CheckoutService{
		pricing:   pricing,
		orderRepo: orderRepo,
		gateway:   gateway,
		log:       log,
	}
}

// Initiate runs the payment-initiation flow. The pending order is persisted
// before the gateway call so a crash after the push still leaves a traceable,
// reconcilable record: the gateway must never accept a payment for which no
// local order exists.
func (s *CheckoutService) Initiate(ctx context.Context, input *InitiateCheckoutInput) (*CheckoutResult, error) {
	if input.Phone == "" {
		return nil, apperror.ErrPhoneRequired
	}

	cart, err := s.pricing.Resolve(ctx, input.Lines)
	if err != nil {
		return nil, err
	}

	order := &entity.Order{
		OrderedByID:   input.CustomerID,
		Total:         cart.Total,
		PaymentMethod: enum.PaymentMethodMobileMoney,
		PaymentStatus: enum.PaymentStatusPending,
		Items:         cart.Items,
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}

	resp, err := s.gateway.STKPush(ctx, mpesa.STKPushRequest{
		Phone:            input.Phone,
		Amount:           cart.Total,
		AccountReference: fmt.Sprintf("Order #%s", order.ID),
		Description:      "Payment for online purchase",
	})
	if err != nil {
		// The order already exists; record the failure on it rather than
		// dropping it, so the rejection stays visible in the order record.
		if _, markErr := s.orderRepo.MarkFailed(ctx, order.ID, err.Error()); markErr != nil {
			s.log.WithFields(logrus.Fields{
				"order_id": order.ID,
				"error":    markErr,
			}).Error("Failed to mark order as failed after push rejection")
		}
		s.log.WithFields(logrus.Fields{
			"order_id": order.ID,
			"error":    err,
		}).Warn("STK push rejected")
		return nil, apperror.NewGatewayError("Failed to initiate M-Pesa payment: " + err.Error())
	}

	if err := s.orderRepo.SetGatewayCorrelation(ctx, order.ID, resp.MerchantRequestID, resp.CheckoutRequestID); err != nil {
		// The push went out but the correlation did not land; the callback
		// will not match this order. Surface the error so the caller knows
		// the initiation is in doubt.
		s.log.WithFields(logrus.Fields{
			"order_id":            order.ID,
			"merchant_request_id": resp.MerchantRequestID,
			"error":               err,
		}).Error("Failed to persist gateway correlation")
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"order_id":            order.ID,
		"merchant_request_id": resp.MerchantRequestID,
		"total":               cart.Total,
	}).Info("M-Pesa payment initiated")

	return &CheckoutResult{
		OrderID:           order.ID,
		MerchantRequestID: resp.MerchantRequestID,
	}, nil
}
