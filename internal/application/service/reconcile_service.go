package service

import (
	"context"

	"github.com/sangkips/dukapay-api/internal/domain/entity"
	"github.com/sangkips/dukapay-api/internal/domain/enum"
	"github.com/sangkips/dukapay-api/internal/domain/repository"
	"github.com/sangkips/dukapay-api/pkg/mpesa"
	"github.com/sirupsen/logrus"
)

// Metadata item names in a successful callback.
const (
	metaReceiptNumber   = "MpesaReceiptNumber"
	metaTransactionDate = "TransactionDate"
	metaPhoneNumber     = "PhoneNumber"
)

// OrderHook is an explicit post-commit side effect invoked after an order is
// settled as paid. Hooks run in registration order; a hook failure is logged
// but never rolls back the settlement.
type OrderHook func(ctx context.Context, order *entity.Order)

// ReconcileService applies asynchronous gateway callbacks to the local order
// and payment ledger exactly once.
//
// Errors are asymmetric by design: malformed payloads, unmatched correlation
// ids and duplicate callbacks are absorbed (logged, nil returned) so the
// handler can always acknowledge the gateway. Only local store failures are
// returned, because the gateway's retry is the sole recovery path for those.
type ReconcileService struct {
	orderRepo   repository.OrderRepository
	paymentRepo repository.PaymentRepository
	hooks       []OrderHook
	log         *logrus.Logger
}

// NewReconcileService creates a new reconciliation service
func NewReconcileService(
	orderRepo repository.OrderRepository,
	paymentRepo repository.PaymentRepository,
	log *logrus.Logger,
	hooks ...OrderHook,
) *ReconcileService {
	return &ReconcileService{
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
		hooks:       hooks,
		log:         log,
	}
}

// Reconcile correlates a callback to its pending order and transitions the
// order plus ledger. The order is updated first: it carries the canonical
// status surfaced to the customer, and a lost ledger entry can be rebuilt
// from the order and the callback log, but not the other way around.
func (s *ReconcileService) Reconcile(ctx context.Context, env *mpesa.CallbackEnvelope) error {
	cb := env.Callback()
	if cb == nil || cb.MerchantRequestID == "" {
		s.log.Warn("Discarding malformed M-Pesa callback: missing stkCallback envelope")
		return nil
	}

	logger := s.log.WithFields(logrus.Fields{
		"merchant_request_id": cb.MerchantRequestID,
		"result_code":         cb.ResultCode,
	})

	order, err := s.orderRepo.GetByMerchantRequestID(ctx, cb.MerchantRequestID)
	if err != nil {
		return err
	}
	if order == nil {
		// Stale or duplicate callback for an order we no longer know, or the
		// initiator's correlation write has not landed yet. The gateway
		// retries unacknowledged callbacks, so there is nothing to do here.
		logger.Warn("No order found for M-Pesa callback")
		return nil
	}

	if order.PaymentStatus != enum.PaymentStatusPending {
		if order.PaymentStatus == enum.PaymentStatusPaid && !cb.Succeeded() {
			// Paid is permanently terminal; a late failure callback must not
			// overwrite it, but the conflict is worth flagging for audit.
			logger.WithField("order_id", order.ID).Warn("Conflicting failure callback for already-paid order, ignoring")
			return nil
		}
		logger.WithFields(logrus.Fields{
			"order_id": order.ID,
			"status":   order.PaymentStatus.String(),
		}).Info("Duplicate callback for settled order, ignoring")
		return nil
	}

	if cb.Succeeded() {
		return s.settlePaid(ctx, order, cb, logger)
	}
	return s.settleFailed(ctx, order, cb, logger)
}

func (s *ReconcileService) settlePaid(ctx context.Context, order *entity.Order, cb *mpesa.STKCallback, logger *logrus.Entry) error {
	meta := cb.Metadata()
	receipt := entity.MpesaReceipt{
		ReceiptNumber:   meta[metaReceiptNumber],
		TransactionDate: meta[metaTransactionDate],
		PhoneNumber:     meta[metaPhoneNumber],
	}

	settled, err := s.orderRepo.MarkPaid(ctx, order.ID, receipt)
	if err != nil {
		return err
	}
	if !settled {
		// A concurrent reconciliation won the conditional write.
		logger.WithField("order_id", order.ID).Info("Order settled by concurrent callback, ignoring")
		return nil
	}

	payment := &entity.Payment{
		OrderID:              order.ID,
		Method:               enum.PaymentMethodMobileMoney,
		Amount:               order.Total,
		Status:               enum.PaymentStatusPaid,
		MpesaReceiptNumber:   &receipt.ReceiptNumber,
		MpesaTransactionDate: &receipt.TransactionDate,
		MpesaPhoneNumber:     &receipt.PhoneNumber,
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"order_id": order.ID,
		"receipt":  receipt.ReceiptNumber,
	}).Info("M-Pesa payment reconciled")

	order.PaymentStatus = enum.PaymentStatusPaid
	s.runHooks(ctx, order)
	return nil
}

func (s *ReconcileService) settleFailed(ctx context.Context, order *entity.Order, cb *mpesa.STKCallback, logger *logrus.Entry) error {
	settled, err := s.orderRepo.MarkFailed(ctx, order.ID, cb.ResultDesc)
	if err != nil {
		return err
	}
	if !settled {
		logger.WithField("order_id", order.ID).Info("Order settled by concurrent callback, ignoring")
		return nil
	}

	payment := &entity.Payment{
		OrderID: order.ID,
		Method:  enum.PaymentMethodMobileMoney,
		Amount:  order.Total,
		Status:  enum.PaymentStatusFailed,
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"order_id":    order.ID,
		"result_desc": cb.ResultDesc,
	}).Info("M-Pesa payment failed")
	return nil
}

func (s *ReconcileService) runHooks(ctx context.Context, order *entity.Order) {
	for _, hook := range s.hooks {
		hook(ctx, order)
	}
}

// PurchaseHistoryHook returns a post-commit hook that records a settled
// payment on the ordering customer's purchase history. Guest orders are
// skipped.
func PurchaseHistoryHook(customerRepo repository.CustomerRepository, log *logrus.Logger) OrderHook {
	return func(ctx context.Context, order *entity.Order) {
		if order.OrderedByID == nil {
			return
		}
		if err := customerRepo.RecordPurchase(ctx, *order.OrderedByID, order.Total); err != nil {
			log.WithFields(logrus.Fields{
				"order_id":    order.ID,
				"customer_id": *order.OrderedByID,
				"error":       err,
			}).Error("Failed to update customer purchase history")
		}
	}
}
