package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/dukapay-api/internal/domain/entity"
	"github.com/sangkips/dukapay-api/internal/domain/enum"
	"github.com/sangkips/dukapay-api/internal/domain/repository"
	"github.com/sangkips/dukapay-api/pkg/mpesa"
	"github.com/sangkips/dukapay-api/pkg/pagination"
	"github.com/sirupsen/logrus"
)

// testLogger returns a logger that discards output during tests
func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

// mockProductRepository is an in-memory ProductRepository for tests
type mockProductRepository struct {
	products  map[uuid.UUID]*entity.Product
	getErr    error
	createErr error
}

func newMockProductRepository() *mockProductRepository {
	return &mockProductRepository{products: make(map[uuid.UUID]*entity.Product)}
}

func (m *mockProductRepository) add(p *entity.Product) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	m.products[p.ID] = p
}

func (m *mockProductRepository) Create(ctx context.Context, product *entity.Product) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.add(product)
	return nil
}

func (m *mockProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.products[id], nil
}

func (m *mockProductRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Product, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	out := make([]entity.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := m.products[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *mockProductRepository) GetBySlug(ctx context.Context, slug string) (*entity.Product, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, p := range m.products {
		if p.Slug == slug {
			return p, nil
		}
	}
	return nil, nil
}

func (m *mockProductRepository) Update(ctx context.Context, product *entity.Product) error {
	m.products[product.ID] = product
	return nil
}

func (m *mockProductRepository) List(ctx context.Context, params *pagination.PaginationParams, search string) ([]entity.Product, int64, error) {
	out := make([]entity.Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

// mockOrderRepository is an in-memory OrderRepository with the same
// conditional-write semantics as the real implementation.
type mockOrderRepository struct {
	orders         map[uuid.UUID]*entity.Order
	byMerchantReq  map[string]uuid.UUID
	createErr      error
	correlationErr error
	markPaidErr    error
	markFailedErr  error
	lookupErr      error
	createCalls    int
}

func newMockOrderRepository() *mockOrderRepository {
	return &mockOrderRepository{
		orders:        make(map[uuid.UUID]*entity.Order),
		byMerchantReq: make(map[string]uuid.UUID),
	}
}

func (m *mockOrderRepository) Create(ctx context.Context, order *entity.Order) error {
	m.createCalls++
	if m.createErr != nil {
		return m.createErr
	}
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	m.orders[order.ID] = order
	return nil
}

func (m *mockOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	if m.lookupErr != nil {
		return nil, m.lookupErr
	}
	return m.orders[id], nil
}

func (m *mockOrderRepository) GetWithItems(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	return m.GetByID(ctx, id)
}

func (m *mockOrderRepository) GetByMerchantRequestID(ctx context.Context, merchantRequestID string) (*entity.Order, error) {
	if m.lookupErr != nil {
		return nil, m.lookupErr
	}
	id, ok := m.byMerchantReq[merchantRequestID]
	if !ok {
		return nil, nil
	}
	return m.orders[id], nil
}

func (m *mockOrderRepository) SetGatewayCorrelation(ctx context.Context, id uuid.UUID, merchantRequestID, checkoutRequestID string) error {
	if m.correlationErr != nil {
		return m.correlationErr
	}
	order := m.orders[id]
	order.MerchantRequestID = &merchantRequestID
	order.CheckoutRequestID = &checkoutRequestID
	m.byMerchantReq[merchantRequestID] = id
	return nil
}

func (m *mockOrderRepository) MarkPaid(ctx context.Context, id uuid.UUID, receipt entity.MpesaReceipt) (bool, error) {
	if m.markPaidErr != nil {
		return false, m.markPaidErr
	}
	order, ok := m.orders[id]
	if !ok || order.PaymentStatus != enum.PaymentStatusPending {
		return false, nil
	}
	order.PaymentStatus = enum.PaymentStatusPaid
	order.MpesaReceiptNumber = &receipt.ReceiptNumber
	order.MpesaTransactionDate = &receipt.TransactionDate
	order.MpesaPhoneNumber = &receipt.PhoneNumber
	return true, nil
}

func (m *mockOrderRepository) MarkFailed(ctx context.Context, id uuid.UUID, reason string) (bool, error) {
	if m.markFailedErr != nil {
		return false, m.markFailedErr
	}
	order, ok := m.orders[id]
	if !ok || order.PaymentStatus != enum.PaymentStatusPending {
		return false, nil
	}
	order.PaymentStatus = enum.PaymentStatusFailed
	order.FailureReason = &reason
	return true, nil
}

func (m *mockOrderRepository) List(ctx context.Context, customerID uuid.UUID, params *repository.OrderFilterParams) ([]entity.Order, int64, error) {
	out := make([]entity.Order, 0)
	for _, o := range m.orders {
		if o.OrderedByID != nil && *o.OrderedByID == customerID {
			out = append(out, *o)
		}
	}
	return out, int64(len(out)), nil
}

// mockPaymentRepository records ledger entries in memory
type mockPaymentRepository struct {
	payments  []entity.Payment
	createErr error
}

func (m *mockPaymentRepository) Create(ctx context.Context, payment *entity.Payment) error {
	if m.createErr != nil {
		return m.createErr
	}
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	m.payments = append(m.payments, *payment)
	return nil
}

func (m *mockPaymentRepository) ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]entity.Payment, error) {
	out := make([]entity.Payment, 0)
	for _, p := range m.payments {
		if p.OrderID == orderID {
			out = append(out, p)
		}
	}
	return out, nil
}

// mockCustomerRepository tracks RecordPurchase calls
type mockCustomerRepository struct {
	customers map[uuid.UUID]*entity.Customer
	purchases []recordedPurchase
	recordErr error
}

type recordedPurchase struct {
	customerID uuid.UUID
	amount     int64
}

func newMockCustomerRepository() *mockCustomerRepository {
	return &mockCustomerRepository{customers: make(map[uuid.UUID]*entity.Customer)}
}

func (m *mockCustomerRepository) Create(ctx context.Context, customer *entity.Customer) error {
	if customer.ID == uuid.Nil {
		customer.ID = uuid.New()
	}
	m.customers[customer.ID] = customer
	return nil
}

func (m *mockCustomerRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Customer, error) {
	return m.customers[id], nil
}

func (m *mockCustomerRepository) RecordPurchase(ctx context.Context, id uuid.UUID, amount int64) error {
	if m.recordErr != nil {
		return m.recordErr
	}
	m.purchases = append(m.purchases, recordedPurchase{customerID: id, amount: amount})
	return nil
}

// mockGateway is a scripted PaymentGateway
type mockGateway struct {
	resp     *mpesa.STKPushResponse
	err      error
	requests []mpesa.STKPushRequest
}

func (m *mockGateway) STKPush(ctx context.Context, push mpesa.STKPushRequest) (*mpesa.STKPushResponse, error) {
	m.requests = append(m.requests, push)
	if m.err != nil {
		return nil, m.err
	}
	return m.resp, nil
}
