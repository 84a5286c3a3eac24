package checkout

import (
	"context"

	"github.com/tientrn/laptopstore/domain"
	"github.com/tientrn/laptopstore/internal/cart"
	"github.com/tientrn/laptopstore/internal/guard"
	"github.com/tientrn/laptopstore/internal/orderapi"
	"github.com/tientrn/laptopstore/internal/storage"
)

// MockOrderAPI implements OrderAPI for testing
type MockOrderAPI struct {
	Order    *orderapi.Order
	OrderErr error

	LinesErr     error
	CreatedLines []orderapi.OrderLine

	Payment    *orderapi.Payment
	PaymentErr error

	URL    string
	URLErr error

	CreateOrderCalls int
	CreateLinesCalls int
}

func (m *MockOrderAPI) CreateOrder(_ context.Context, _ orderapi.CreateOrderRequest) (*orderapi.Order, error) {
	m.CreateOrderCalls++
	if m.OrderErr != nil {
		return nil, m.OrderErr
	}
	return m.Order, nil
}

func (m *MockOrderAPI) CreateOrderLines(_ context.Context, lines []orderapi.OrderLine) error {
	m.CreateLinesCalls++
	if m.LinesErr != nil {
		return m.LinesErr
	}
	m.CreatedLines = lines
	return nil
}

func (m *MockOrderAPI) CreatePayment(_ context.Context, _ int64, _ float64, _ int) (*orderapi.Payment, error) {
	if m.PaymentErr != nil {
		return nil, m.PaymentErr
	}
	return m.Payment, nil
}

func (m *MockOrderAPI) PaymentURL(_ context.Context, _ int64, _ string) (string, error) {
	if m.URLErr != nil {
		return "", m.URLErr
	}
	return m.URL, nil
}

type testHarness struct {
	api     *MockOrderAPI
	cart    *cart.Service
	guard   *guard.Guard
	durable *storage.MemoryStore
	orch    *Orchestrator
}

// newTestHarness wires an orchestrator over in-memory stores with a
// fully successful API by default.
func newTestHarness() *testHarness {
	api := &MockOrderAPI{
		Order:   &orderapi.Order{OrderID: 42, TotalPrice: 5000000},
		Payment: &orderapi.Payment{PaymentID: 7},
		URL:     "https://gateway.example/pay/7",
	}
	session := storage.NewMemoryStore()
	durable := storage.NewMemoryStore()
	cartService := cart.NewService(session)
	pendingGuard := guard.NewGuard(durable)

	return &testHarness{
		api:     api,
		cart:    cartService,
		guard:   pendingGuard,
		durable: durable,
		orch:    NewOrchestrator(api, cartService, pendingGuard, durable),
	}
}

func (h *testHarness) addProducts(ctx context.Context, products ...domain.Product) error {
	for _, p := range products {
		if _, err := h.cart.AddToCart(ctx, p); err != nil {
			return err
		}
	}
	return nil
}
