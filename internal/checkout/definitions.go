package checkout

import (
	"context"
	"sync"

	"github.com/tientrn/laptopstore/domain"
	"github.com/tientrn/laptopstore/internal/guard"
	"github.com/tientrn/laptopstore/internal/orderapi"
	"github.com/tientrn/laptopstore/internal/storage"
)

// OrderAPI is the slice of the remote order/payment contract the
// orchestrator drives. Defined here, on the consumer side.
type OrderAPI interface {
	CreateOrder(ctx context.Context, req orderapi.CreateOrderRequest) (*orderapi.Order, error)
	CreateOrderLines(ctx context.Context, lines []orderapi.OrderLine) error
	CreatePayment(ctx context.Context, orderID int64, amount float64, paymentMethodID int) (*orderapi.Payment, error)
	PaymentURL(ctx context.Context, paymentID int64, redirectURL string) (string, error)
}

// CartStore is the cart surface the orchestrator needs: reads for
// staging and removals for post-payment reconciliation.
type CartStore interface {
	Current(ctx context.Context) (*domain.Cart, error)
	RemoveFromCart(ctx context.Context, productID string) (*domain.Cart, error)
}

// DefaultPaymentMethodID selects the single enabled gateway.
const DefaultPaymentMethodID = 1

// Orchestrator converts a staged checkout into a paid order through the
// strict sequence order -> order lines -> payment -> payment url, then
// reconciles the cart when the gateway redirects back.
type Orchestrator struct {
	mu              sync.Mutex
	api             OrderAPI
	cart            CartStore
	guard           *guard.Guard
	durable         storage.Store
	status          domain.CheckoutStatus
	paymentMethodID int
}

func NewOrchestrator(api OrderAPI, cart CartStore, g *guard.Guard, durable storage.Store) *Orchestrator {
	return &Orchestrator{
		api:             api,
		cart:            cart,
		guard:           g,
		durable:         durable,
		status:          domain.CheckoutStatusIdle,
		paymentMethodID: DefaultPaymentMethodID,
	}
}

// Status returns the current machine state.
func (o *Orchestrator) Status() domain.CheckoutStatus {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status
}
