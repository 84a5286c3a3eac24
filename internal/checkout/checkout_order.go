package checkout

import (
	"context"
	"fmt"
	"log"

	"github.com/tientrn/laptopstore/domain"
	"github.com/tientrn/laptopstore/internal/orderapi"
)

// placeholderAddress fills the shipping slot until the shopper confirms
// delivery details after payment.
const placeholderAddress = "pending"

// createOrder either reuses a live pending order whose fingerprint
// matches the staged selection exactly, or creates a fresh one and
// records it so a reload during the gateway window cannot duplicate it.
// A non-nil record means the order was reused; its LinesCreated flag
// tells the next step whether the line batch still has to run.
func (o *Orchestrator) createOrder(ctx context.Context, staged *domain.StagedCheckout, fingerprint string) (int64, *domain.PendingOrderRecord, error) {
	if err := o.transition(domain.CheckoutStatusCreatingOrder); err != nil {
		return 0, nil, err
	}

	record, err := o.guard.MatchPendingOrder(ctx, fingerprint)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrOrderCreation, err)
	}
	if record != nil {
		log.Printf("reusing pending order %d for unchanged cart selection", record.OrderID)
		return record.OrderID, record, nil
	}

	order, err := o.api.CreateOrder(ctx, orderapi.CreateOrderRequest{
		TotalPrice:      staged.TotalPrice,
		ShippingAddress: placeholderAddress,
		Status:          "Pending",
	})
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrOrderCreation, err)
	}

	if err := o.guard.RecordPendingOrder(ctx, order.OrderID, staged.TotalPrice, fingerprint); err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrOrderCreation, err)
	}
	return order.OrderID, nil, nil
}
