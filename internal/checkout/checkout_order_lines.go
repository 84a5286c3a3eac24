package checkout

import (
	"context"
	"fmt"

	"github.com/tientrn/laptopstore/domain"
	"github.com/tientrn/laptopstore/internal/orderapi"
)

// createOrderLines submits one line record per staged cart line in a
// single batch. A partial failure leaves the order header orphaned on
// the server; no client-side rollback is attempted. A reused order
// skips the batch only if a previous attempt got it accepted: the
// pending record is written before the batch runs, so reuse after a
// batch failure must resubmit or the order would be paid with no lines.
func (o *Orchestrator) createOrderLines(ctx context.Context, orderID int64, staged *domain.StagedCheckout, reused *domain.PendingOrderRecord) error {
	if err := o.transition(domain.CheckoutStatusCreatingOrderLines); err != nil {
		return err
	}
	if reused != nil && reused.LinesCreated {
		return nil
	}

	lines := make([]orderapi.OrderLine, len(staged.Lines))
	for i, l := range staged.Lines {
		lines[i] = orderapi.OrderLine{
			OrderID:   orderID,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			Price:     l.LineTotal,
		}
	}

	if err := o.api.CreateOrderLines(ctx, lines); err != nil {
		return fmt.Errorf("%w: %v", ErrOrderLineCreation, err)
	}
	if err := o.guard.MarkOrderLinesCreated(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrOrderLineCreation, err)
	}
	return nil
}
