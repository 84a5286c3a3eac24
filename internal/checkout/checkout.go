package checkout

import (
	"context"
	"fmt"
	"log"

	"github.com/tientrn/laptopstore/domain"
)

// Result is what the UI needs to continue: where to send the shopper
// and which order the attempt is bound to.
type Result struct {
	OrderID     int64
	PaymentID   int64
	PaymentURL  string
	ReusedOrder bool
	StagedTotal float64
	AttemptID   string
	Fingerprint string
}

// Checkout runs the remote-call sequence for the currently staged
// selection. Every step waits for its predecessor; any failure moves
// the machine to FAILED and keeps the staged selection so a retry does
// not re-select items.
func (o *Orchestrator) Checkout(ctx context.Context, redirectURL string) (*Result, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	staged, err := o.Staged(ctx)
	if err != nil {
		return nil, err
	}
	fingerprint := staged.Fingerprint()

	orderID, reusedRecord, err := o.createOrder(ctx, staged, fingerprint)
	if err != nil {
		return nil, o.fail(err)
	}

	if err := o.createOrderLines(ctx, orderID, staged, reusedRecord); err != nil {
		return nil, o.fail(err)
	}

	paymentID, err := o.createPayment(ctx, orderID, staged.TotalPrice)
	if err != nil {
		return nil, o.fail(err)
	}

	paymentURL, err := o.createPaymentURL(ctx, paymentID, redirectURL)
	if err != nil {
		return nil, o.fail(err)
	}

	// The cart may keep living while the shopper is at the gateway;
	// remember which lines to drop once payment is confirmed.
	if err := o.guard.RecordPendingRemoval(ctx, staged.ProductIDs()); err != nil {
		return nil, o.fail(err)
	}

	if err := o.transition(domain.CheckoutStatusAwaitingGateway); err != nil {
		return nil, o.fail(err)
	}
	log.Printf("checkout %s awaiting gateway for order %d", staged.AttemptID, orderID)

	return &Result{
		OrderID:     orderID,
		PaymentID:   paymentID,
		PaymentURL:  paymentURL,
		ReusedOrder: reusedRecord != nil,
		StagedTotal: staged.TotalPrice,
		AttemptID:   staged.AttemptID,
		Fingerprint: fingerprint,
	}, nil
}

func (o *Orchestrator) transition(to domain.CheckoutStatus) error {
	if !domain.CanTransitionTo(o.status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, o.status, to)
	}
	o.status = to
	return nil
}

// fail moves the machine to FAILED and passes the step error through.
// Staged checkout and pending records are deliberately left in place.
func (o *Orchestrator) fail(err error) error {
	o.status = domain.CheckoutStatusFailed
	log.Printf("checkout failed: %v", err)
	return err
}
