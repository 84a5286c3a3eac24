package checkout

import (
	"context"
	"fmt"
	"log"

	"github.com/tientrn/laptopstore/domain"
)

// Outcome classifies a gateway return for the caller.
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeCancelled Outcome = "cancelled"
	OutcomeIgnored   Outcome = "ignored"
)

const (
	gatewayStatusSuccess = "success"
	gatewayStatusCancel  = "cancel"
)

// HandleGatewayReturn consumes the status the gateway redirect carried
// back. On success the pending removal set is drained into the live
// cart and all checkout records are cleared. On cancel the cart is left
// alone; only the attempt records go. Any other status is a no-op so a
// replayed or malformed redirect cannot corrupt state.
func (o *Orchestrator) HandleGatewayReturn(ctx context.Context, status string) (Outcome, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch status {
	case gatewayStatusSuccess:
		return o.completePayment(ctx)
	case gatewayStatusCancel:
		return o.cancelPayment(ctx)
	default:
		log.Printf("ignoring gateway return with status %q", status)
		return OutcomeIgnored, nil
	}
}

func (o *Orchestrator) completePayment(ctx context.Context) (Outcome, error) {
	ids, err := o.guard.DrainPendingRemoval(ctx)
	if err != nil {
		return OutcomeIgnored, err
	}
	// Every real payment records its removal set before the redirect
	// leaves the app. A success with nothing to drain is a stray or
	// replayed redirect and must not fake a completion.
	if len(ids) == 0 {
		log.Printf("ignoring gateway success with no pending removals")
		return OutcomeIgnored, nil
	}
	for _, id := range ids {
		if _, err := o.cart.RemoveFromCart(ctx, id); err != nil {
			return OutcomeIgnored, fmt.Errorf("failed to remove paid line %s: %w", id, err)
		}
	}

	if err := o.clearStaged(ctx); err != nil {
		return OutcomeIgnored, err
	}
	if err := o.guard.ClearPendingOrder(ctx); err != nil {
		return OutcomeIgnored, err
	}

	if err := o.transition(domain.CheckoutStatusCompleted); err != nil {
		return OutcomeIgnored, err
	}
	log.Printf("payment confirmed, %d paid lines removed from cart", len(ids))
	return OutcomeCompleted, nil
}

// cancelPayment leaves the cart and any server-side order untouched; no
// compensating cancellation call exists in the consumed contract.
func (o *Orchestrator) cancelPayment(ctx context.Context) (Outcome, error) {
	// Discard the removal set so a replayed success URL later cannot
	// strip lines that were never paid for.
	if _, err := o.guard.DrainPendingRemoval(ctx); err != nil {
		return OutcomeIgnored, err
	}
	if err := o.clearStaged(ctx); err != nil {
		return OutcomeIgnored, err
	}
	if err := o.guard.ClearPendingOrder(ctx); err != nil {
		return OutcomeIgnored, err
	}

	o.status = domain.CheckoutStatusIdle
	log.Printf("payment cancelled at gateway, cart untouched")
	return OutcomeCancelled, nil
}
