package checkout

import "errors"

var (
	// ErrNoSelection is returned when checkout is attempted with zero
	// selected lines; nothing is staged and no order is created.
	ErrNoSelection = errors.New("no cart lines selected for checkout")

	ErrOrderCreation     = errors.New("failed to create order")
	ErrOrderLineCreation = errors.New("failed to create order lines")
	ErrPaymentCreation   = errors.New("failed to create payment")
	ErrPaymentURL        = errors.New("failed to create payment url")

	ErrIllegalTransition = errors.New("illegal transition of checkout status")
)
