package domain

import "time"

type CheckoutStatus string

const (
	CheckoutStatusIdle               CheckoutStatus = "IDLE"
	CheckoutStatusCreatingOrder      CheckoutStatus = "CREATING_ORDER"
	CheckoutStatusCreatingOrderLines CheckoutStatus = "CREATING_ORDER_LINES"
	CheckoutStatusCreatingPayment    CheckoutStatus = "CREATING_PAYMENT"
	CheckoutStatusCreatingPaymentURL CheckoutStatus = "CREATING_PAYMENT_URL"
	CheckoutStatusAwaitingGateway    CheckoutStatus = "AWAITING_GATEWAY"
	CheckoutStatusCompleted          CheckoutStatus = "COMPLETED"
	CheckoutStatusFailed             CheckoutStatus = "FAILED"
)

func (s CheckoutStatus) IsTerminal() bool {
	return s == CheckoutStatusCompleted || s == CheckoutStatusFailed
}

// String representation (for logging)
func (s CheckoutStatus) String() string {
	return string(s)
}

// CanTransitionTo encodes the linear checkout sequence. A failed or
// completed attempt may start over from order creation; every in-flight
// state may fall to FAILED.
func CanTransitionTo(from, to CheckoutStatus) bool {
	if to == CheckoutStatusFailed {
		return !from.IsTerminal()
	}
	switch to {
	case CheckoutStatusCreatingOrder:
		return from == CheckoutStatusIdle || from == CheckoutStatusFailed || from == CheckoutStatusCompleted
	case CheckoutStatusCreatingOrderLines:
		return from == CheckoutStatusCreatingOrder
	case CheckoutStatusCreatingPayment:
		return from == CheckoutStatusCreatingOrderLines
	case CheckoutStatusCreatingPaymentURL:
		return from == CheckoutStatusCreatingPayment
	case CheckoutStatusAwaitingGateway:
		return from == CheckoutStatusCreatingPaymentURL
	case CheckoutStatusCompleted:
		// IDLE is allowed because the gateway return usually lands in a
		// fresh process after full navigation.
		return from == CheckoutStatusAwaitingGateway || from == CheckoutStatusIdle
	case CheckoutStatusIdle:
		// gateway cancel returns the machine to idle
		return from == CheckoutStatusAwaitingGateway
	}
	return false
}

// StagedCheckout is the frozen line selection for one checkout attempt.
// Lines are deep copies taken at staging time; later cart edits do not
// reach into an in-flight checkout.
type StagedCheckout struct {
	AttemptID  string     `json:"attemptId"`
	Lines      []CartLine `json:"lines"`
	TotalPrice float64    `json:"totalPrice"`
	StagedAt   time.Time  `json:"stagedAt"`
}

// ProductIDs returns the staged product ids in staging order.
func (s *StagedCheckout) ProductIDs() []string {
	ids := make([]string, len(s.Lines))
	for i, l := range s.Lines {
		ids[i] = l.ProductID
	}
	return ids
}
