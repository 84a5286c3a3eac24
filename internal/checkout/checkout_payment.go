package checkout

import (
	"context"
	"fmt"

	"github.com/tientrn/laptopstore/domain"
)

func (o *Orchestrator) createPayment(ctx context.Context, orderID int64, amount float64) (int64, error) {
	if err := o.transition(domain.CheckoutStatusCreatingPayment); err != nil {
		return 0, err
	}

	payment, err := o.api.CreatePayment(ctx, orderID, amount, o.paymentMethodID)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrPaymentCreation, err)
	}
	return payment.PaymentID, nil
}

func (o *Orchestrator) createPaymentURL(ctx context.Context, paymentID int64, redirectURL string) (string, error) {
	if err := o.transition(domain.CheckoutStatusCreatingPaymentURL); err != nil {
		return "", err
	}

	paymentURL, err := o.api.PaymentURL(ctx, paymentID, redirectURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPaymentURL, err)
	}
	return paymentURL, nil
}
