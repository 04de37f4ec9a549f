package billing

import (
	"errors"
	"fmt"
)

var (
	// ErrSignatureMismatch means a payment confirmation failed verification.
	// No state is changed when this is returned.
	ErrSignatureMismatch = errors.New("payment signature mismatch")

	// ErrPlanNotFound means the referenced plan does not exist or is inactive
	ErrPlanNotFound = errors.New("subscription plan not found")

	// ErrPaymentNotFound means no payment row matches the order id (and user)
	ErrPaymentNotFound = errors.New("payment not found")
)

// GatewayError wraps a failure talking to the payment gateway. No local
// Payment row exists when order creation fails with one of these.
type GatewayError struct {
	Op  string
	Err error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("payment gateway %s failed: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}
