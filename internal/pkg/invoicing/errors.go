package invoicing

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyInvoice    = errors.New("invoicing: invoice has no line items")
	ErrProductNotFound = errors.New("invoicing: product not found")
	ErrInvoiceNotFound = errors.New("invoicing: invoice not found")
)

// InsufficientStockError rejects a line that asks for more than the product
// has on hand while oversell is not allowed.
type InsufficientStockError struct {
	ProductID uint
	Product   string
	Requested float64
	Available float64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("invoicing: insufficient stock for %q (id %d): requested %.2f, available %.2f",
		e.Product, e.ProductID, e.Requested, e.Available)
}

// ErrInsufficientStock matches any InsufficientStockError via errors.Is.
var ErrInsufficientStock = errors.New("invoicing: insufficient stock")

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}
