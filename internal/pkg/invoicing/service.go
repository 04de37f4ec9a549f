package invoicing

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopbill-app/shopbill/app/models"
	"gorm.io/gorm"
)

// LineInput is one sale line. UnitPrice and TaxRate default to the product's
// current values when nil; a set value overrides them, and either way the
// invoice item snapshots what was actually charged.
type LineInput struct {
	ProductID uint     `json:"product_id" validate:"required"`
	Qty       float64  `json:"qty" validate:"required,gt=0"`
	UnitPrice *float64 `json:"unit_price,omitempty" validate:"omitempty,gte=0"`
	TaxRate   *float64 `json:"tax_rate,omitempty" validate:"omitempty,gte=0,lte=100"`
}

// CreateInvoiceInput is a checkout request. A mobile number resolves or
// creates a registered customer; a bare name records a walk-in sale.
type CreateInvoiceInput struct {
	CustomerName   string      `json:"customer_name" validate:"max=140"`
	CustomerMobile string      `json:"customer_mobile" validate:"max=20"`
	PaymentMode    string      `json:"payment_mode" validate:"omitempty,oneof=cash card upi"`
	DiscountTotal  float64     `json:"discount_total" validate:"gte=0"`
	AllowOversell  bool        `json:"allow_oversell"`
	Lines          []LineInput `json:"lines" validate:"required,min=1,dive"`
}

// Service runs checkout: number allocation, line math, stock deduction and
// loyalty accrual in one transaction.
type Service struct {
	repo    Repository
	nowFunc func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, nowFunc: time.Now}
}

func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewGormRepository(db))
}

// WithClock overrides the time source, for tests
func (s *Service) WithClock(now func() time.Time) *Service {
	s.nowFunc = now
	return s
}

// CreateInvoice performs a checkout for the shop. Everything commits or rolls
// back together: the allocated number, the header and items, the stock
// decrements and any loyalty points.
func (s *Service) CreateInvoice(ctx context.Context, shopID, userID uint, input CreateInvoiceInput) (*models.Invoice, error) {
	_ = ctx
	if len(input.Lines) == 0 {
		return nil, ErrEmptyInvoice
	}
	for i, line := range input.Lines {
		if line.Qty <= 0 {
			return nil, fmt.Errorf("invoicing: line %d has non-positive quantity", i+1)
		}
	}

	var result *models.Invoice
	err := s.repo.Transaction(func(tx Repository) error {
		inv := &models.Invoice{
			UUID:         uuid.NewString(),
			ShopID:       shopID,
			CustomerName: input.CustomerName,
			InvoiceDate:  s.nowFunc(),
			PaymentMode:  paymentModeOrDefault(input.PaymentMode),
			Status:       models.InvoiceStatusPaid,
			CreatedByID:  &userID,
		}

		var customer *models.Customer
		if input.CustomerMobile != "" {
			var err error
			customer, err = tx.ResolveCustomer(shopID, input.CustomerName, input.CustomerMobile)
			if err != nil {
				return err
			}
			inv.CustomerID = &customer.ID
			inv.CustomerName = customer.Name
			inv.CustomerMobile = customer.Mobile
		}

		number, err := tx.NextInvoiceNumber(shopID)
		if err != nil {
			return err
		}
		inv.Number = number

		var subtotal, taxTotal float64
		for _, line := range input.Lines {
			product, err := tx.GetProduct(shopID, line.ProductID)
			if err != nil {
				return err
			}

			unitPrice := product.Price
			if line.UnitPrice != nil {
				unitPrice = *line.UnitPrice
			}
			taxRate := product.TaxRate
			if line.TaxRate != nil {
				taxRate = *line.TaxRate
			}

			lineSubtotal := round2(unitPrice * line.Qty)
			lineTax := round2(lineSubtotal * taxRate / 100)
			lineTotal := round2(lineSubtotal + lineTax)

			oversold := false
			ok, err := tx.DecrementStock(shopID, product.ID, line.Qty)
			if err != nil {
				return err
			}
			if !ok {
				if !input.AllowOversell {
					return &InsufficientStockError{
						ProductID: product.ID,
						Product:   product.Name,
						Requested: line.Qty,
						Available: product.Quantity,
					}
				}
				if err := tx.ForceDecrementStock(shopID, product.ID, line.Qty); err != nil {
					return err
				}
				oversold = true
			}

			inv.Items = append(inv.Items, models.InvoiceItem{
				ProductID: product.ID,
				Qty:       line.Qty,
				UnitPrice: unitPrice,
				TaxRate:   taxRate,
				LineTotal: lineTotal,
				Oversold:  oversold,
			})
			subtotal += lineSubtotal
			taxTotal += lineTax
		}

		inv.Subtotal = round2(subtotal)
		inv.TaxTotal = round2(taxTotal)
		inv.DiscountTotal = round2(input.DiscountTotal)
		inv.GrandTotal = round2(inv.Subtotal + inv.TaxTotal - inv.DiscountTotal)

		if err := tx.CreateInvoice(inv); err != nil {
			return err
		}

		if customer != nil {
			if err := s.accruePoints(tx, customer.ID, inv.GrandTotal); err != nil {
				return err
			}
		}

		result = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetInvoice fetches one invoice with items by its public uuid
func (s *Service) GetInvoice(ctx context.Context, shopID uint, invoiceUUID string) (*models.Invoice, error) {
	_ = ctx
	return s.repo.GetInvoiceByUUID(shopID, invoiceUUID)
}

// ListInvoices returns the shop's invoices newest first
func (s *Service) ListInvoices(ctx context.Context, shopID uint, limit, offset int) ([]models.Invoice, error) {
	_ = ctx
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.repo.ListInvoices(shopID, limit, offset)
}

func (s *Service) accruePoints(tx Repository, customerID uint, grandTotal float64) error {
	acc, err := tx.GetLoyaltyAccount(customerID)
	if err != nil {
		return err
	}
	if acc == nil {
		return nil
	}
	earned := acc.PointsFor(grandTotal)
	if earned == 0 {
		return nil
	}
	acc.Points += earned
	return tx.SaveLoyaltyAccount(acc)
}

func paymentModeOrDefault(mode string) string {
	if mode == "" {
		return "cash"
	}
	return mode
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
