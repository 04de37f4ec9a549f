package models

import "time"

const InvoiceStatusPaid = "PAID"

// Invoice is the persisted sale header. Number is allocated per shop from
// InvoiceSequence and unique within it; totals are computed once at creation
// and never recalculated from the items.
type Invoice struct {
	ID             uint          `gorm:"primaryKey" json:"id"`
	UUID           string        `gorm:"type:varchar(36);not null;uniqueIndex" json:"uuid"`
	ShopID         uint          `gorm:"not null;index:ux_invoices_shop_number,unique,priority:1" json:"shop_id"`
	Number         int64         `gorm:"not null;index:ux_invoices_shop_number,unique,priority:2" json:"number"`
	CustomerID     *uint         `gorm:"index" json:"customer_id,omitempty"`
	Customer       *Customer     `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	CustomerName   string        `gorm:"type:varchar(140);default:''" json:"customer_name"`
	CustomerMobile string        `gorm:"type:varchar(20);default:''" json:"customer_mobile"`
	InvoiceDate    time.Time     `gorm:"autoCreateTime;index" json:"invoice_date"`
	Subtotal       float64       `gorm:"type:decimal(12,2);default:0" json:"subtotal"`
	TaxTotal       float64       `gorm:"type:decimal(12,2);default:0" json:"tax_total"`
	DiscountTotal  float64       `gorm:"type:decimal(12,2);default:0" json:"discount_total"`
	GrandTotal     float64       `gorm:"type:decimal(12,2);default:0" json:"grand_total"`
	PaymentMode    string        `gorm:"type:varchar(20);default:'cash'" json:"payment_mode"`
	Status         string        `gorm:"type:varchar(20);default:'PAID'" json:"status"`
	CreatedByID    *uint         `gorm:"index" json:"created_by_id,omitempty"`
	Items          []InvoiceItem `gorm:"foreignKey:InvoiceID" json:"items"`
	CreatedAt      time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
}

// InvoiceItem snapshots unit price, tax rate and line total at sale time so
// later product edits cannot rewrite a past sale. Oversold marks lines that
// were sold past the available stock when the caller allowed it.
type InvoiceItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	InvoiceID uint      `gorm:"not null;index" json:"invoice_id"`
	ProductID uint      `gorm:"not null;index" json:"product_id"`
	Qty       float64   `gorm:"type:decimal(10,2);not null" json:"qty"`
	UnitPrice float64   `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	TaxRate   float64   `gorm:"type:decimal(5,2);default:0" json:"tax_rate"`
	LineTotal float64   `gorm:"type:decimal(12,2);not null" json:"line_total"`
	Oversold  bool      `gorm:"default:false" json:"oversold"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// InvoiceSequence is the per-shop monotonic counter backing invoice number
// allocation. The row is bumped inside the invoice transaction under a row
// lock, which keeps numbers unique and gapless-per-commit even with
// concurrent checkouts.
type InvoiceSequence struct {
	ShopID     uint      `gorm:"primaryKey" json:"shop_id"`
	LastNumber int64     `gorm:"not null;default:0" json:"last_number"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
