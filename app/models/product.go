package models

import (
	"time"
)

const (
	UnitPiece    = "pcs"
	UnitKilogram = "kg"
)

// Product is a shop-scoped catalog entry. Price and tax rate are the values
// proposed at checkout; invoice items snapshot them so later edits never
// rewrite past sales.
type Product struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	ShopID            uint      `gorm:"not null;index" json:"shop_id"`
	Name              string    `gorm:"type:varchar(140);not null" json:"name" validate:"required,min=1,max=140"`
	SKU               string    `gorm:"type:varchar(64);default:''" json:"sku" validate:"max=64"`
	Unit              string    `gorm:"type:varchar(8);default:'pcs'" json:"unit" validate:"oneof=pcs kg"`
	Price             float64   `gorm:"type:decimal(10,2);not null" json:"price" validate:"gte=0"`
	CostPrice         float64   `gorm:"type:decimal(10,2);default:0" json:"cost_price" validate:"gte=0"`
	TaxRate           float64   `gorm:"type:decimal(4,1);default:0" json:"tax_rate" validate:"gte=0,lte=100"`
	Quantity          float64   `gorm:"type:decimal(12,2);default:0" json:"quantity" validate:"gte=0"`
	LowStockThreshold uint      `gorm:"default:0" json:"low_stock_threshold"`
	IsActive          bool      `gorm:"default:true" json:"is_active"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsLowStock reports whether the quantity fell to or below the threshold
func (p *Product) IsLowStock() bool {
	return p.LowStockThreshold > 0 && p.Quantity <= float64(p.LowStockThreshold)
}
