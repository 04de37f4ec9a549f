package models

import (
	"time"

	"gorm.io/gorm"
)

// Shop is the tenant root. Every product, customer and invoice hangs off a
// shop, and all shop-scoped queries filter on ShopID.
type Shop struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Name         string         `gorm:"type:varchar(120);not null" json:"name" validate:"required,min=2,max=120"`
	Address      string         `gorm:"type:text" json:"address"`
	ContactPhone string         `gorm:"type:varchar(20)" json:"contact_phone"`
	ContactEmail string         `gorm:"type:varchar(200)" json:"contact_email" validate:"omitempty,email"`
	Language     string         `gorm:"type:varchar(8);default:'en'" json:"language"`
	IsActive     bool           `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TaxProfile is a named tax rate a shop can apply to its products.
type TaxProfile struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ShopID    uint      `gorm:"not null;index" json:"shop_id"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name" validate:"required,max=100"`
	Rate      float64   `gorm:"type:decimal(5,2);default:0" json:"rate" validate:"gte=0,lte=100"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
