package models

import "time"

const (
	ExpenseCategoryRent        = "RENT"
	ExpenseCategoryUtilities   = "UTILITIES"
	ExpenseCategorySalary      = "SALARY"
	ExpenseCategoryInventory   = "INVENTORY"
	ExpenseCategoryTransport   = "TRANSPORT"
	ExpenseCategoryMaintenance = "MAINTENANCE"
	ExpenseCategoryOther       = "OTHER"
)

// Expense is a shop outgoing, available on plans with the "expenses" feature.
type Expense struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ShopID        uint      `gorm:"not null;index" json:"shop_id"`
	Category      string    `gorm:"type:varchar(50);not null" json:"category" validate:"oneof=RENT UTILITIES SALARY INVENTORY TRANSPORT MAINTENANCE OTHER"`
	Amount        float64   `gorm:"type:decimal(10,2);not null" json:"amount" validate:"gt=0"`
	Description   string    `gorm:"type:text" json:"description" validate:"required"`
	Date          time.Time `gorm:"type:date;not null;index" json:"date"`
	ReceiptNumber string    `gorm:"type:varchar(100);default:''" json:"receipt_number"`
	VendorName    string    `gorm:"type:varchar(200);default:''" json:"vendor_name"`
	CreatedByID   *uint     `gorm:"index" json:"created_by_id,omitempty"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}
