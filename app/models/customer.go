package models

import (
	"math"
	"time"
)

// Customer is a shop-scoped contact resolved by mobile number at checkout.
// The (shop_id, mobile) pair is unique so concurrent checkouts converge on
// one row per phone number.
type Customer struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ShopID    uint      `gorm:"not null;index:ux_customers_shop_mobile,unique,priority:1" json:"shop_id"`
	Name      string    `gorm:"type:varchar(120);not null" json:"name" validate:"required,max=120"`
	Mobile    string    `gorm:"type:varchar(20);not null;index:ux_customers_shop_mobile,unique,priority:2" json:"mobile" validate:"required,max=20"`
	Email     string    `gorm:"type:varchar(200);default:''" json:"email" validate:"omitempty,email"`
	Address   string    `gorm:"type:text" json:"address"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// LoyaltyAccount accrues points per customer. EarnRate is the amount of
// grand total that earns one point; RedeemValue is the currency value of a
// single point when redeemed.
type LoyaltyAccount struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ShopID      uint      `gorm:"not null;index" json:"shop_id"`
	CustomerID  uint      `gorm:"not null;uniqueIndex" json:"customer_id"`
	Points      uint      `gorm:"default:0" json:"points"`
	EarnRate    uint      `gorm:"default:100" json:"earn_rate"`
	RedeemValue float64   `gorm:"type:decimal(6,2);default:1" json:"redeem_value"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// PointsFor returns how many points a purchase of the given grand total earns
func (l *LoyaltyAccount) PointsFor(grandTotal float64) uint {
	if l.EarnRate == 0 || grandTotal <= 0 {
		return 0
	}
	return uint(math.Floor(grandTotal / float64(l.EarnRate)))
}
