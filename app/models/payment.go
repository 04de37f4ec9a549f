package models

import "time"

const (
	PaymentStatusCreated = "CREATED"
	PaymentStatusPending = "PENDING"
	PaymentStatusSuccess = "SUCCESS"
	PaymentStatusFailed  = "FAILED"
)

// Payment tracks one gateway order. OrderID is the correlation key shared
// with the gateway; the row is created before confirmation and moves to a
// terminal status exactly once.
type Payment struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	UserID      uint              `gorm:"not null;index" json:"user_id"`
	PlanID      *uint             `gorm:"index" json:"plan_id,omitempty"`
	Plan        *SubscriptionPlan `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
	OrderID     string            `gorm:"type:varchar(255);not null;uniqueIndex" json:"order_id"`
	PaymentID   string            `gorm:"type:varchar(255);default:''" json:"payment_id"`
	Signature   string            `gorm:"type:varchar(500);default:''" json:"-"`
	AmountPaise int64             `gorm:"not null" json:"amount_paise"`
	Currency    string            `gorm:"type:varchar(10);default:'INR'" json:"currency"`
	Status      string            `gorm:"type:varchar(20);not null;default:'CREATED';index" json:"status"`
	Notes       string            `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt   time.Time         `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt   time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsTerminal reports whether the payment already reached a final status
func (p *Payment) IsTerminal() bool {
	return p.Status == PaymentStatusSuccess || p.Status == PaymentStatusFailed
}
