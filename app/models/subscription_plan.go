package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"time"
)

const (
	PlanTypeFree    = "FREE"
	PlanTypeBasic   = "BASIC"
	PlanTypePro     = "PRO"
	PlanTypePremium = "PREMIUM"

	PlanDurationMonthly = "MONTHLY"
	PlanDurationYearly  = "YEARLY"
)

// FeatureSet is the plan feature mapping stored as a JSON column. Values are
// booleans for on/off features and numbers for limits, e.g.
// {"billing": true, "reports": false, "max_bills_per_week": 100}.
type FeatureSet map[string]interface{}

// Value implements driver.Valuer for GORM
func (f FeatureSet) Value() (driver.Value, error) {
	if f == nil {
		return "{}", nil
	}
	b, err := json.Marshal(f)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner for GORM
func (f *FeatureSet) Scan(value interface{}) error {
	if value == nil {
		*f = FeatureSet{}
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported feature set column type %T", value)
	}
	if len(raw) == 0 {
		*f = FeatureSet{}
		return nil
	}
	return json.Unmarshal(raw, f)
}

// Has reports whether a boolean feature is enabled
func (f FeatureSet) Has(name string) bool {
	v, ok := f[name]
	if !ok {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}

// Limit returns a numeric feature value, or 0 when absent or non-numeric
func (f FeatureSet) Limit(name string) float64 {
	v, ok := f[name]
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}

// SubscriptionPlan is a sellable entitlement tier. The (plan_type, duration)
// pair is unique; administrative edits aside, rows are treated as immutable
// once a live subscription references them.
type SubscriptionPlan struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Name         string     `gorm:"type:varchar(100);not null" json:"name" validate:"required,max=100"`
	PlanType     string     `gorm:"type:varchar(20);not null;default:'FREE';index:ux_plans_type_duration,unique,priority:1" json:"plan_type" validate:"oneof=FREE BASIC PRO PREMIUM"`
	Duration     string     `gorm:"type:varchar(20);not null;default:'MONTHLY';index:ux_plans_type_duration,unique,priority:2" json:"duration" validate:"oneof=MONTHLY YEARLY"`
	Price        float64    `gorm:"type:decimal(10,2);default:0" json:"price" validate:"gte=0"`
	DurationDays int        `gorm:"not null;default:30" json:"duration_days" validate:"gt=0"`
	Features     FeatureSet `gorm:"type:json" json:"features"`
	IsActive     bool       `gorm:"default:true;index" json:"is_active"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// PricePaise returns the plan price in minor currency units, truncated the
// way the gateway expects integer amounts.
func (p *SubscriptionPlan) PricePaise() int64 {
	return int64(math.Trunc(p.Price * 100))
}
