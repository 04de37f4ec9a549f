package models

import (
	"errors"
	"time"
)

// ErrTrialAlreadyUsed is returned when a trial is requested a second time.
var ErrTrialAlreadyUsed = errors.New("trial already used")

// GracePeriodDays is the window retained after a paid plan expires.
const GracePeriodDays = 3

// UserSubscription is the one-to-one entitlement record per user. At any
// instant at most one of trial window, paid window or grace window makes it
// valid; AllowedByAdmin short-circuits all of them. Mutations happen only
// through StartTrial, ActivatePlan and EnterGracePeriod.
type UserSubscription struct {
	ID             uint              `gorm:"primaryKey" json:"id"`
	UserID         uint              `gorm:"not null;uniqueIndex" json:"user_id"`
	PlanID         *uint             `gorm:"index" json:"plan_id,omitempty"`
	Plan           *SubscriptionPlan `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
	TrialUsed      bool              `gorm:"default:false" json:"trial_used"`
	TrialStartDate *time.Time        `gorm:"type:timestamp;default:null" json:"trial_start_date,omitempty"`
	TrialEndDate   *time.Time        `gorm:"type:timestamp;default:null" json:"trial_end_date,omitempty"`
	StartDate      *time.Time        `gorm:"type:timestamp;default:null" json:"start_date,omitempty"`
	EndDate        *time.Time        `gorm:"type:timestamp;default:null" json:"end_date,omitempty"`
	Active         bool              `gorm:"default:false" json:"active"`
	AllowedByAdmin bool              `gorm:"default:false" json:"allowed_by_admin"`
	GracePeriodEnd *time.Time        `gorm:"type:timestamp;default:null" json:"grace_period_end,omitempty"`
	CreatedAt      time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

// StartTrial begins the one-shot trial window using the trial plan's
// duration. TrialUsed is set once and never cleared, so a second call fails
// with ErrTrialAlreadyUsed and leaves every date untouched.
func (s *UserSubscription) StartTrial(trialPlan *SubscriptionPlan, now time.Time) error {
	if s.TrialUsed {
		return ErrTrialAlreadyUsed
	}

	end := now.Add(time.Duration(trialPlan.DurationDays) * 24 * time.Hour)
	s.PlanID = &trialPlan.ID
	s.Plan = trialPlan
	s.TrialUsed = true
	s.TrialStartDate = &now
	s.TrialEndDate = &end
	s.Active = true
	return nil
}

// ActivatePlan switches the subscription onto a paid plan. Trial dates and
// any grace window are cleared; TrialUsed stays set as a historical record.
func (s *UserSubscription) ActivatePlan(plan *SubscriptionPlan, now time.Time) {
	end := now.Add(time.Duration(plan.DurationDays) * 24 * time.Hour)
	s.PlanID = &plan.ID
	s.Plan = plan
	s.Active = true
	s.StartDate = &now
	s.EndDate = &end
	s.GracePeriodEnd = nil
	s.TrialStartDate = nil
	s.TrialEndDate = nil
}

// EnterGracePeriod opens the post-expiry window. Called by the expiry sweep
// once the paid end date has passed.
func (s *UserSubscription) EnterGracePeriod(now time.Time) {
	end := now.Add(GracePeriodDays * 24 * time.Hour)
	s.GracePeriodEnd = &end
	s.Active = false
}

// IsTrialActive reports whether the current validity comes from the trial
// window. A paid plan never counts as a trial even while TrialUsed is set.
func (s *UserSubscription) IsTrialActive(now time.Time) bool {
	if !s.TrialUsed || !s.Active || s.Plan == nil || s.Plan.PlanType != PlanTypeFree {
		return false
	}
	return s.TrialEndDate != nil && !now.After(*s.TrialEndDate)
}

// InGracePeriod reports whether the grace window is open
func (s *UserSubscription) InGracePeriod(now time.Time) bool {
	return s.GracePeriodEnd != nil && !now.After(*s.GracePeriodEnd)
}

// PlanType returns the current plan type, or "" without a plan
func (s *UserSubscription) PlanType() string {
	if s.Plan == nil {
		return ""
	}
	return s.Plan.PlanType
}

// DaysRemaining reports full days left on the governing window
func (s *UserSubscription) DaysRemaining(now time.Time) int {
	var until *time.Time
	switch {
	case s.IsTrialActive(now):
		until = s.TrialEndDate
	case s.EndDate != nil:
		until = s.EndDate
	case s.GracePeriodEnd != nil:
		until = s.GracePeriodEnd
	}
	if until == nil || until.Before(now) {
		return 0
	}
	return int(until.Sub(now).Hours() / 24)
}
