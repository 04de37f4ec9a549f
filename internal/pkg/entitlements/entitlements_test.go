package entitlements

import (
	"errors"
	"testing"
	"time"

	"github.com/shopbill-app/shopbill/app/models"
)

var now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func freePlan() *models.SubscriptionPlan {
	return &models.SubscriptionPlan{
		ID:           1,
		Name:         "Free Trial",
		PlanType:     models.PlanTypeFree,
		DurationDays: 7,
		Features:     models.FeatureSet{FeatureDashboard: true, FeatureBilling: true, FeatureStock: true},
	}
}

func proPlan() *models.SubscriptionPlan {
	return &models.SubscriptionPlan{
		ID:           2,
		Name:         "Pro Monthly",
		PlanType:     models.PlanTypePro,
		DurationDays: 30,
		Features: models.FeatureSet{
			FeatureDashboard: true,
			FeatureBilling:   true,
			FeatureStock:     true,
			FeatureReports:   true,
			FeatureExpenses:  true,
		},
	}
}

func TestIsValid_AdminOverrideIgnoresDates(t *testing.T) {
	sub := &models.UserSubscription{AllowedByAdmin: true}
	if !IsValid(sub, now) {
		t.Fatalf("expected admin override with all-null dates to be valid")
	}
	// Even with everything expired it still wins.
	past := now.Add(-48 * time.Hour)
	sub = &models.UserSubscription{
		AllowedByAdmin: true,
		TrialUsed:      true,
		TrialEndDate:   &past,
		EndDate:        &past,
	}
	if !IsValid(sub, now) {
		t.Fatalf("expected admin override to beat expired windows")
	}
	if !HasFeature(sub, FeatureWhatsAppReports, now) {
		t.Fatalf("expected admin override to grant every feature")
	}
}

func TestIsValid_TrialWindow(t *testing.T) {
	sub := &models.UserSubscription{}
	if err := sub.StartTrial(freePlan(), now); err != nil {
		t.Fatalf("unexpected StartTrial error: %v", err)
	}
	if !IsValid(sub, now) {
		t.Fatalf("expected fresh trial to be valid")
	}
	if !IsValid(sub, now.Add(6*24*time.Hour)) {
		t.Fatalf("expected trial to hold on day 6")
	}
	if IsValid(sub, now.Add(8*24*time.Hour)) {
		t.Fatalf("expected trial to lapse after 7 days")
	}
}

func TestIsValid_ExpiredTrialBoundary(t *testing.T) {
	end := now.Add(-time.Second)
	sub := &models.UserSubscription{
		TrialUsed:    true,
		Active:       true,
		Plan:         freePlan(),
		TrialEndDate: &end,
	}
	if IsValid(sub, now) {
		t.Fatalf("expected trial ended one second ago to be invalid")
	}
	if got := Features(sub, now); len(got) != 0 {
		t.Fatalf("expected empty feature set for invalid subscription, got %v", got)
	}
}

func TestStartTrial_SecondCallIsRejected(t *testing.T) {
	sub := &models.UserSubscription{}
	if err := sub.StartTrial(freePlan(), now); err != nil {
		t.Fatalf("unexpected first StartTrial error: %v", err)
	}
	firstEnd := *sub.TrialEndDate

	err := sub.StartTrial(freePlan(), now.Add(time.Hour))
	if !errors.Is(err, models.ErrTrialAlreadyUsed) {
		t.Fatalf("expected ErrTrialAlreadyUsed, got %v", err)
	}
	if !sub.TrialEndDate.Equal(firstEnd) {
		t.Fatalf("expected trial end to stay %v, got %v", firstEnd, *sub.TrialEndDate)
	}
}

func TestActivatePlan_SetsWindowAndClearsTrial(t *testing.T) {
	sub := &models.UserSubscription{}
	if err := sub.StartTrial(freePlan(), now.Add(-10*24*time.Hour)); err != nil {
		t.Fatalf("unexpected StartTrial error: %v", err)
	}

	plan := proPlan()
	sub.ActivatePlan(plan, now)

	wantEnd := now.Add(30 * 24 * time.Hour)
	if sub.EndDate == nil || !sub.EndDate.Equal(wantEnd) {
		t.Fatalf("expected end date %v, got %v", wantEnd, sub.EndDate)
	}
	if sub.TrialStartDate != nil || sub.TrialEndDate != nil {
		t.Fatalf("expected trial dates to be cleared")
	}
	if !sub.TrialUsed {
		t.Fatalf("expected trial_used to remain set as a historical record")
	}
	if sub.GracePeriodEnd != nil {
		t.Fatalf("expected grace period to be cleared")
	}
	if !IsValid(sub, now.Add(29*24*time.Hour)) {
		t.Fatalf("expected paid window to hold on day 29")
	}
	if IsValid(sub, now.Add(31*24*time.Hour)) {
		t.Fatalf("expected paid window to lapse after 30 days")
	}
}

func TestGracePeriod_ReadOnlyFeatures(t *testing.T) {
	sub := &models.UserSubscription{Plan: proPlan(), TrialUsed: true}
	sub.ActivatePlan(proPlan(), now.Add(-40*24*time.Hour))
	sub.EnterGracePeriod(now.Add(-time.Hour))

	if sub.Active {
		t.Fatalf("expected grace period to clear the active flag")
	}
	if !IsValid(sub, now) {
		t.Fatalf("expected open grace window to remain valid")
	}

	feats := Features(sub, now)
	if !feats.Has(FeatureDashboard) || !feats.Has(FeatureReports) {
		t.Fatalf("expected read features to survive grace, got %v", feats)
	}
	for _, k := range []string{FeatureBilling, FeatureStock, FeatureExpenses} {
		if feats.Has(k) {
			t.Fatalf("expected write feature %q to be disabled during grace", k)
		}
	}

	// Window closes 3 days later.
	if IsValid(sub, now.Add(4*24*time.Hour)) {
		t.Fatalf("expected grace window to close after %d days", models.GracePeriodDays)
	}
}

func TestFeatures_NilAndEmpty(t *testing.T) {
	if IsValid(nil, now) {
		t.Fatalf("expected nil subscription to be invalid")
	}
	if got := Features(nil, now); len(got) != 0 {
		t.Fatalf("expected empty set for nil subscription, got %v", got)
	}

	sub := &models.UserSubscription{}
	if IsValid(sub, now) {
		t.Fatalf("expected zero-value subscription to be invalid")
	}
}

func TestFeatureSetAccessors(t *testing.T) {
	fs := models.FeatureSet{
		FeatureBilling:       true,
		FeatureReports:       false,
		LimitMaxBillsPerWeek: float64(100),
	}
	if !fs.Has(FeatureBilling) {
		t.Fatalf("expected billing to be enabled")
	}
	if fs.Has(FeatureReports) || fs.Has("missing") {
		t.Fatalf("expected disabled/missing features to report false")
	}
	if got := fs.Limit(LimitMaxBillsPerWeek); got != 100 {
		t.Fatalf("expected limit 100, got %v", got)
	}
}
