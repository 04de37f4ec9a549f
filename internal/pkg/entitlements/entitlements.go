package entitlements

import (
	"time"

	"github.com/shopbill-app/shopbill/app/models"
)

// Feature keys understood by the gate middleware and the plan seed data.
const (
	FeatureDashboard       = "dashboard"
	FeatureStock           = "stock"
	FeatureBilling         = "billing"
	FeatureReports         = "reports"
	FeatureExport          = "export"
	FeatureExpenses        = "expenses"
	FeatureWhatsAppReports = "whatsapp_reports"

	LimitMaxBillsPerWeek = "max_bills_per_week"
)

// writeFeatures are the keys disabled while a subscription coasts through
// its grace period: access is provisionally retained, mutations are not.
var writeFeatures = []string{FeatureBilling, FeatureStock, FeatureExpenses, FeatureExport}

// IsValid decides whether the subscription entitles the user right now.
// The checks form an ordered short-circuit chain; the first hit wins.
func IsValid(sub *models.UserSubscription, now time.Time) bool {
	if sub == nil {
		return false
	}
	if sub.AllowedByAdmin {
		return true
	}
	if sub.IsTrialActive(now) {
		return true
	}
	if sub.Active && sub.EndDate != nil && !now.After(*sub.EndDate) && !sub.IsTrialActive(now) {
		return true
	}
	if sub.InGracePeriod(now) {
		return true
	}
	return false
}

// Features resolves the effective feature set at the given instant. Admin
// override and live trial/paid windows grant the plan's full set; the grace
// window keeps read access but strips the write features; anything else
// yields an empty set.
func Features(sub *models.UserSubscription, now time.Time) models.FeatureSet {
	if sub == nil {
		return models.FeatureSet{}
	}

	if sub.AllowedByAdmin {
		return fullFeatureSet(sub)
	}
	if sub.IsTrialActive(now) {
		return planFeatures(sub)
	}
	if sub.Active && sub.EndDate != nil && !now.After(*sub.EndDate) {
		return planFeatures(sub)
	}
	if sub.InGracePeriod(now) {
		return graceFeatures(sub)
	}
	return models.FeatureSet{}
}

// HasFeature checks one boolean feature against the effective set
func HasFeature(sub *models.UserSubscription, name string, now time.Time) bool {
	if sub != nil && sub.AllowedByAdmin {
		return true
	}
	return Features(sub, now).Has(name)
}

func planFeatures(sub *models.UserSubscription) models.FeatureSet {
	if sub.Plan == nil || sub.Plan.Features == nil {
		return models.FeatureSet{}
	}
	out := make(models.FeatureSet, len(sub.Plan.Features))
	for k, v := range sub.Plan.Features {
		out[k] = v
	}
	return out
}

func graceFeatures(sub *models.UserSubscription) models.FeatureSet {
	out := planFeatures(sub)
	for _, k := range writeFeatures {
		if _, ok := out[k]; ok {
			out[k] = false
		}
	}
	return out
}

func fullFeatureSet(sub *models.UserSubscription) models.FeatureSet {
	out := planFeatures(sub)
	for _, k := range []string{
		FeatureDashboard, FeatureStock, FeatureBilling, FeatureReports,
		FeatureExport, FeatureExpenses, FeatureWhatsAppReports,
	} {
		out[k] = true
	}
	return out
}
