package repository

import (
	"time"

	"github.com/shopbill-app/shopbill/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// subscriptionRepository implements the SubscriptionRepository interface
type subscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository creates a new subscription repository instance
func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

// GetByUserID retrieves a user's subscription with its plan
func (r *subscriptionRepository) GetByUserID(userID uint) (*models.UserSubscription, error) {
	var sub models.UserSubscription
	err := r.db.Preload("Plan").Where("user_id = ?", userID).First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// GetOrCreate loads the user's subscription, inserting an empty row first if
// none exists. The conflict-tolerant insert keeps concurrent first reads from
// racing on the unique user_id index.
func (r *subscriptionRepository) GetOrCreate(userID uint) (*models.UserSubscription, error) {
	seed := models.UserSubscription{UserID: userID}
	if err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&seed).Error; err != nil {
		return nil, err
	}
	return r.GetByUserID(userID)
}

// Update updates an existing subscription
func (r *subscriptionRepository) Update(sub *models.UserSubscription) error {
	return r.db.Save(sub).Error
}

// ListExpiring lists active paid subscriptions whose end date passed
func (r *subscriptionRepository) ListExpiring(before time.Time) ([]models.UserSubscription, error) {
	var subs []models.UserSubscription
	err := r.db.Preload("Plan").
		Where("active = ? AND allowed_by_admin = ? AND end_date IS NOT NULL AND end_date < ?",
			true, false, before).
		Find(&subs).Error
	return subs, err
}

// ListGraceEnded lists subscriptions whose grace window closed
func (r *subscriptionRepository) ListGraceEnded(before time.Time) ([]models.UserSubscription, error) {
	var subs []models.UserSubscription
	err := r.db.
		Where("grace_period_end IS NOT NULL AND grace_period_end < ?", before).
		Find(&subs).Error
	return subs, err
}
