package repository

import (
	"github.com/shopbill-app/shopbill/app/models"
	"gorm.io/gorm"
)

// planRepository implements the PlanRepository interface
type planRepository struct {
	db *gorm.DB
}

// NewPlanRepository creates a new plan repository instance
func NewPlanRepository(db *gorm.DB) PlanRepository {
	return &planRepository{db: db}
}

// Create creates a new subscription plan in the database
func (r *planRepository) Create(plan *models.SubscriptionPlan) error {
	return r.db.Create(plan).Error
}

// GetByID retrieves a plan by its ID
func (r *planRepository) GetByID(id uint) (*models.SubscriptionPlan, error) {
	var plan models.SubscriptionPlan
	err := r.db.First(&plan, id).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// Update updates an existing plan
func (r *planRepository) Update(plan *models.SubscriptionPlan) error {
	return r.db.Save(plan).Error
}

// Delete removes a plan by its ID
func (r *planRepository) Delete(id uint) error {
	return r.db.Delete(&models.SubscriptionPlan{}, id).Error
}

// List retrieves all plans, active or not
func (r *planRepository) List() ([]models.SubscriptionPlan, error) {
	var plans []models.SubscriptionPlan
	err := r.db.Order("price ASC").Find(&plans).Error
	return plans, err
}

// ListActive retrieves the purchasable plans
func (r *planRepository) ListActive() ([]models.SubscriptionPlan, error) {
	var plans []models.SubscriptionPlan
	err := r.db.Where("is_active = ?", true).Order("price ASC").Find(&plans).Error
	return plans, err
}

// GetByType retrieves the first active plan of the given type
func (r *planRepository) GetByType(planType string) (*models.SubscriptionPlan, error) {
	var plan models.SubscriptionPlan
	err := r.db.Where("plan_type = ? AND is_active = ?", planType, true).First(&plan).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}
