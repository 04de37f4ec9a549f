package billing

import (
	"errors"
	"time"

	"github.com/shopbill-app/shopbill/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository provides the DB operations used by the billing service.
// Transaction runs its callback against a repository bound to one database
// transaction; the payment flip and subscription activation go through it.
type Repository interface {
	GetActivePlan(id uint) (*models.SubscriptionPlan, error)
	GetPlan(id uint) (*models.SubscriptionPlan, error)
	GetPlanByType(planType string) (*models.SubscriptionPlan, error)
	ListActivePlans() ([]models.SubscriptionPlan, error)

	CreatePayment(p *models.Payment) error
	SavePayment(p *models.Payment) error
	GetPaymentByOrderID(orderID string) (*models.Payment, error)
	GetPaymentByOrderIDForUser(orderID string, userID uint) (*models.Payment, error)
	ListPaymentsByUser(userID uint) ([]models.Payment, error)

	GetOrCreateSubscription(userID uint) (*models.UserSubscription, error)
	SaveSubscription(sub *models.UserSubscription) error

	CreateWebhookEventIfNotExists(event *models.PaymentWebhookEvent) (bool, *models.PaymentWebhookEvent, error)
	MarkWebhookProcessed(id uint, processingError string) error

	Transaction(fn func(Repository) error) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a billing repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) GetActivePlan(id uint) (*models.SubscriptionPlan, error) {
	var plan models.SubscriptionPlan
	err := r.db.Where("id = ? AND is_active = ?", id, true).First(&plan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return &plan, nil
}

func (r *gormRepository) GetPlan(id uint) (*models.SubscriptionPlan, error) {
	var plan models.SubscriptionPlan
	if err := r.db.First(&plan, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return &plan, nil
}

func (r *gormRepository) GetPlanByType(planType string) (*models.SubscriptionPlan, error) {
	var plan models.SubscriptionPlan
	err := r.db.Where("plan_type = ? AND is_active = ?", planType, true).
		Order("id").First(&plan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return &plan, nil
}

func (r *gormRepository) ListActivePlans() ([]models.SubscriptionPlan, error) {
	var plans []models.SubscriptionPlan
	err := r.db.Where("is_active = ?", true).Order("price").Find(&plans).Error
	return plans, err
}

func (r *gormRepository) CreatePayment(p *models.Payment) error {
	return r.db.Create(p).Error
}

func (r *gormRepository) SavePayment(p *models.Payment) error {
	return r.db.Save(p).Error
}

func (r *gormRepository) GetPaymentByOrderID(orderID string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.Preload("Plan").Where("order_id = ?", orderID).First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return &payment, nil
}

func (r *gormRepository) GetPaymentByOrderIDForUser(orderID string, userID uint) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.Preload("Plan").
		Where("order_id = ? AND user_id = ?", orderID, userID).
		First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return &payment, nil
}

func (r *gormRepository) ListPaymentsByUser(userID uint) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.Preload("Plan").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&payments).Error
	return payments, err
}

// GetOrCreateSubscription returns the user's subscription row, creating the
// empty record on first access. The ON CONFLICT guard keeps concurrent
// first-touch callers converging on one row.
func (r *gormRepository) GetOrCreateSubscription(userID uint) (*models.UserSubscription, error) {
	sub := models.UserSubscription{UserID: userID}
	if err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&sub).Error; err != nil {
		return nil, err
	}

	var stored models.UserSubscription
	if err := r.db.Preload("Plan").Where("user_id = ?", userID).First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *gormRepository) SaveSubscription(sub *models.UserSubscription) error {
	return r.db.Save(sub).Error
}

// CreateWebhookEventIfNotExists inserts the event unless its EventID was
// already seen. Reports whether this call created the row.
func (r *gormRepository) CreateWebhookEventIfNotExists(event *models.PaymentWebhookEvent) (bool, *models.PaymentWebhookEvent, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "event_id"}},
		DoNothing: true,
	}).Create(event)
	if tx.Error != nil {
		return false, nil, tx.Error
	}

	created := tx.RowsAffected > 0
	var stored models.PaymentWebhookEvent
	if err := r.db.Where("event_id = ?", event.EventID).First(&stored).Error; err != nil {
		return false, nil, err
	}
	return created, &stored, nil
}

func (r *gormRepository) MarkWebhookProcessed(id uint, processingError string) error {
	now := time.Now()
	return r.db.Model(&models.PaymentWebhookEvent{}).Where("id = ?", id).Updates(map[string]interface{}{
		"processed_at":     &now,
		"processing_error": processingError,
	}).Error
}

func (r *gormRepository) Transaction(fn func(Repository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&gormRepository{db: tx})
	})
}
