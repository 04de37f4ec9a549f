package repository

import (
	"github.com/shopbill-app/shopbill/app/models"
	"gorm.io/gorm"
)

// taxProfileRepository implements the TaxProfileRepository interface
type taxProfileRepository struct {
	db *gorm.DB
}

// NewTaxProfileRepository creates a new tax profile repository instance
func NewTaxProfileRepository(db *gorm.DB) TaxProfileRepository {
	return &taxProfileRepository{db: db}
}

// Create creates a new tax profile in the database
func (r *taxProfileRepository) Create(profile *models.TaxProfile) error {
	return r.db.Create(profile).Error
}

// GetByID retrieves a tax profile scoped to its shop
func (r *taxProfileRepository) GetByID(shopID, id uint) (*models.TaxProfile, error) {
	var profile models.TaxProfile
	err := r.db.Where("id = ? AND shop_id = ?", id, shopID).First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// Update updates an existing tax profile
func (r *taxProfileRepository) Update(profile *models.TaxProfile) error {
	return r.db.Save(profile).Error
}

// Delete removes a tax profile scoped to its shop
func (r *taxProfileRepository) Delete(shopID, id uint) error {
	return r.db.Where("shop_id = ?", shopID).Delete(&models.TaxProfile{}, id).Error
}

// List retrieves all tax profiles of the shop
func (r *taxProfileRepository) List(shopID uint) ([]models.TaxProfile, error) {
	var profiles []models.TaxProfile
	err := r.db.Where("shop_id = ?", shopID).Order("rate ASC").Find(&profiles).Error
	return profiles, err
}
