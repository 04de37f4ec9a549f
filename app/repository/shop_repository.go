package repository

import (
	"strings"

	"github.com/shopbill-app/shopbill/app/models"
	"gorm.io/gorm"
)

// shopRepository implements the ShopRepository interface
type shopRepository struct {
	db *gorm.DB
}

// NewShopRepository creates a new shop repository instance
func NewShopRepository(db *gorm.DB) ShopRepository {
	return &shopRepository{db: db}
}

// Create creates a new shop in the database
func (r *shopRepository) Create(shop *models.Shop) error {
	return r.db.Create(shop).Error
}

// GetByID retrieves a shop by its ID
func (r *shopRepository) GetByID(id uint) (*models.Shop, error) {
	var shop models.Shop
	err := r.db.First(&shop, id).Error
	if err != nil {
		return nil, err
	}
	return &shop, nil
}

// Update updates an existing shop
func (r *shopRepository) Update(shop *models.Shop) error {
	return r.db.Save(shop).Error
}

// Delete soft deletes a shop by its ID
func (r *shopRepository) Delete(id uint) error {
	return r.db.Delete(&models.Shop{}, id).Error
}

// List retrieves a paginated list of shops
func (r *shopRepository) List(offset, limit int) ([]models.Shop, error) {
	var shops []models.Shop
	err := r.db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&shops).Error
	return shops, err
}

// Count returns the total number of shops
func (r *shopRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Shop{}).Count(&count).Error
	return count, err
}

// Search searches for shops by name or contact email
func (r *shopRepository) Search(query string) ([]models.Shop, error) {
	var shops []models.Shop
	searchPattern := "%" + strings.TrimSpace(query) + "%"
	err := r.db.Where("name LIKE ? OR contact_email LIKE ?", searchPattern, searchPattern).
		Find(&shops).Error
	return shops, err
}
