package repository

import (
	"strings"

	"github.com/shopbill-app/shopbill/app/models"
	"gorm.io/gorm"
)

// productRepository implements the ProductRepository interface
type productRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository instance
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

// Create creates a new product in the database
func (r *productRepository) Create(product *models.Product) error {
	return r.db.Create(product).Error
}

// GetByID retrieves a product scoped to its shop
func (r *productRepository) GetByID(shopID, id uint) (*models.Product, error) {
	var product models.Product
	err := r.db.Where("id = ? AND shop_id = ?", id, shopID).First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// GetBySKU retrieves a product by its SKU within the shop
func (r *productRepository) GetBySKU(shopID uint, sku string) (*models.Product, error) {
	var product models.Product
	err := r.db.Where("shop_id = ? AND sku = ?", shopID, sku).First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// Update updates an existing product
func (r *productRepository) Update(product *models.Product) error {
	return r.db.Save(product).Error
}

// Delete removes a product scoped to its shop
func (r *productRepository) Delete(shopID, id uint) error {
	return r.db.Where("shop_id = ?", shopID).Delete(&models.Product{}, id).Error
}

// List retrieves a paginated list of the shop's products
func (r *productRepository) List(shopID uint, offset, limit int) ([]models.Product, error) {
	var products []models.Product
	err := r.db.Where("shop_id = ?", shopID).Order("name ASC").
		Offset(offset).Limit(limit).Find(&products).Error
	return products, err
}

// Search searches the shop's products by name or SKU
func (r *productRepository) Search(shopID uint, query string) ([]models.Product, error) {
	var products []models.Product
	searchPattern := "%" + strings.TrimSpace(query) + "%"
	err := r.db.Where("shop_id = ? AND (name LIKE ? OR sku LIKE ?)",
		shopID, searchPattern, searchPattern).Find(&products).Error
	return products, err
}

// LowStock lists active products at or below their low stock threshold
func (r *productRepository) LowStock(shopID uint) ([]models.Product, error) {
	var products []models.Product
	err := r.db.Where("shop_id = ? AND is_active = ? AND low_stock_threshold > 0 AND quantity <= low_stock_threshold",
		shopID, true).Order("quantity ASC").Find(&products).Error
	return products, err
}

// Count returns the number of products in the shop
func (r *productRepository) Count(shopID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Product{}).Where("shop_id = ?", shopID).Count(&count).Error
	return count, err
}
