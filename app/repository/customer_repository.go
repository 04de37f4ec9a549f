package repository

import (
	"strings"

	"github.com/shopbill-app/shopbill/app/models"
	"gorm.io/gorm"
)

// customerRepository implements the CustomerRepository interface
type customerRepository struct {
	db *gorm.DB
}

// NewCustomerRepository creates a new customer repository instance
func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &customerRepository{db: db}
}

// Create creates a new customer in the database
func (r *customerRepository) Create(customer *models.Customer) error {
	return r.db.Create(customer).Error
}

// GetByID retrieves a customer scoped to their shop
func (r *customerRepository) GetByID(shopID, id uint) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.Where("id = ? AND shop_id = ?", id, shopID).First(&customer).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// GetByMobile retrieves a customer by mobile number within the shop
func (r *customerRepository) GetByMobile(shopID uint, mobile string) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.Where("shop_id = ? AND mobile = ?", shopID, mobile).First(&customer).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// Update updates an existing customer
func (r *customerRepository) Update(customer *models.Customer) error {
	return r.db.Save(customer).Error
}

// Delete removes a customer scoped to their shop
func (r *customerRepository) Delete(shopID, id uint) error {
	return r.db.Where("shop_id = ?", shopID).Delete(&models.Customer{}, id).Error
}

// List retrieves a paginated list of the shop's customers
func (r *customerRepository) List(shopID uint, offset, limit int) ([]models.Customer, error) {
	var customers []models.Customer
	err := r.db.Where("shop_id = ?", shopID).Order("name ASC").
		Offset(offset).Limit(limit).Find(&customers).Error
	return customers, err
}

// Search searches the shop's customers by name or mobile
func (r *customerRepository) Search(shopID uint, query string) ([]models.Customer, error) {
	var customers []models.Customer
	searchPattern := "%" + strings.TrimSpace(query) + "%"
	err := r.db.Where("shop_id = ? AND (name LIKE ? OR mobile LIKE ?)",
		shopID, searchPattern, searchPattern).Find(&customers).Error
	return customers, err
}

// GetLoyaltyAccount retrieves a customer's loyalty account within the shop
func (r *customerRepository) GetLoyaltyAccount(shopID, customerID uint) (*models.LoyaltyAccount, error) {
	var acc models.LoyaltyAccount
	err := r.db.Where("shop_id = ? AND customer_id = ?", shopID, customerID).First(&acc).Error
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

// SaveLoyaltyAccount creates or updates a loyalty account
func (r *customerRepository) SaveLoyaltyAccount(acc *models.LoyaltyAccount) error {
	return r.db.Save(acc).Error
}
