package repository

import (
	"time"

	"github.com/shopbill-app/shopbill/app/models"
	"gorm.io/gorm"
)

// expenseRepository implements the ExpenseRepository interface
type expenseRepository struct {
	db *gorm.DB
}

// NewExpenseRepository creates a new expense repository instance
func NewExpenseRepository(db *gorm.DB) ExpenseRepository {
	return &expenseRepository{db: db}
}

// Create creates a new expense in the database
func (r *expenseRepository) Create(expense *models.Expense) error {
	return r.db.Create(expense).Error
}

// GetByID retrieves an expense scoped to its shop
func (r *expenseRepository) GetByID(shopID, id uint) (*models.Expense, error) {
	var expense models.Expense
	err := r.db.Where("id = ? AND shop_id = ?", id, shopID).First(&expense).Error
	if err != nil {
		return nil, err
	}
	return &expense, nil
}

// Update updates an existing expense
func (r *expenseRepository) Update(expense *models.Expense) error {
	return r.db.Save(expense).Error
}

// Delete removes an expense scoped to its shop
func (r *expenseRepository) Delete(shopID, id uint) error {
	return r.db.Where("shop_id = ?", shopID).Delete(&models.Expense{}, id).Error
}

// List retrieves a paginated list of the shop's expenses, newest first
func (r *expenseRepository) List(shopID uint, offset, limit int) ([]models.Expense, error) {
	var expenses []models.Expense
	err := r.db.Where("shop_id = ?", shopID).Order("date DESC").
		Offset(offset).Limit(limit).Find(&expenses).Error
	return expenses, err
}

// ListBetween retrieves the shop's expenses inside a date range
func (r *expenseRepository) ListBetween(shopID uint, from, to time.Time) ([]models.Expense, error) {
	var expenses []models.Expense
	err := r.db.Where("shop_id = ? AND date >= ? AND date < ?", shopID, from, to).
		Order("date ASC").Find(&expenses).Error
	return expenses, err
}

// TotalBetween sums expense amounts inside a date range
func (r *expenseRepository) TotalBetween(shopID uint, from, to time.Time) (float64, error) {
	var total float64
	err := r.db.Model(&models.Expense{}).
		Select("COALESCE(SUM(amount),0)").
		Where("shop_id = ? AND date >= ? AND date < ?", shopID, from, to).
		Scan(&total).Error
	return total, err
}
