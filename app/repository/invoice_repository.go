package repository

import (
	"time"

	"github.com/shopbill-app/shopbill/app/models"
	"gorm.io/gorm"
)

// invoiceRepository implements the InvoiceRepository interface
type invoiceRepository struct {
	db *gorm.DB
}

// NewInvoiceRepository creates a new invoice repository instance
func NewInvoiceRepository(db *gorm.DB) InvoiceRepository {
	return &invoiceRepository{db: db}
}

// GetByUUID retrieves an invoice with its items by public uuid
func (r *invoiceRepository) GetByUUID(shopID uint, uuid string) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.db.Preload("Items").Preload("Customer").
		Where("shop_id = ? AND uuid = ?", shopID, uuid).First(&invoice).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// List retrieves a paginated list of the shop's invoices, newest first
func (r *invoiceRepository) List(shopID uint, offset, limit int) ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := r.db.Preload("Items").Where("shop_id = ?", shopID).
		Order("number DESC").Offset(offset).Limit(limit).Find(&invoices).Error
	return invoices, err
}

// ListBetween retrieves the shop's invoices inside a date range
func (r *invoiceRepository) ListBetween(shopID uint, from, to time.Time) ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := r.db.Preload("Items").
		Where("shop_id = ? AND invoice_date >= ? AND invoice_date < ?", shopID, from, to).
		Order("number ASC").Find(&invoices).Error
	return invoices, err
}

// Count returns the number of invoices in the shop
func (r *invoiceRepository) Count(shopID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Invoice{}).Where("shop_id = ?", shopID).Count(&count).Error
	return count, err
}

// CountBetween returns the number of invoices inside a date range
func (r *invoiceRepository) CountBetween(shopID uint, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.Invoice{}).
		Where("shop_id = ? AND invoice_date >= ? AND invoice_date < ?", shopID, from, to).
		Count(&count).Error
	return count, err
}

// SalesSummary aggregates totals over a date range in one query
func (r *invoiceRepository) SalesSummary(shopID uint, from, to time.Time) (*SalesSummary, error) {
	var summary SalesSummary
	err := r.db.Model(&models.Invoice{}).
		Select("COUNT(*) AS invoice_count, COALESCE(SUM(subtotal),0) AS subtotal, COALESCE(SUM(tax_total),0) AS tax_total, COALESCE(SUM(grand_total),0) AS grand_total").
		Where("shop_id = ? AND invoice_date >= ? AND invoice_date < ?", shopID, from, to).
		Scan(&summary).Error
	if err != nil {
		return nil, err
	}
	return &summary, nil
}
