package repository

import (
	"time"

	"github.com/shopbill-app/shopbill/app/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByAPIKeyHash(hash string) (*models.User, error)
	GetByResetToken(token string) (*models.User, error)
	Update(user *models.User) error
	Delete(id uint) error
	List(offset, limit int) ([]models.User, error)
	ListByShop(shopID uint) ([]models.User, error)
	Count() (int64, error)
	TouchAPIKeyUsage(id uint) error
}

// ShopRepository defines the interface for shop-related database operations
type ShopRepository interface {
	Create(shop *models.Shop) error
	GetByID(id uint) (*models.Shop, error)
	Update(shop *models.Shop) error
	Delete(id uint) error
	List(offset, limit int) ([]models.Shop, error)
	Count() (int64, error)
	Search(query string) ([]models.Shop, error)
}

// ProductRepository defines the interface for product-related database operations
type ProductRepository interface {
	Create(product *models.Product) error
	GetByID(shopID, id uint) (*models.Product, error)
	GetBySKU(shopID uint, sku string) (*models.Product, error)
	Update(product *models.Product) error
	Delete(shopID, id uint) error
	List(shopID uint, offset, limit int) ([]models.Product, error)
	Search(shopID uint, query string) ([]models.Product, error)
	LowStock(shopID uint) ([]models.Product, error)
	Count(shopID uint) (int64, error)
}

// CustomerRepository defines the interface for customer-related database operations
type CustomerRepository interface {
	Create(customer *models.Customer) error
	GetByID(shopID, id uint) (*models.Customer, error)
	GetByMobile(shopID uint, mobile string) (*models.Customer, error)
	Update(customer *models.Customer) error
	Delete(shopID, id uint) error
	List(shopID uint, offset, limit int) ([]models.Customer, error)
	Search(shopID uint, query string) ([]models.Customer, error)
	GetLoyaltyAccount(shopID, customerID uint) (*models.LoyaltyAccount, error)
	SaveLoyaltyAccount(acc *models.LoyaltyAccount) error
}

// InvoiceRepository covers the read side of invoices; creation runs through
// the checkout transaction in internal/pkg/invoicing.
type InvoiceRepository interface {
	GetByUUID(shopID uint, uuid string) (*models.Invoice, error)
	List(shopID uint, offset, limit int) ([]models.Invoice, error)
	ListBetween(shopID uint, from, to time.Time) ([]models.Invoice, error)
	Count(shopID uint) (int64, error)
	CountBetween(shopID uint, from, to time.Time) (int64, error)
	SalesSummary(shopID uint, from, to time.Time) (*SalesSummary, error)
}

// TaxProfileRepository defines the interface for tax profile operations
type TaxProfileRepository interface {
	Create(profile *models.TaxProfile) error
	GetByID(shopID, id uint) (*models.TaxProfile, error)
	Update(profile *models.TaxProfile) error
	Delete(shopID, id uint) error
	List(shopID uint) ([]models.TaxProfile, error)
}

// ExpenseRepository defines the interface for expense operations
type ExpenseRepository interface {
	Create(expense *models.Expense) error
	GetByID(shopID, id uint) (*models.Expense, error)
	Update(expense *models.Expense) error
	Delete(shopID, id uint) error
	List(shopID uint, offset, limit int) ([]models.Expense, error)
	ListBetween(shopID uint, from, to time.Time) ([]models.Expense, error)
	TotalBetween(shopID uint, from, to time.Time) (float64, error)
}

// PlanRepository defines the interface for subscription plan administration
type PlanRepository interface {
	Create(plan *models.SubscriptionPlan) error
	GetByID(id uint) (*models.SubscriptionPlan, error)
	Update(plan *models.SubscriptionPlan) error
	Delete(id uint) error
	List() ([]models.SubscriptionPlan, error)
	ListActive() ([]models.SubscriptionPlan, error)
	GetByType(planType string) (*models.SubscriptionPlan, error)
}

// SubscriptionRepository defines the interface for user subscription state
type SubscriptionRepository interface {
	GetByUserID(userID uint) (*models.UserSubscription, error)
	GetOrCreate(userID uint) (*models.UserSubscription, error)
	Update(sub *models.UserSubscription) error
	ListExpiring(before time.Time) ([]models.UserSubscription, error)
	ListGraceEnded(before time.Time) ([]models.UserSubscription, error)
}

// SalesSummary aggregates invoice totals over a date range
type SalesSummary struct {
	InvoiceCount int64   `json:"invoice_count"`
	Subtotal     float64 `json:"subtotal"`
	TaxTotal     float64 `json:"tax_total"`
	GrandTotal   float64 `json:"grand_total"`
}

// Repositories struct holds all repository instances
type Repositories struct {
	User         UserRepository
	Shop         ShopRepository
	Product      ProductRepository
	Customer     CustomerRepository
	Invoice      InvoiceRepository
	TaxProfile   TaxProfileRepository
	Expense      ExpenseRepository
	Plan         PlanRepository
	Subscription SubscriptionRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Shop:         NewShopRepository(db),
		Product:      NewProductRepository(db),
		Customer:     NewCustomerRepository(db),
		Invoice:      NewInvoiceRepository(db),
		TaxProfile:   NewTaxProfileRepository(db),
		Expense:      NewExpenseRepository(db),
		Plan:         NewPlanRepository(db),
		Subscription: NewSubscriptionRepository(db),
	}
}
