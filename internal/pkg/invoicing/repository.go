package invoicing

import (
	"github.com/shopbill-app/shopbill/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository is the storage surface checkout needs. Transaction yields a
// Repository bound to the open transaction; every mutation of a checkout runs
// through that bound instance so the invoice, stock and loyalty writes commit
// or roll back together.
type Repository interface {
	GetProduct(shopID, productID uint) (*models.Product, error)
	DecrementStock(shopID, productID uint, qty float64) (bool, error)
	ForceDecrementStock(shopID, productID uint, qty float64) error

	NextInvoiceNumber(shopID uint) (int64, error)

	ResolveCustomer(shopID uint, name, mobile string) (*models.Customer, error)
	GetLoyaltyAccount(customerID uint) (*models.LoyaltyAccount, error)
	SaveLoyaltyAccount(acc *models.LoyaltyAccount) error

	CreateInvoice(inv *models.Invoice) error
	GetInvoiceByUUID(shopID uint, uuid string) (*models.Invoice, error)
	ListInvoices(shopID uint, limit, offset int) ([]models.Invoice, error)

	Transaction(fn func(Repository) error) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewGormRepository wires the checkout storage surface onto a live connection
func NewGormRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) GetProduct(shopID, productID uint) (*models.Product, error) {
	var product models.Product
	err := r.db.Where("id = ? AND shop_id = ?", productID, shopID).First(&product).Error
	if err == gorm.ErrRecordNotFound {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// DecrementStock subtracts qty only while enough stock remains. The guard in
// the WHERE clause makes the check-and-decrement a single atomic statement;
// a false return means the stock would have gone negative.
func (r *gormRepository) DecrementStock(shopID, productID uint, qty float64) (bool, error) {
	res := r.db.Model(&models.Product{}).
		Where("id = ? AND shop_id = ? AND quantity >= ?", productID, shopID, qty).
		UpdateColumn("quantity", gorm.Expr("quantity - ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ForceDecrementStock subtracts qty unconditionally, used when the caller
// explicitly allowed overselling. The quantity may go negative.
func (r *gormRepository) ForceDecrementStock(shopID, productID uint, qty float64) error {
	return r.db.Model(&models.Product{}).
		Where("id = ? AND shop_id = ?", productID, shopID).
		UpdateColumn("quantity", gorm.Expr("quantity - ?", qty)).Error
}

// NextInvoiceNumber bumps the shop's counter row under a row lock and returns
// the allocated number. The seed insert is conflict-tolerant so two first
// invoices for a fresh shop both converge on the same row; the SELECT ... FOR
// UPDATE then serializes them.
func (r *gormRepository) NextInvoiceNumber(shopID uint) (int64, error) {
	seed := models.InvoiceSequence{ShopID: shopID}
	if err := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		return 0, err
	}

	var seq models.InvoiceSequence
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&seq, "shop_id = ?", shopID).Error; err != nil {
		return 0, err
	}
	seq.LastNumber++
	if err := r.db.Save(&seq).Error; err != nil {
		return 0, err
	}
	return seq.LastNumber, nil
}

// ResolveCustomer finds the shop's customer by mobile or creates one. The
// unique (shop_id, mobile) index plus the conflict-tolerant insert make
// concurrent checkouts for the same phone number converge on one row.
func (r *gormRepository) ResolveCustomer(shopID uint, name, mobile string) (*models.Customer, error) {
	seed := models.Customer{ShopID: shopID, Name: name, Mobile: mobile}
	if err := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		return nil, err
	}

	var customer models.Customer
	if err := r.db.Where("shop_id = ? AND mobile = ?", shopID, mobile).
		First(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *gormRepository) GetLoyaltyAccount(customerID uint) (*models.LoyaltyAccount, error) {
	var acc models.LoyaltyAccount
	err := r.db.Where("customer_id = ?", customerID).First(&acc).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

func (r *gormRepository) SaveLoyaltyAccount(acc *models.LoyaltyAccount) error {
	return r.db.Save(acc).Error
}

func (r *gormRepository) CreateInvoice(inv *models.Invoice) error {
	return r.db.Create(inv).Error
}

func (r *gormRepository) GetInvoiceByUUID(shopID uint, uuid string) (*models.Invoice, error) {
	var inv models.Invoice
	err := r.db.Preload("Items").Preload("Customer").
		Where("shop_id = ? AND uuid = ?", shopID, uuid).First(&inv).Error
	if err == gorm.ErrRecordNotFound {
		return nil, ErrInvoiceNotFound
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *gormRepository) ListInvoices(shopID uint, limit, offset int) ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := r.db.Preload("Items").
		Where("shop_id = ?", shopID).
		Order("number DESC").
		Limit(limit).Offset(offset).
		Find(&invoices).Error
	return invoices, err
}

func (r *gormRepository) Transaction(fn func(Repository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&gormRepository{db: tx})
	})
}
