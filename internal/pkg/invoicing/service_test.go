package invoicing

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopbill-app/shopbill/app/models"
)

type memRepo struct {
	mu        sync.Mutex
	products  map[uint]*models.Product
	customers map[string]*models.Customer
	loyalty   map[uint]*models.LoyaltyAccount
	sequences map[uint]int64
	invoices  []*models.Invoice
	nextID    uint
}

func newMemRepo(products ...*models.Product) *memRepo {
	r := &memRepo{
		products:  map[uint]*models.Product{},
		customers: map[string]*models.Customer{},
		loyalty:   map[uint]*models.LoyaltyAccount{},
		sequences: map[uint]int64{},
		nextID:    100,
	}
	for _, p := range products {
		r.products[p.ID] = p
	}
	return r
}

func (r *memRepo) GetProduct(shopID, productID uint) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[productID]
	if !ok || p.ShopID != shopID {
		return nil, ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memRepo) DecrementStock(shopID, productID uint, qty float64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[productID]
	if !ok || p.ShopID != shopID {
		return false, nil
	}
	if p.Quantity < qty {
		return false, nil
	}
	p.Quantity -= qty
	return true, nil
}

func (r *memRepo) ForceDecrementStock(shopID, productID uint, qty float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.products[productID]; ok && p.ShopID == shopID {
		p.Quantity -= qty
	}
	return nil
}

func (r *memRepo) NextInvoiceNumber(shopID uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sequences[shopID]++
	return r.sequences[shopID], nil
}

func (r *memRepo) ResolveCustomer(shopID uint, name, mobile string) (*models.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.customers[mobile]; ok && c.ShopID == shopID {
		cp := *c
		return &cp, nil
	}
	c := &models.Customer{ID: r.nextID, ShopID: shopID, Name: name, Mobile: mobile}
	r.nextID++
	r.customers[mobile] = c
	cp := *c
	return &cp, nil
}

func (r *memRepo) GetLoyaltyAccount(customerID uint) (*models.LoyaltyAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	acc, ok := r.loyalty[customerID]
	if !ok {
		return nil, nil
	}
	cp := *acc
	return &cp, nil
}

func (r *memRepo) SaveLoyaltyAccount(acc *models.LoyaltyAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *acc
	r.loyalty[acc.CustomerID] = &cp
	return nil
}

func (r *memRepo) CreateInvoice(inv *models.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv.ID = r.nextID
	r.nextID++
	r.invoices = append(r.invoices, inv)
	return nil
}

func (r *memRepo) GetInvoiceByUUID(shopID uint, uuid string) (*models.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inv := range r.invoices {
		if inv.ShopID == shopID && inv.UUID == uuid {
			return inv, nil
		}
	}
	return nil, ErrInvoiceNotFound
}

func (r *memRepo) ListInvoices(shopID uint, limit, offset int) ([]models.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Invoice
	for _, inv := range r.invoices {
		if inv.ShopID == shopID {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (r *memRepo) Transaction(fn func(Repository) error) error {
	return fn(r)
}

var checkoutNow = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func newCheckoutService(repo Repository) *Service {
	return NewService(repo).WithClock(func() time.Time { return checkoutNow })
}

func twoProducts() (*models.Product, *models.Product) {
	return &models.Product{ID: 1, ShopID: 5, Name: "Soap", Price: 100, TaxRate: 18, Quantity: 10},
		&models.Product{ID: 2, ShopID: 5, Name: "Salt", Price: 50, TaxRate: 0, Quantity: 10}
}

func TestCreateInvoice_Totals(t *testing.T) {
	p1, p2 := twoProducts()
	repo := newMemRepo(p1, p2)
	svc := newCheckoutService(repo)

	inv, err := svc.CreateInvoice(context.Background(), 5, 9, CreateInvoiceInput{
		CustomerName: "Walk In",
		Lines: []LineInput{
			{ProductID: 1, Qty: 2},
			{ProductID: 2, Qty: 1},
		},
	})
	if err != nil {
		t.Fatalf("CreateInvoice: %v", err)
	}

	if inv.Subtotal != 250 {
		t.Errorf("subtotal = %v, want 250", inv.Subtotal)
	}
	if inv.TaxTotal != 36 {
		t.Errorf("tax_total = %v, want 36", inv.TaxTotal)
	}
	if inv.GrandTotal != 286 {
		t.Errorf("grand_total = %v, want 286", inv.GrandTotal)
	}
	if inv.Number != 1 {
		t.Errorf("first invoice number = %d, want 1", inv.Number)
	}
	if inv.UUID == "" {
		t.Error("invoice uuid not set")
	}
	if inv.Status != models.InvoiceStatusPaid {
		t.Errorf("status = %q, want PAID", inv.Status)
	}
	if len(inv.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(inv.Items))
	}
	if inv.Items[0].LineTotal != 236 {
		t.Errorf("line 1 total = %v, want 236", inv.Items[0].LineTotal)
	}
	if inv.Items[1].LineTotal != 50 {
		t.Errorf("line 2 total = %v, want 50", inv.Items[1].LineTotal)
	}
}

func TestCreateInvoice_StockDeducted(t *testing.T) {
	p1, p2 := twoProducts()
	repo := newMemRepo(p1, p2)
	svc := newCheckoutService(repo)

	_, err := svc.CreateInvoice(context.Background(), 5, 9, CreateInvoiceInput{
		Lines: []LineInput{{ProductID: 1, Qty: 3}},
	})
	if err != nil {
		t.Fatalf("CreateInvoice: %v", err)
	}
	if got := repo.products[1].Quantity; got != 7 {
		t.Errorf("remaining stock = %v, want 7", got)
	}
}

func TestCreateInvoice_InsufficientStockRejected(t *testing.T) {
	p1, _ := twoProducts()
	repo := newMemRepo(p1)
	svc := newCheckoutService(repo)

	_, err := svc.CreateInvoice(context.Background(), 5, 9, CreateInvoiceInput{
		Lines: []LineInput{{ProductID: 1, Qty: 11}},
	})
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("err = %v, want ErrInsufficientStock", err)
	}

	var stockErr *InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("err %v does not carry stock detail", err)
	}
	if stockErr.Requested != 11 || stockErr.Available != 10 {
		t.Errorf("detail = %+v, want requested 11 available 10", stockErr)
	}
	if len(repo.invoices) != 0 {
		t.Error("rejected checkout must not persist an invoice")
	}
}

func TestCreateInvoice_OversellFlagsItem(t *testing.T) {
	p1, _ := twoProducts()
	repo := newMemRepo(p1)
	svc := newCheckoutService(repo)

	inv, err := svc.CreateInvoice(context.Background(), 5, 9, CreateInvoiceInput{
		AllowOversell: true,
		Lines:         []LineInput{{ProductID: 1, Qty: 12}},
	})
	if err != nil {
		t.Fatalf("CreateInvoice: %v", err)
	}
	if !inv.Items[0].Oversold {
		t.Error("item should carry the oversold flag")
	}
	if got := repo.products[1].Quantity; got != -2 {
		t.Errorf("stock = %v, want -2 after allowed oversell", got)
	}
}

func TestCreateInvoice_ResolvesCustomerByMobile(t *testing.T) {
	p1, _ := twoProducts()
	repo := newMemRepo(p1)
	svc := newCheckoutService(repo)

	inv, err := svc.CreateInvoice(context.Background(), 5, 9, CreateInvoiceInput{
		CustomerName:   "Asha",
		CustomerMobile: "9876543210",
		Lines:          []LineInput{{ProductID: 1, Qty: 1}},
	})
	if err != nil {
		t.Fatalf("CreateInvoice: %v", err)
	}
	if inv.CustomerID == nil {
		t.Fatal("customer should be resolved")
	}

	// Second checkout with the same mobile reuses the row.
	inv2, err := svc.CreateInvoice(context.Background(), 5, 9, CreateInvoiceInput{
		CustomerName:   "A.",
		CustomerMobile: "9876543210",
		Lines:          []LineInput{{ProductID: 1, Qty: 1}},
	})
	if err != nil {
		t.Fatalf("CreateInvoice: %v", err)
	}
	if *inv2.CustomerID != *inv.CustomerID {
		t.Errorf("customer ids differ: %d vs %d", *inv2.CustomerID, *inv.CustomerID)
	}
	if inv2.Number != 2 {
		t.Errorf("second invoice number = %d, want 2", inv2.Number)
	}
}

func TestCreateInvoice_LoyaltyAccrual(t *testing.T) {
	p1, _ := twoProducts()
	repo := newMemRepo(p1)
	svc := newCheckoutService(repo)

	cust, _ := repo.ResolveCustomer(5, "Asha", "9876543210")
	repo.loyalty[cust.ID] = &models.LoyaltyAccount{
		ID: 1, ShopID: 5, CustomerID: cust.ID, Points: 3, EarnRate: 100,
	}

	// 2 x 100 at 18% tax = 236 grand total, floor(236/100) = 2 points.
	_, err := svc.CreateInvoice(context.Background(), 5, 9, CreateInvoiceInput{
		CustomerName:   "Asha",
		CustomerMobile: "9876543210",
		Lines:          []LineInput{{ProductID: 1, Qty: 2}},
	})
	if err != nil {
		t.Fatalf("CreateInvoice: %v", err)
	}
	if got := repo.loyalty[cust.ID].Points; got != 5 {
		t.Errorf("points = %d, want 5", got)
	}
}

func TestCreateInvoice_PriceOverrideSnapshot(t *testing.T) {
	p1, _ := twoProducts()
	repo := newMemRepo(p1)
	svc := newCheckoutService(repo)

	price := 90.0
	rate := 5.0
	inv, err := svc.CreateInvoice(context.Background(), 5, 9, CreateInvoiceInput{
		Lines: []LineInput{{ProductID: 1, Qty: 1, UnitPrice: &price, TaxRate: &rate}},
	})
	if err != nil {
		t.Fatalf("CreateInvoice: %v", err)
	}
	item := inv.Items[0]
	if item.UnitPrice != 90 || item.TaxRate != 5 {
		t.Errorf("snapshot = %v/%v, want 90/5", item.UnitPrice, item.TaxRate)
	}
	if item.LineTotal != 94.5 {
		t.Errorf("line total = %v, want 94.5", item.LineTotal)
	}
}

func TestCreateInvoice_EmptyRejected(t *testing.T) {
	svc := newCheckoutService(newMemRepo())
	_, err := svc.CreateInvoice(context.Background(), 5, 9, CreateInvoiceInput{})
	if !errors.Is(err, ErrEmptyInvoice) {
		t.Fatalf("err = %v, want ErrEmptyInvoice", err)
	}
}

func TestCreateInvoice_UnknownProduct(t *testing.T) {
	svc := newCheckoutService(newMemRepo())
	_, err := svc.CreateInvoice(context.Background(), 5, 9, CreateInvoiceInput{
		Lines: []LineInput{{ProductID: 404, Qty: 1}},
	})
	if !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("err = %v, want ErrProductNotFound", err)
	}
}

func TestConcurrentCheckout_UniqueNumbers(t *testing.T) {
	repo := newMemRepo(&models.Product{ID: 1, ShopID: 5, Name: "Soap", Price: 10, Quantity: 100000})
	svc := newCheckoutService(repo)

	const workers = 32
	var wg sync.WaitGroup
	numbers := make(chan int64, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			inv, err := svc.CreateInvoice(context.Background(), 5, 9, CreateInvoiceInput{
				Lines: []LineInput{{ProductID: 1, Qty: 1}},
			})
			if err != nil {
				t.Errorf("CreateInvoice: %v", err)
				return
			}
			numbers <- inv.Number
		}()
	}
	wg.Wait()
	close(numbers)

	seen := map[int64]bool{}
	for n := range numbers {
		if seen[n] {
			t.Fatalf("duplicate invoice number %d", n)
		}
		seen[n] = true
	}
	if len(seen) != workers {
		t.Fatalf("allocated %d distinct numbers, want %d", len(seen), workers)
	}
}
