package billing

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopbill-app/shopbill/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	plans         map[uint]*models.SubscriptionPlan
	payments      map[string]*models.Payment
	subscriptions map[uint]*models.UserSubscription
	webhookEvents map[string]*models.PaymentWebhookEvent
	nextID        uint
}

func newFakeRepo(plans ...*models.SubscriptionPlan) *fakeRepo {
	r := &fakeRepo{
		plans:         map[uint]*models.SubscriptionPlan{},
		payments:      map[string]*models.Payment{},
		subscriptions: map[uint]*models.UserSubscription{},
		webhookEvents: map[string]*models.PaymentWebhookEvent{},
		nextID:        1,
	}
	for _, p := range plans {
		r.plans[p.ID] = p
	}
	return r
}

func (r *fakeRepo) GetActivePlan(id uint) (*models.SubscriptionPlan, error) {
	p, ok := r.plans[id]
	if !ok || !p.IsActive {
		return nil, ErrPlanNotFound
	}
	return p, nil
}

func (r *fakeRepo) GetPlan(id uint) (*models.SubscriptionPlan, error) {
	p, ok := r.plans[id]
	if !ok {
		return nil, ErrPlanNotFound
	}
	return p, nil
}

func (r *fakeRepo) GetPlanByType(planType string) (*models.SubscriptionPlan, error) {
	for _, p := range r.plans {
		if p.PlanType == planType && p.IsActive {
			return p, nil
		}
	}
	return nil, ErrPlanNotFound
}

func (r *fakeRepo) ListActivePlans() ([]models.SubscriptionPlan, error) {
	var out []models.SubscriptionPlan
	for _, p := range r.plans {
		if p.IsActive {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakeRepo) CreatePayment(p *models.Payment) error {
	if _, exists := r.payments[p.OrderID]; exists {
		return fmt.Errorf("duplicate order id %s", p.OrderID)
	}
	p.ID = r.nextID
	r.nextID++
	cp := *p
	r.payments[p.OrderID] = &cp
	return nil
}

func (r *fakeRepo) SavePayment(p *models.Payment) error {
	cp := *p
	r.payments[p.OrderID] = &cp
	return nil
}

func (r *fakeRepo) GetPaymentByOrderID(orderID string) (*models.Payment, error) {
	p, ok := r.payments[orderID]
	if !ok {
		return nil, ErrPaymentNotFound
	}
	cp := *p
	if cp.PlanID != nil {
		cp.Plan = r.plans[*cp.PlanID]
	}
	return &cp, nil
}

func (r *fakeRepo) GetPaymentByOrderIDForUser(orderID string, userID uint) (*models.Payment, error) {
	p, err := r.GetPaymentByOrderID(orderID)
	if err != nil {
		return nil, err
	}
	if p.UserID != userID {
		return nil, ErrPaymentNotFound
	}
	return p, nil
}

func (r *fakeRepo) ListPaymentsByUser(userID uint) ([]models.Payment, error) {
	var out []models.Payment
	for _, p := range r.payments {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakeRepo) GetOrCreateSubscription(userID uint) (*models.UserSubscription, error) {
	if s, ok := r.subscriptions[userID]; ok {
		return s, nil
	}
	s := &models.UserSubscription{ID: r.nextID, UserID: userID}
	r.nextID++
	r.subscriptions[userID] = s
	return s, nil
}

func (r *fakeRepo) SaveSubscription(sub *models.UserSubscription) error {
	r.subscriptions[sub.UserID] = sub
	return nil
}

func (r *fakeRepo) CreateWebhookEventIfNotExists(event *models.PaymentWebhookEvent) (bool, *models.PaymentWebhookEvent, error) {
	if stored, ok := r.webhookEvents[event.EventID]; ok {
		return false, stored, nil
	}
	event.ID = r.nextID
	r.nextID++
	r.webhookEvents[event.EventID] = event
	return true, event, nil
}

func (r *fakeRepo) MarkWebhookProcessed(id uint, processingError string) error {
	for _, e := range r.webhookEvents {
		if e.ID == id {
			now := time.Now()
			e.ProcessedAt = &now
			e.ProcessingError = processingError
			return nil
		}
	}
	return fmt.Errorf("webhook event %d not found", id)
}

func (r *fakeRepo) Transaction(fn func(Repository) error) error {
	return fn(r)
}

type fakeGateway struct {
	nextOrderID string
	err         error
	calls       int
	lastAmount  int64
}

func (g *fakeGateway) CreateOrder(_ context.Context, amountPaise int64, currency string, _ map[string]string) (*Order, error) {
	g.calls++
	g.lastAmount = amountPaise
	if g.err != nil {
		return nil, g.err
	}
	return &Order{ID: g.nextOrderID, AmountPaise: amountPaise, Currency: currency, Status: "created"}, nil
}

func testConfig() Config {
	return Config{
		KeyID:         "rzp_test_key",
		KeySecret:     "S",
		WebhookSecret: "W",
		Currency:      "INR",
	}
}

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func testPlan() *models.SubscriptionPlan {
	return &models.SubscriptionPlan{
		ID:           7,
		Name:         "Pro Monthly",
		PlanType:     models.PlanTypePro,
		Duration:     models.PlanDurationMonthly,
		Price:        499.99,
		DurationDays: 30,
		IsActive:     true,
		Features:     models.FeatureSet{"billing": true},
	}
}

func newTestService(repo Repository, gw Gateway) *Service {
	return NewService(testConfig(), gw, repo).WithClock(func() time.Time { return testNow })
}

func TestCreateOrder(t *testing.T) {
	repo := newFakeRepo(testPlan())
	gw := &fakeGateway{nextOrderID: "order_abc"}
	svc := newTestService(repo, gw)

	details, err := svc.CreateOrder(context.Background(), 42, 7)
	require.NoError(t, err)

	// 499.99 * 100 truncated.
	assert.Equal(t, int64(49999), details.AmountPaise)
	assert.Equal(t, "order_abc", details.OrderID)
	assert.Equal(t, "INR", details.Currency)
	assert.Equal(t, "rzp_test_key", details.KeyID)

	p, err := repo.GetPaymentByOrderID("order_abc")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPending, p.Status)
	assert.Equal(t, uint(42), p.UserID)
}

func TestCreateOrder_UnknownPlan(t *testing.T) {
	svc := newTestService(newFakeRepo(), &fakeGateway{nextOrderID: "order_x"})

	_, err := svc.CreateOrder(context.Background(), 42, 99)
	assert.ErrorIs(t, err, ErrPlanNotFound)
}

func TestCreateOrder_GatewayFailureLeavesNoRow(t *testing.T) {
	repo := newFakeRepo(testPlan())
	gw := &fakeGateway{err: errors.New("connection refused")}
	svc := newTestService(repo, gw)

	_, err := svc.CreateOrder(context.Background(), 42, 7)
	var gwErr *GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Empty(t, repo.payments, "gateway failure must not leave a payment row")
}

func TestVerifyPayment_ActivatesPlanTransactionally(t *testing.T) {
	repo := newFakeRepo(testPlan())
	svc := newTestService(repo, &fakeGateway{nextOrderID: "order_1"})

	_, err := svc.CreateOrder(context.Background(), 42, 7)
	require.NoError(t, err)

	sig := PaymentSignature("order_1", "pay_1", "S")
	sub, err := svc.VerifyPayment(context.Background(), 42, "order_1", "pay_1", sig)
	require.NoError(t, err)

	assert.True(t, sub.Active)
	require.NotNil(t, sub.EndDate)
	assert.Equal(t, testNow.Add(30*24*time.Hour), *sub.EndDate)

	p, err := repo.GetPaymentByOrderID("order_1")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusSuccess, p.Status)
	assert.Equal(t, "pay_1", p.PaymentID)
}

func TestVerifyPayment_BadSignatureChangesNothing(t *testing.T) {
	repo := newFakeRepo(testPlan())
	svc := newTestService(repo, &fakeGateway{nextOrderID: "order_1"})

	_, err := svc.CreateOrder(context.Background(), 42, 7)
	require.NoError(t, err)

	_, err = svc.VerifyPayment(context.Background(), 42, "order_1", "pay_1", "deadbeef")
	assert.ErrorIs(t, err, ErrSignatureMismatch)

	p, _ := repo.GetPaymentByOrderID("order_1")
	assert.Equal(t, models.PaymentStatusPending, p.Status)
	assert.Empty(t, repo.subscriptions)
}

func TestVerifyPayment_WrongUserIsNotFound(t *testing.T) {
	repo := newFakeRepo(testPlan())
	svc := newTestService(repo, &fakeGateway{nextOrderID: "order_1"})

	_, err := svc.CreateOrder(context.Background(), 42, 7)
	require.NoError(t, err)

	sig := PaymentSignature("order_1", "pay_1", "S")
	_, err = svc.VerifyPayment(context.Background(), 43, "order_1", "pay_1", sig)
	assert.ErrorIs(t, err, ErrPaymentNotFound)
}

func webhookBody(t *testing.T, event, orderID, paymentID string) []byte {
	t.Helper()
	body := map[string]interface{}{
		"event": event,
		"payload": map[string]interface{}{
			"payment": map[string]interface{}{
				"entity": map[string]interface{}{
					"id":       paymentID,
					"order_id": orderID,
				},
			},
		},
	}
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	return raw
}

func webhookSig(raw []byte) string {
	mac := hmac.New(sha256.New, []byte("W"))
	mac.Write(raw)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestWebhook_CapturedActivatesSubscription(t *testing.T) {
	repo := newFakeRepo(testPlan())
	svc := newTestService(repo, &fakeGateway{nextOrderID: "order_1"})

	_, err := svc.CreateOrder(context.Background(), 42, 7)
	require.NoError(t, err)

	raw := webhookBody(t, "payment.captured", "order_1", "pay_1")
	outcome, err := svc.HandleWebhookEvent(context.Background(), raw, webhookSig(raw))
	require.NoError(t, err)
	assert.True(t, outcome.Processed)

	sub := repo.subscriptions[42]
	require.NotNil(t, sub)
	assert.True(t, sub.Active)
}

func TestWebhook_ReplayDoesNotExtendSubscription(t *testing.T) {
	repo := newFakeRepo(testPlan())
	svc := newTestService(repo, &fakeGateway{nextOrderID: "order_1"})

	_, err := svc.CreateOrder(context.Background(), 42, 7)
	require.NoError(t, err)

	raw := webhookBody(t, "payment.captured", "order_1", "pay_1")
	_, err = svc.HandleWebhookEvent(context.Background(), raw, webhookSig(raw))
	require.NoError(t, err)

	firstEnd := *repo.subscriptions[42].EndDate

	// Move the clock forward and replay the same event.
	svc.WithClock(func() time.Time { return testNow.Add(48 * time.Hour) })
	outcome, err := svc.HandleWebhookEvent(context.Background(), raw, webhookSig(raw))
	require.NoError(t, err)
	assert.True(t, outcome.Duplicate)
	assert.False(t, outcome.Processed)

	assert.Equal(t, firstEnd, *repo.subscriptions[42].EndDate, "replay must not extend the window")
}

func TestWebhook_VerifyThenWebhookIsNoOp(t *testing.T) {
	repo := newFakeRepo(testPlan())
	svc := newTestService(repo, &fakeGateway{nextOrderID: "order_1"})

	_, err := svc.CreateOrder(context.Background(), 42, 7)
	require.NoError(t, err)

	sig := PaymentSignature("order_1", "pay_1", "S")
	sub, err := svc.VerifyPayment(context.Background(), 42, "order_1", "pay_1", sig)
	require.NoError(t, err)
	firstEnd := *sub.EndDate

	raw := webhookBody(t, "payment.captured", "order_1", "pay_1")
	outcome, err := svc.HandleWebhookEvent(context.Background(), raw, webhookSig(raw))
	require.NoError(t, err)
	assert.True(t, outcome.Duplicate)
	assert.Equal(t, firstEnd, *repo.subscriptions[42].EndDate)
}

func TestWebhook_FailedMarksPaymentOnly(t *testing.T) {
	repo := newFakeRepo(testPlan())
	svc := newTestService(repo, &fakeGateway{nextOrderID: "order_1"})

	_, err := svc.CreateOrder(context.Background(), 42, 7)
	require.NoError(t, err)

	raw := webhookBody(t, "payment.failed", "order_1", "pay_1")
	outcome, err := svc.HandleWebhookEvent(context.Background(), raw, webhookSig(raw))
	require.NoError(t, err)
	assert.True(t, outcome.Processed)

	p, _ := repo.GetPaymentByOrderID("order_1")
	assert.Equal(t, models.PaymentStatusFailed, p.Status)
	assert.Empty(t, repo.subscriptions, "failed payment must not touch the subscription")
}

func TestWebhook_UnknownOrderIsSwallowed(t *testing.T) {
	repo := newFakeRepo(testPlan())
	svc := newTestService(repo, &fakeGateway{})

	raw := webhookBody(t, "payment.captured", "order_missing", "pay_1")
	outcome, err := svc.HandleWebhookEvent(context.Background(), raw, webhookSig(raw))
	require.NoError(t, err, "unknown order ids are logged, not surfaced")
	assert.False(t, outcome.Processed)
}

func TestWebhook_BadSignatureRejected(t *testing.T) {
	repo := newFakeRepo(testPlan())
	svc := newTestService(repo, &fakeGateway{})

	raw := webhookBody(t, "payment.captured", "order_1", "pay_1")
	_, err := svc.HandleWebhookEvent(context.Background(), raw, "deadbeef")
	assert.ErrorIs(t, err, ErrSignatureMismatch)
}

func TestWebhook_DeliveryIsRecordedOnce(t *testing.T) {
	repo := newFakeRepo(testPlan())
	svc := newTestService(repo, &fakeGateway{nextOrderID: "order_1"})

	_, err := svc.CreateOrder(context.Background(), 42, 7)
	require.NoError(t, err)

	raw := webhookBody(t, "payment.captured", "order_1", "pay_1")
	_, err = svc.HandleWebhookEvent(context.Background(), raw, webhookSig(raw))
	require.NoError(t, err)
	_, err = svc.HandleWebhookEvent(context.Background(), raw, webhookSig(raw))
	require.NoError(t, err)

	require.Len(t, repo.webhookEvents, 1)
	for _, e := range repo.webhookEvents {
		assert.Equal(t, "payment.captured", e.EventType)
		assert.Equal(t, string(raw), e.PayloadJSON)
		assert.NotNil(t, e.ProcessedAt)
		assert.Empty(t, e.ProcessingError)
	}
}

func TestWebhook_IgnoredEventTypes(t *testing.T) {
	repo := newFakeRepo(testPlan())
	svc := newTestService(repo, &fakeGateway{})

	raw := webhookBody(t, "refund.created", "order_1", "pay_1")
	outcome, err := svc.HandleWebhookEvent(context.Background(), raw, webhookSig(raw))
	require.NoError(t, err)
	assert.False(t, outcome.Processed)
}
