package billing

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/shopbill-app/shopbill/app/models"
	"gorm.io/gorm"
)

// Service reconciles gateway payments with local Payment rows and flips the
// subscription state transactionally. The synchronous verify path and the
// webhook path converge on the same activation transaction, and both treat
// an already-successful payment as a no-op so replays never double-extend
// the subscription.
type Service struct {
	cfg     Config
	gateway Gateway
	repo    Repository
	nowFunc func() time.Time
}

// NewService creates a billing service from injected collaborators.
func NewService(cfg Config, gateway Gateway, repo Repository) *Service {
	return &Service{cfg: cfg, gateway: gateway, repo: repo, nowFunc: time.Now}
}

// NewServiceFromDB wires the production gateway client and GORM repository.
func NewServiceFromDB(cfg Config, db *gorm.DB) *Service {
	return NewService(cfg, NewGateway(cfg), NewRepository(db))
}

// WithClock overrides the clock; tests use it to pin activation windows.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.nowFunc = now
	return s
}

// OrderDetails is what the checkout frontend needs to open the gateway
// widget for an order we just created.
type OrderDetails struct {
	OrderID     string `json:"order_id"`
	AmountPaise int64  `json:"amount"`
	Currency    string `json:"currency"`
	KeyID       string `json:"key"`
	PlanName    string `json:"plan_name"`
}

// CreateOrder creates a gateway order for the plan and records the local
// Payment row afterwards, so a gateway failure never leaves an orphan row.
func (s *Service) CreateOrder(ctx context.Context, userID uint, planID uint) (*OrderDetails, error) {
	plan, err := s.repo.GetActivePlan(planID)
	if err != nil {
		return nil, err
	}

	amount := plan.PricePaise()
	order, err := s.gateway.CreateOrder(ctx, amount, s.cfg.Currency, map[string]string{
		"user_id":   strconv.FormatUint(uint64(userID), 10),
		"plan_id":   strconv.FormatUint(uint64(plan.ID), 10),
		"plan_name": plan.Name,
	})
	if err != nil {
		return nil, err
	}

	payment := &models.Payment{
		UserID:      userID,
		PlanID:      &plan.ID,
		OrderID:     order.ID,
		AmountPaise: amount,
		Currency:    s.cfg.Currency,
		Status:      models.PaymentStatusPending,
	}
	if err := s.repo.CreatePayment(payment); err != nil {
		return nil, fmt.Errorf("record payment for order %s: %w", order.ID, err)
	}

	return &OrderDetails{
		OrderID:     order.ID,
		AmountPaise: amount,
		Currency:    s.cfg.Currency,
		KeyID:       s.cfg.KeyID,
		PlanName:    plan.Name,
	}, nil
}

// VerifyPayment handles the synchronous confirmation a client posts after
// checkout. The signature is checked before anything is loaded; on mismatch
// nothing changes. On match the payment flip and subscription activation
// commit in one transaction.
func (s *Service) VerifyPayment(ctx context.Context, userID uint, orderID, paymentID, signature string) (*models.UserSubscription, error) {
	_ = ctx
	if !VerifyPaymentSignature(orderID, paymentID, signature, s.cfg.KeySecret) {
		return nil, ErrSignatureMismatch
	}

	var result *models.UserSubscription
	err := s.repo.Transaction(func(tx Repository) error {
		payment, err := tx.GetPaymentByOrderIDForUser(orderID, userID)
		if err != nil {
			return err
		}
		sub, err := s.applyCapture(tx, payment, paymentID, signature)
		if err != nil {
			return err
		}
		result = sub
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// WebhookOutcome describes how a webhook event was handled.
type WebhookOutcome struct {
	Event     string
	OrderID   string
	Processed bool
	Duplicate bool
}

// HandleWebhookEvent processes an asynchronous gateway notification. The
// signature covers the raw body with the webhook-specific secret. Unknown
// order ids are swallowed after logging: the gateway only wants a 200.
func (s *Service) HandleWebhookEvent(ctx context.Context, rawBody []byte, signature string) (*WebhookOutcome, error) {
	_ = ctx
	if !VerifyWebhookSignature(rawBody, signature, s.cfg.WebhookSecret) {
		return nil, ErrSignatureMismatch
	}

	event, err := parseWebhookEvent(rawBody)
	if err != nil {
		return nil, err
	}
	outcome := &WebhookOutcome{Event: event.Event, OrderID: event.OrderID}

	// The gateway retries deliveries. Every payload is recorded under a
	// content-derived id, so a redelivery short-circuits before touching
	// the payment row.
	created, stored, err := s.repo.CreateWebhookEventIfNotExists(&models.PaymentWebhookEvent{
		EventID:     webhookEventID(rawBody),
		EventType:   event.Event,
		PayloadJSON: string(rawBody),
	})
	if err != nil {
		return nil, err
	}
	if !created {
		outcome.Duplicate = true
		return outcome, nil
	}

	processErr := s.processWebhookEvent(event, outcome)
	errMsg := ""
	if processErr != nil {
		errMsg = processErr.Error()
	}
	if err := s.repo.MarkWebhookProcessed(stored.ID, errMsg); err != nil {
		log.Printf("webhook: failed to mark event %d processed: %v", stored.ID, err)
	}
	return outcome, processErr
}

func (s *Service) processWebhookEvent(event *webhookEvent, outcome *WebhookOutcome) error {
	switch event.Event {
	case "payment.captured":
		err := s.repo.Transaction(func(tx Repository) error {
			payment, err := tx.GetPaymentByOrderID(event.OrderID)
			if err != nil {
				return err
			}
			if payment.Status == models.PaymentStatusSuccess {
				outcome.Duplicate = true
				return nil
			}
			if _, err := s.applyCapture(tx, payment, event.PaymentID, ""); err != nil {
				return err
			}
			outcome.Processed = true
			return nil
		})
		if err == ErrPaymentNotFound {
			log.Printf("webhook: no payment for order %s, ignoring", event.OrderID)
			return nil
		}
		return err

	case "payment.failed":
		payment, err := s.repo.GetPaymentByOrderID(event.OrderID)
		if err != nil {
			if err == ErrPaymentNotFound {
				log.Printf("webhook: no payment for order %s, ignoring", event.OrderID)
				return nil
			}
			return err
		}
		if payment.IsTerminal() {
			outcome.Duplicate = true
			return nil
		}
		payment.PaymentID = event.PaymentID
		payment.Status = models.PaymentStatusFailed
		if err := s.repo.SavePayment(payment); err != nil {
			return err
		}
		outcome.Processed = true
		return nil

	default:
		// Not an event we track; acknowledge and move on.
		return nil
	}
}

// ListPlans returns the active, purchasable plans
func (s *Service) ListPlans(ctx context.Context) ([]models.SubscriptionPlan, error) {
	_ = ctx
	return s.repo.ListActivePlans()
}

// PaymentHistory returns the user's payments, newest first
func (s *Service) PaymentHistory(ctx context.Context, userID uint) ([]models.Payment, error) {
	_ = ctx
	return s.repo.ListPaymentsByUser(userID)
}

// applyCapture flips a payment to SUCCESS and activates the paid plan on the
// owner's subscription. Must run inside a repository transaction. A payment
// already in SUCCESS returns the current subscription unchanged.
func (s *Service) applyCapture(tx Repository, payment *models.Payment, paymentID, signature string) (*models.UserSubscription, error) {
	sub, err := tx.GetOrCreateSubscription(payment.UserID)
	if err != nil {
		return nil, err
	}
	if payment.Status == models.PaymentStatusSuccess {
		return sub, nil
	}

	plan := payment.Plan
	if plan == nil {
		if payment.PlanID == nil {
			return nil, fmt.Errorf("payment %s has no plan reference", payment.OrderID)
		}
		if plan, err = tx.GetPlan(*payment.PlanID); err != nil {
			return nil, err
		}
	}

	payment.PaymentID = paymentID
	if signature != "" {
		payment.Signature = signature
	}
	payment.Status = models.PaymentStatusSuccess
	if err := tx.SavePayment(payment); err != nil {
		return nil, err
	}

	sub.ActivatePlan(plan, s.nowFunc())
	if err := tx.SaveSubscription(sub); err != nil {
		return nil, err
	}
	return sub, nil
}

type webhookEvent struct {
	Event     string
	OrderID   string
	PaymentID string
}

func parseWebhookEvent(raw []byte) (*webhookEvent, error) {
	var body struct {
		Event   string `json:"event"`
		Payload struct {
			Payment struct {
				Entity struct {
					ID      string `json:"id"`
					OrderID string `json:"order_id"`
				} `json:"entity"`
			} `json:"payment"`
		} `json:"payload"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("invalid webhook payload: %w", err)
	}
	if body.Event == "" {
		return nil, fmt.Errorf("invalid webhook payload: event missing")
	}
	return &webhookEvent{
		Event:     body.Event,
		OrderID:   body.Payload.Payment.Entity.OrderID,
		PaymentID: body.Payload.Payment.Entity.ID,
	}, nil
}

// webhookEventID derives a stable dedup id for a delivery. The gateway does
// not put an event id in the payload, so the body hash stands in for one.
func webhookEventID(raw []byte) string {
	sum := sha256.Sum256(raw)
	return "hash:" + hex.EncodeToString(sum[:])
}
