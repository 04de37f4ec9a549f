package controllers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/shopbill-app/shopbill/internal/pkg/billing"
	"github.com/shopbill-app/shopbill/internal/pkg/database"
	"github.com/shopbill-app/shopbill/internal/pkg/usercontext"
)

var billingService *billing.Service

// InitializeBillingController wires the payment service onto the database and
// the gateway credentials from the environment.
func InitializeBillingController() {
	billingService = billing.NewServiceFromDB(billing.NewConfigFromEnv(), database.GetDB())
}

// HandleListPlans returns the purchasable subscription plans
func HandleListPlans(c *fiber.Ctx) error {
	plans, err := billingService.ListPlans(c.UserContext())
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to list plans")
	}
	return c.JSON(fiber.Map{"plans": plans})
}

type createOrderRequest struct {
	PlanID uint `json:"plan_id" validate:"required"`
}

// HandleCreateOrder creates a gateway order for the chosen plan
func HandleCreateOrder(c *fiber.Ctx) error {
	var req createOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return jsonValidationError(c, err)
	}

	details, err := billingService.CreateOrder(c.UserContext(), usercontext.GetUserID(c), req.PlanID)
	if err != nil {
		if errors.Is(err, billing.ErrPlanNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "Plan not found")
		}
		var gwErr *billing.GatewayError
		if errors.As(err, &gwErr) {
			log.Printf("gateway order creation failed: %v", err)
			return jsonError(c, fiber.StatusBadGateway, "gateway_error", "Payment gateway is unavailable")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Order creation failed")
	}
	return c.Status(fiber.StatusCreated).JSON(details)
}

type verifyPaymentRequest struct {
	OrderID   string `json:"order_id" validate:"required"`
	PaymentID string `json:"payment_id" validate:"required"`
	Signature string `json:"signature" validate:"required"`
}

// HandleVerifyPayment reconciles a synchronous payment confirmation
func HandleVerifyPayment(c *fiber.Ctx) error {
	var req verifyPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return jsonValidationError(c, err)
	}

	userID := usercontext.GetUserID(c)
	sub, err := billingService.VerifyPayment(c.UserContext(), userID, req.OrderID, req.PaymentID, req.Signature)
	if err != nil {
		switch {
		case errors.Is(err, billing.ErrSignatureMismatch):
			return jsonError(c, fiber.StatusBadRequest, "signature_mismatch", "Payment signature verification failed")
		case errors.Is(err, billing.ErrPaymentNotFound):
			return jsonError(c, fiber.StatusNotFound, "not_found", "Order not found")
		default:
			log.Printf("payment verification failed for user %d: %v", userID, err)
			return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Payment verification failed")
		}
	}

	invalidateSubscriptionCache(userID)
	return c.JSON(fiber.Map{
		"message":      "Payment verified",
		"subscription": sub,
	})
}

// HandlePaymentHistory lists the caller's payments
func HandlePaymentHistory(c *fiber.Ctx) error {
	payments, err := billingService.PaymentHistory(c.UserContext(), usercontext.GetUserID(c))
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load payment history")
	}
	return c.JSON(fiber.Map{"payments": payments})
}

// HandlePaymentWebhook receives asynchronous gateway notifications. The
// endpoint is unauthenticated; the body signature is the only credential.
// The gateway expects a 200 for anything it should not retry.
func HandlePaymentWebhook(c *fiber.Ctx) error {
	signature := c.Get("X-Razorpay-Signature")
	outcome, err := billingService.HandleWebhookEvent(c.UserContext(), c.Body(), signature)
	if err != nil {
		if errors.Is(err, billing.ErrSignatureMismatch) {
			return jsonError(c, fiber.StatusBadRequest, "signature_mismatch", "Webhook signature verification failed")
		}
		log.Printf("webhook processing failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Webhook processing failed")
	}
	return c.JSON(fiber.Map{
		"status":    "ok",
		"event":     outcome.Event,
		"processed": outcome.Processed,
		"duplicate": outcome.Duplicate,
	})
}
