package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/shopbill-app/shopbill/app/models"
	"github.com/shopbill-app/shopbill/app/repository"
	"github.com/shopbill-app/shopbill/internal/pkg/cache"
	"github.com/shopbill-app/shopbill/internal/pkg/entitlements"
	"github.com/shopbill-app/shopbill/internal/pkg/usercontext"
)

const subscriptionCacheTTL = 60 * time.Second

type subscriptionStatus struct {
	Valid          bool              `json:"valid"`
	PlanType       string            `json:"plan_type"`
	TrialActive    bool              `json:"trial_active"`
	TrialUsed      bool              `json:"trial_used"`
	InGrace        bool              `json:"in_grace"`
	AllowedByAdmin bool              `json:"allowed_by_admin"`
	DaysRemaining  int               `json:"days_remaining"`
	Features       models.FeatureSet `json:"features"`
}

func subscriptionCacheKey(userID uint) string {
	return fmt.Sprintf("subscription:status:%d", userID)
}

func invalidateSubscriptionCache(userID uint) {
	if err := cache.Delete(subscriptionCacheKey(userID)); err != nil {
		log.Printf("failed to invalidate subscription cache for user %d: %v", userID, err)
	}
}

// HandleSubscriptionStatus returns the caller's entitlement snapshot. The
// result is cached briefly; mutations through trial start or payment clear it.
func HandleSubscriptionStatus(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)

	if raw, err := cache.Get(subscriptionCacheKey(userID)); err == nil && raw != "" {
		var status subscriptionStatus
		if err := json.Unmarshal([]byte(raw), &status); err == nil {
			return c.JSON(status)
		}
	}

	sub, err := repository.GetGlobalFactory().GetSubscriptionRepository().GetOrCreate(userID)
	if err != nil {
		log.Printf("subscription lookup failed for user %d: %v", userID, err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load subscription")
	}

	now := time.Now()
	status := subscriptionStatus{
		Valid:          entitlements.IsValid(sub, now),
		PlanType:       sub.PlanType(),
		TrialActive:    sub.IsTrialActive(now),
		TrialUsed:      sub.TrialUsed,
		InGrace:        sub.InGracePeriod(now),
		AllowedByAdmin: sub.AllowedByAdmin,
		DaysRemaining:  sub.DaysRemaining(now),
		Features:       entitlements.Features(sub, now),
	}

	if encoded, err := json.Marshal(status); err == nil {
		if err := cache.Set(subscriptionCacheKey(userID), string(encoded), subscriptionCacheTTL); err != nil {
			log.Printf("failed to cache subscription status for user %d: %v", userID, err)
		}
	}
	return c.JSON(status)
}

// HandleStartTrial begins the one-shot free trial
func HandleStartTrial(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)
	factory := repository.GetGlobalFactory()

	trialPlan, err := factory.GetPlanRepository().GetByType(models.PlanTypeFree)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "No trial plan is configured")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load trial plan")
	}

	subRepo := factory.GetSubscriptionRepository()
	sub, err := subRepo.GetOrCreate(userID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load subscription")
	}

	if err := sub.StartTrial(trialPlan, time.Now()); err != nil {
		if errors.Is(err, models.ErrTrialAlreadyUsed) {
			return jsonError(c, fiber.StatusConflict, "trial_already_used", "The free trial has already been used")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to start trial")
	}
	if err := subRepo.Update(sub); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to start trial")
	}

	invalidateSubscriptionCache(userID)
	return c.JSON(fiber.Map{
		"message":        "Trial started",
		"trial_end_date": sub.TrialEndDate,
	})
}
