package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/shopbill-app/shopbill/app/models"
	"github.com/shopbill-app/shopbill/app/repository"
)

// AdminController handles cross-tenant administration using the repository pattern
type AdminController struct {
	repos *repository.Repositories
}

var adminController *AdminController

// NewAdminController creates a new admin controller with repository dependencies
func NewAdminController(repos *repository.Repositories) *AdminController {
	return &AdminController{repos: repos}
}

// InitializeAdminController wires the package-level admin controller
func InitializeAdminController() {
	adminController = NewAdminController(repository.GetGlobalRepositories())
}

// GetAdminController returns the initialized admin controller
func GetAdminController() *AdminController {
	if adminController == nil {
		panic("Admin controller not initialized. Call InitializeAdminController first.")
	}
	return adminController
}

// HandleDashboard returns platform-wide counts
func (ac *AdminController) HandleDashboard(c *fiber.Ctx) error {
	totalShops, err := ac.repos.Shop.Count()
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to get shop count")
	}
	totalUsers, err := ac.repos.User.Count()
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to get user count")
	}
	return c.JSON(fiber.Map{
		"total_shops": totalShops,
		"total_users": totalUsers,
	})
}

// HandleListShops lists or searches all shops
func (ac *AdminController) HandleListShops(c *fiber.Ctx) error {
	if q := c.Query("q"); q != "" {
		shops, err := ac.repos.Shop.Search(q)
		if err != nil {
			return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to search shops")
		}
		return c.JSON(fiber.Map{"shops": shops})
	}

	offset, limit := pagination(c)
	shops, err := ac.repos.Shop.List(offset, limit)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to list shops")
	}
	count, err := ac.repos.Shop.Count()
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to list shops")
	}
	return c.JSON(fiber.Map{"shops": shops, "total": count})
}

// HandleGetShop returns one shop with its users
func (ac *AdminController) HandleGetShop(c *fiber.Ctx) error {
	id, err := paramUint(c, "id")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", err.Error())
	}
	shop, err := ac.repos.Shop.GetByID(id)
	if err != nil {
		return notFoundOrInternal(c, err, "shop")
	}
	users, err := ac.repos.User.ListByShop(shop.ID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load shop users")
	}
	return c.JSON(fiber.Map{"shop": shop, "users": users})
}

type subscriptionOverrideRequest struct {
	AllowedByAdmin bool `json:"allowed_by_admin"`
}

// HandleSubscriptionOverride toggles the admin bypass on a user's subscription
func (ac *AdminController) HandleSubscriptionOverride(c *fiber.Ctx) error {
	userID, err := paramUint(c, "id")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", err.Error())
	}

	var req subscriptionOverrideRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}

	if _, err := ac.repos.User.GetByID(userID); err != nil {
		return notFoundOrInternal(c, err, "user")
	}
	sub, err := ac.repos.Subscription.GetOrCreate(userID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load subscription")
	}

	sub.AllowedByAdmin = req.AllowedByAdmin
	if err := ac.repos.Subscription.Update(sub); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to update subscription")
	}

	invalidateSubscriptionCache(userID)
	return c.JSON(sub)
}

type planRequest struct {
	Name         string            `json:"name" validate:"required,max=100"`
	PlanType     string            `json:"plan_type" validate:"required,oneof=FREE BASIC PRO PREMIUM"`
	Duration     string            `json:"duration" validate:"required,oneof=MONTHLY YEARLY"`
	Price        float64           `json:"price" validate:"gte=0"`
	DurationDays int               `json:"duration_days" validate:"gt=0"`
	Features     models.FeatureSet `json:"features"`
	IsActive     *bool             `json:"is_active"`
}

// HandleCreatePlan adds a subscription plan
func (ac *AdminController) HandleCreatePlan(c *fiber.Ctx) error {
	var req planRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return jsonValidationError(c, err)
	}

	plan := &models.SubscriptionPlan{
		Name:         req.Name,
		PlanType:     req.PlanType,
		Duration:     req.Duration,
		Price:        req.Price,
		DurationDays: req.DurationDays,
		Features:     req.Features,
		IsActive:     true,
	}
	if req.IsActive != nil {
		plan.IsActive = *req.IsActive
	}
	if err := ac.repos.Plan.Create(plan); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to create plan")
	}
	return c.Status(fiber.StatusCreated).JSON(plan)
}

// HandleListAllPlans lists every plan, active or not
func (ac *AdminController) HandleListAllPlans(c *fiber.Ctx) error {
	plans, err := ac.repos.Plan.List()
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to list plans")
	}
	return c.JSON(fiber.Map{"plans": plans})
}

// HandleUpdatePlan updates a subscription plan
func (ac *AdminController) HandleUpdatePlan(c *fiber.Ctx) error {
	id, err := paramUint(c, "id")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", err.Error())
	}
	plan, err := ac.repos.Plan.GetByID(id)
	if err != nil {
		return notFoundOrInternal(c, err, "plan")
	}

	var req planRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return jsonValidationError(c, err)
	}

	plan.Name = req.Name
	plan.PlanType = req.PlanType
	plan.Duration = req.Duration
	plan.Price = req.Price
	plan.DurationDays = req.DurationDays
	if req.Features != nil {
		plan.Features = req.Features
	}
	if req.IsActive != nil {
		plan.IsActive = *req.IsActive
	}
	if err := ac.repos.Plan.Update(plan); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to update plan")
	}
	return c.JSON(plan)
}

// HandleDeletePlan removes a subscription plan
func (ac *AdminController) HandleDeletePlan(c *fiber.Ctx) error {
	id, err := paramUint(c, "id")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", err.Error())
	}
	if _, err := ac.repos.Plan.GetByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "Plan not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load plan")
	}
	if err := ac.repos.Plan.Delete(id); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to delete plan")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
