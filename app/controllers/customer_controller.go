package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/shopbill-app/shopbill/app/models"
	"github.com/shopbill-app/shopbill/app/repository"
	"github.com/shopbill-app/shopbill/internal/pkg/usercontext"
)

type customerRequest struct {
	Name    string `json:"name" validate:"required,max=120"`
	Mobile  string `json:"mobile" validate:"required,max=20"`
	Email   string `json:"email" validate:"omitempty,email"`
	Address string `json:"address"`
}

// HandleCreateCustomer adds a customer to the caller's shop
func HandleCreateCustomer(c *fiber.Ctx) error {
	var req customerRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return jsonValidationError(c, err)
	}

	shopID := usercontext.GetShopID(c)
	repo := repository.GetGlobalFactory().GetCustomerRepository()
	if _, err := repo.GetByMobile(shopID, req.Mobile); err == nil {
		return jsonError(c, fiber.StatusConflict, "mobile_taken", "A customer with this mobile number already exists")
	}

	customer := &models.Customer{
		ShopID:  shopID,
		Name:    req.Name,
		Mobile:  req.Mobile,
		Email:   req.Email,
		Address: req.Address,
	}
	if err := repo.Create(customer); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to create customer")
	}
	return c.Status(fiber.StatusCreated).JSON(customer)
}

// HandleListCustomers lists the shop's customers, optionally filtered
func HandleListCustomers(c *fiber.Ctx) error {
	shopID := usercontext.GetShopID(c)
	repo := repository.GetGlobalFactory().GetCustomerRepository()

	if q := c.Query("q"); q != "" {
		customers, err := repo.Search(shopID, q)
		if err != nil {
			return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to search customers")
		}
		return c.JSON(fiber.Map{"customers": customers})
	}

	offset, limit := pagination(c)
	customers, err := repo.List(shopID, offset, limit)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to list customers")
	}
	return c.JSON(fiber.Map{"customers": customers})
}

// HandleGetCustomer fetches one customer with their loyalty balance
func HandleGetCustomer(c *fiber.Ctx) error {
	id, err := paramUint(c, "id")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", err.Error())
	}
	shopID := usercontext.GetShopID(c)
	repo := repository.GetGlobalFactory().GetCustomerRepository()

	customer, err := repo.GetByID(shopID, id)
	if err != nil {
		return notFoundOrInternal(c, err, "customer")
	}

	response := fiber.Map{"customer": customer}
	if acc, err := repo.GetLoyaltyAccount(shopID, customer.ID); err == nil {
		response["loyalty"] = acc
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load loyalty account")
	}
	return c.JSON(response)
}

// HandleUpdateCustomer updates customer contact details
func HandleUpdateCustomer(c *fiber.Ctx) error {
	id, err := paramUint(c, "id")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", err.Error())
	}
	shopID := usercontext.GetShopID(c)
	repo := repository.GetGlobalFactory().GetCustomerRepository()

	customer, err := repo.GetByID(shopID, id)
	if err != nil {
		return notFoundOrInternal(c, err, "customer")
	}

	var req customerRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return jsonValidationError(c, err)
	}

	customer.Name = req.Name
	customer.Mobile = req.Mobile
	customer.Email = req.Email
	customer.Address = req.Address
	if err := repo.Update(customer); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to update customer")
	}
	return c.JSON(customer)
}

// HandleDeleteCustomer removes a customer from the shop
func HandleDeleteCustomer(c *fiber.Ctx) error {
	id, err := paramUint(c, "id")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", err.Error())
	}
	shopID := usercontext.GetShopID(c)
	repo := repository.GetGlobalFactory().GetCustomerRepository()
	if _, err := repo.GetByID(shopID, id); err != nil {
		return notFoundOrInternal(c, err, "customer")
	}
	if err := repo.Delete(shopID, id); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to delete customer")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleEnableLoyalty creates or updates the customer's loyalty account
func HandleEnableLoyalty(c *fiber.Ctx) error {
	id, err := paramUint(c, "id")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", err.Error())
	}
	shopID := usercontext.GetShopID(c)
	repo := repository.GetGlobalFactory().GetCustomerRepository()

	customer, err := repo.GetByID(shopID, id)
	if err != nil {
		return notFoundOrInternal(c, err, "customer")
	}

	var req struct {
		EarnRate    uint    `json:"earn_rate" validate:"omitempty,gt=0"`
		RedeemValue float64 `json:"redeem_value" validate:"omitempty,gt=0"`
	}
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return jsonValidationError(c, err)
	}

	acc, err := repo.GetLoyaltyAccount(shopID, customer.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		acc = &models.LoyaltyAccount{ShopID: shopID, CustomerID: customer.ID, EarnRate: 100, RedeemValue: 1}
	} else if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load loyalty account")
	}
	if req.EarnRate > 0 {
		acc.EarnRate = req.EarnRate
	}
	if req.RedeemValue > 0 {
		acc.RedeemValue = req.RedeemValue
	}
	if err := repo.SaveLoyaltyAccount(acc); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to save loyalty account")
	}
	return c.JSON(acc)
}
