package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/shopbill-app/shopbill/app/models"
	"github.com/shopbill-app/shopbill/app/repository"
	"github.com/shopbill-app/shopbill/internal/pkg/usercontext"
)

type taxProfileRequest struct {
	Name string  `json:"name" validate:"required,max=100"`
	Rate float64 `json:"rate" validate:"gte=0,lte=100"`
}

// HandleCreateTaxProfile adds a named tax rate to the shop
func HandleCreateTaxProfile(c *fiber.Ctx) error {
	var req taxProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return jsonValidationError(c, err)
	}

	profile := &models.TaxProfile{
		ShopID: usercontext.GetShopID(c),
		Name:   req.Name,
		Rate:   req.Rate,
	}
	if err := repository.GetGlobalFactory().GetTaxProfileRepository().Create(profile); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to create tax profile")
	}
	return c.Status(fiber.StatusCreated).JSON(profile)
}

// HandleListTaxProfiles lists the shop's tax profiles
func HandleListTaxProfiles(c *fiber.Ctx) error {
	profiles, err := repository.GetGlobalFactory().GetTaxProfileRepository().
		List(usercontext.GetShopID(c))
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to list tax profiles")
	}
	return c.JSON(fiber.Map{"tax_profiles": profiles})
}

// HandleUpdateTaxProfile updates a tax profile
func HandleUpdateTaxProfile(c *fiber.Ctx) error {
	id, err := paramUint(c, "id")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", err.Error())
	}
	repo := repository.GetGlobalFactory().GetTaxProfileRepository()
	profile, err := repo.GetByID(usercontext.GetShopID(c), id)
	if err != nil {
		return notFoundOrInternal(c, err, "tax profile")
	}

	var req taxProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return jsonValidationError(c, err)
	}

	profile.Name = req.Name
	profile.Rate = req.Rate
	if err := repo.Update(profile); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to update tax profile")
	}
	return c.JSON(profile)
}

// HandleDeleteTaxProfile removes a tax profile
func HandleDeleteTaxProfile(c *fiber.Ctx) error {
	id, err := paramUint(c, "id")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", err.Error())
	}
	shopID := usercontext.GetShopID(c)
	repo := repository.GetGlobalFactory().GetTaxProfileRepository()
	if _, err := repo.GetByID(shopID, id); err != nil {
		return notFoundOrInternal(c, err, "tax profile")
	}
	if err := repo.Delete(shopID, id); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to delete tax profile")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
