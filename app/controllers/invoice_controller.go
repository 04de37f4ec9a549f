package controllers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/shopbill-app/shopbill/app/repository"
	"github.com/shopbill-app/shopbill/internal/pkg/database"
	"github.com/shopbill-app/shopbill/internal/pkg/invoicing"
	"github.com/shopbill-app/shopbill/internal/pkg/usercontext"
)

var invoicingService *invoicing.Service

// InitializeInvoiceController wires the checkout service onto the database
func InitializeInvoiceController() {
	invoicingService = invoicing.NewServiceFromDB(database.GetDB())
}

// HandleCreateInvoice runs a checkout for the caller's shop
func HandleCreateInvoice(c *fiber.Ctx) error {
	var input invoicing.CreateInvoiceInput
	if err := c.BodyParser(&input); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}
	if err := validate.Struct(&input); err != nil {
		return jsonValidationError(c, err)
	}

	userCtx := usercontext.GetUserContext(c)
	invoice, err := invoicingService.CreateInvoice(c.UserContext(), userCtx.ShopID, userCtx.UserID, input)
	if err != nil {
		switch {
		case errors.Is(err, invoicing.ErrInsufficientStock):
			return jsonError(c, fiber.StatusConflict, "insufficient_stock", err.Error())
		case errors.Is(err, invoicing.ErrProductNotFound):
			return jsonError(c, fiber.StatusNotFound, "not_found", "One or more products do not exist")
		case errors.Is(err, invoicing.ErrEmptyInvoice):
			return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invoice needs at least one line")
		default:
			log.Printf("checkout failed for shop %d: %v", userCtx.ShopID, err)
			return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Checkout failed")
		}
	}
	return c.Status(fiber.StatusCreated).JSON(invoice)
}

// HandleGetInvoice fetches one invoice by its public uuid
func HandleGetInvoice(c *fiber.Ctx) error {
	invoiceUUID := c.Params("uuid")
	invoice, err := invoicingService.GetInvoice(c.UserContext(), usercontext.GetShopID(c), invoiceUUID)
	if err != nil {
		if errors.Is(err, invoicing.ErrInvoiceNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "Invoice not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load invoice")
	}
	return c.JSON(invoice)
}

// HandleListInvoices lists the shop's invoices newest first
func HandleListInvoices(c *fiber.Ctx) error {
	shopID := usercontext.GetShopID(c)
	offset, limit := pagination(c)

	invoices, err := invoicingService.ListInvoices(c.UserContext(), shopID, limit, offset)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to list invoices")
	}
	count, err := repository.GetGlobalFactory().GetInvoiceRepository().Count(shopID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to list invoices")
	}
	return c.JSON(fiber.Map{"invoices": invoices, "total": count})
}
