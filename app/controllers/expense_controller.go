package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/shopbill-app/shopbill/app/models"
	"github.com/shopbill-app/shopbill/app/repository"
	"github.com/shopbill-app/shopbill/internal/pkg/usercontext"
)

type expenseRequest struct {
	Category      string  `json:"category" validate:"required,oneof=RENT UTILITIES SALARY INVENTORY TRANSPORT MAINTENANCE OTHER"`
	Amount        float64 `json:"amount" validate:"required,gt=0"`
	Description   string  `json:"description" validate:"required"`
	Date          string  `json:"date" validate:"required,datetime=2006-01-02"`
	ReceiptNumber string  `json:"receipt_number" validate:"max=100"`
	VendorName    string  `json:"vendor_name" validate:"max=200"`
}

// HandleCreateExpense records a shop outgoing
func HandleCreateExpense(c *fiber.Ctx) error {
	var req expenseRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return jsonValidationError(c, err)
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid date")
	}

	userCtx := usercontext.GetUserContext(c)
	expense := &models.Expense{
		ShopID:        userCtx.ShopID,
		Category:      req.Category,
		Amount:        req.Amount,
		Description:   req.Description,
		Date:          date,
		ReceiptNumber: req.ReceiptNumber,
		VendorName:    req.VendorName,
		CreatedByID:   &userCtx.UserID,
	}
	if err := repository.GetGlobalFactory().GetExpenseRepository().Create(expense); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to create expense")
	}
	return c.Status(fiber.StatusCreated).JSON(expense)
}

// HandleListExpenses lists the shop's expenses, optionally over a date range
func HandleListExpenses(c *fiber.Ctx) error {
	shopID := usercontext.GetShopID(c)
	repo := repository.GetGlobalFactory().GetExpenseRepository()

	from, to, ok := dateRangeQuery(c)
	if ok {
		expenses, err := repo.ListBetween(shopID, from, to)
		if err != nil {
			return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to list expenses")
		}
		total, err := repo.TotalBetween(shopID, from, to)
		if err != nil {
			return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to list expenses")
		}
		return c.JSON(fiber.Map{"expenses": expenses, "total_amount": total})
	}

	offset, limit := pagination(c)
	expenses, err := repo.List(shopID, offset, limit)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to list expenses")
	}
	return c.JSON(fiber.Map{"expenses": expenses})
}

// HandleDeleteExpense removes an expense
func HandleDeleteExpense(c *fiber.Ctx) error {
	id, err := paramUint(c, "id")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", err.Error())
	}
	shopID := usercontext.GetShopID(c)
	repo := repository.GetGlobalFactory().GetExpenseRepository()
	if _, err := repo.GetByID(shopID, id); err != nil {
		return notFoundOrInternal(c, err, "expense")
	}
	if err := repo.Delete(shopID, id); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to delete expense")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// dateRangeQuery parses from/to date query params; to is exclusive end of day
func dateRangeQuery(c *fiber.Ctx) (time.Time, time.Time, bool) {
	fromRaw, toRaw := c.Query("from"), c.Query("to")
	if fromRaw == "" || toRaw == "" {
		return time.Time{}, time.Time{}, false
	}
	from, err := time.Parse("2006-01-02", fromRaw)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	to, err := time.Parse("2006-01-02", toRaw)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	return from, to.Add(24 * time.Hour), true
}
