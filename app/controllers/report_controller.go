package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/shopbill-app/shopbill/app/repository"
	"github.com/shopbill-app/shopbill/internal/pkg/usercontext"
)

// HandleSalesSummary aggregates invoice totals over a date range. Without
// from/to query params it covers the current month.
func HandleSalesSummary(c *fiber.Ctx) error {
	shopID := usercontext.GetShopID(c)

	from, to, ok := dateRangeQuery(c)
	if !ok {
		now := time.Now()
		from = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		to = from.AddDate(0, 1, 0)
	}

	factory := repository.GetGlobalFactory()
	summary, err := factory.GetInvoiceRepository().SalesSummary(shopID, from, to)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to build sales summary")
	}
	expenses, err := factory.GetExpenseRepository().TotalBetween(shopID, from, to)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to build sales summary")
	}

	return c.JSON(fiber.Map{
		"from":           from.Format("2006-01-02"),
		"to":             to.AddDate(0, 0, -1).Format("2006-01-02"),
		"sales":          summary,
		"total_expenses": expenses,
		"net":            summary.GrandTotal - expenses,
	})
}

// HandleInvoiceReport lists invoices for a day or range, defaulting to today
func HandleInvoiceReport(c *fiber.Ctx) error {
	shopID := usercontext.GetShopID(c)

	from, to, ok := dateRangeQuery(c)
	if !ok {
		now := time.Now()
		from = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		to = from.Add(24 * time.Hour)
	}

	repo := repository.GetGlobalFactory().GetInvoiceRepository()
	invoices, err := repo.ListBetween(shopID, from, to)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to build invoice report")
	}
	summary, err := repo.SalesSummary(shopID, from, to)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to build invoice report")
	}

	return c.JSON(fiber.Map{
		"invoices": invoices,
		"summary":  summary,
	})
}
