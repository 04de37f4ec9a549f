package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/shopbill-app/shopbill/app/models"
	"github.com/shopbill-app/shopbill/app/repository"
	"github.com/shopbill-app/shopbill/internal/pkg/usercontext"
)

type productRequest struct {
	Name              string  `json:"name" validate:"required,min=1,max=140"`
	SKU               string  `json:"sku" validate:"max=64"`
	Unit              string  `json:"unit" validate:"omitempty,oneof=pcs kg"`
	Price             float64 `json:"price" validate:"gte=0"`
	CostPrice         float64 `json:"cost_price" validate:"gte=0"`
	TaxRate           float64 `json:"tax_rate" validate:"gte=0,lte=100"`
	Quantity          float64 `json:"quantity" validate:"gte=0"`
	LowStockThreshold uint    `json:"low_stock_threshold"`
}

// HandleCreateProduct adds a product to the caller's shop
func HandleCreateProduct(c *fiber.Ctx) error {
	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return jsonValidationError(c, err)
	}

	unit := req.Unit
	if unit == "" {
		unit = models.UnitPiece
	}
	product := &models.Product{
		ShopID:            usercontext.GetShopID(c),
		Name:              req.Name,
		SKU:               req.SKU,
		Unit:              unit,
		Price:             req.Price,
		CostPrice:         req.CostPrice,
		TaxRate:           req.TaxRate,
		Quantity:          req.Quantity,
		LowStockThreshold: req.LowStockThreshold,
		IsActive:          true,
	}
	if err := repository.GetGlobalFactory().GetProductRepository().Create(product); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to create product")
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleListProducts lists the shop's products, optionally filtered by query
func HandleListProducts(c *fiber.Ctx) error {
	shopID := usercontext.GetShopID(c)
	repo := repository.GetGlobalFactory().GetProductRepository()

	if q := c.Query("q"); q != "" {
		products, err := repo.Search(shopID, q)
		if err != nil {
			return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to search products")
		}
		return c.JSON(fiber.Map{"products": products})
	}

	offset, limit := pagination(c)
	products, err := repo.List(shopID, offset, limit)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to list products")
	}
	count, err := repo.Count(shopID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to list products")
	}
	return c.JSON(fiber.Map{"products": products, "total": count})
}

// HandleGetProduct fetches one product of the shop
func HandleGetProduct(c *fiber.Ctx) error {
	id, err := paramUint(c, "id")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", err.Error())
	}
	product, err := repository.GetGlobalFactory().GetProductRepository().
		GetByID(usercontext.GetShopID(c), id)
	if err != nil {
		return notFoundOrInternal(c, err, "product")
	}
	return c.JSON(product)
}

// HandleUpdateProduct updates product fields; stock moves through checkout
func HandleUpdateProduct(c *fiber.Ctx) error {
	id, err := paramUint(c, "id")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", err.Error())
	}
	repo := repository.GetGlobalFactory().GetProductRepository()
	product, err := repo.GetByID(usercontext.GetShopID(c), id)
	if err != nil {
		return notFoundOrInternal(c, err, "product")
	}

	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return jsonValidationError(c, err)
	}

	product.Name = req.Name
	product.SKU = req.SKU
	if req.Unit != "" {
		product.Unit = req.Unit
	}
	product.Price = req.Price
	product.CostPrice = req.CostPrice
	product.TaxRate = req.TaxRate
	product.Quantity = req.Quantity
	product.LowStockThreshold = req.LowStockThreshold

	if err := repo.Update(product); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to update product")
	}
	return c.JSON(product)
}

// HandleDeleteProduct removes a product from the shop
func HandleDeleteProduct(c *fiber.Ctx) error {
	id, err := paramUint(c, "id")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", err.Error())
	}
	repo := repository.GetGlobalFactory().GetProductRepository()
	if _, err := repo.GetByID(usercontext.GetShopID(c), id); err != nil {
		return notFoundOrInternal(c, err, "product")
	}
	if err := repo.Delete(usercontext.GetShopID(c), id); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to delete product")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleLowStockProducts lists products at or below their threshold
func HandleLowStockProducts(c *fiber.Ctx) error {
	products, err := repository.GetGlobalFactory().GetProductRepository().
		LowStock(usercontext.GetShopID(c))
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to list low stock products")
	}
	return c.JSON(fiber.Map{"products": products})
}
