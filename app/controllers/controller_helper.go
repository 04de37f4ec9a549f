package controllers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

var validate = validator.New()

// jsonError writes the uniform error envelope
func jsonError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": code, "message": message})
}

// jsonValidationError maps validator failures to per-field messages
func jsonValidationError(c *fiber.Ctx, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return jsonError(c, fiber.StatusBadRequest, "validation_failed", err.Error())
	}
	fields := fiber.Map{}
	for _, fe := range verrs {
		fields[strings.ToLower(fe.Field())] = fe.Tag()
	}
	return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
		"error":   "validation_failed",
		"message": "One or more fields are invalid",
		"fields":  fields,
	})
}

// notFoundOrInternal converts a storage error into 404 or 500
func notFoundOrInternal(c *fiber.Ctx, err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return jsonError(c, fiber.StatusNotFound, "not_found", what+" not found")
	}
	return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load "+what)
}

// paramUint parses a numeric path parameter
func paramUint(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Params(name)
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || v == 0 {
		return 0, errors.New("invalid " + name)
	}
	return uint(v), nil
}

// pagination reads offset/limit query params with sane bounds
func pagination(c *fiber.Ctx) (offset, limit int) {
	offset = c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}
	limit = c.QueryInt("limit", 50)
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return offset, limit
}
