package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/shopbill-app/shopbill/app/models"
	icuser "github.com/shopbill-app/shopbill/internal/pkg/usercontext"
)

// RequireSiteAdmin ensures the caller may manage all tenants
func RequireSiteAdmin(c *fiber.Ctx) error {
	ctx := icuser.GetUserContext(c)
	if !ctx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":   "unauthorized",
			"message": "login required",
		})
	}
	if !ctx.IsSiteAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":   "forbidden",
			"message": "admin access required",
		})
	}
	return c.Next()
}

// RequireShop ensures the caller is bound to a shop. Site admins have no shop
// and cannot use shop-scoped endpoints directly.
func RequireShop(c *fiber.Ctx) error {
	ctx := icuser.GetUserContext(c)
	if !ctx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":   "unauthorized",
			"message": "login required",
		})
	}
	if ctx.ShopID == 0 {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":   "forbidden",
			"message": "no shop bound to this account",
		})
	}
	return c.Next()
}

// RequireShopOwner ensures the caller owns the shop, not just works in it
func RequireShopOwner(c *fiber.Ctx) error {
	ctx := icuser.GetUserContext(c)
	if !ctx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":   "unauthorized",
			"message": "login required",
		})
	}
	if ctx.Role != models.ROLE_SHOP_OWNER && !ctx.IsSiteAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":   "forbidden",
			"message": "shop owner access required",
		})
	}
	return c.Next()
}
