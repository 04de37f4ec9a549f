package usercontext

import "github.com/gofiber/fiber/v2"

// UserContext represents the complete user context for a request
type UserContext struct {
	UserID      uint   `json:"user_id"`
	Name        string `json:"name"`
	Role        string `json:"role"`
	ShopID      uint   `json:"shop_id"`
	IsLoggedIn  bool   `json:"is_logged_in"`
	IsSiteAdmin bool   `json:"is_site_admin"`
}

// GetUserContext retrieves the user context from fiber context
// Returns a default anonymous context if none is set
func GetUserContext(c *fiber.Ctx) UserContext {
	if ctx := c.Locals("USER_CONTEXT"); ctx != nil {
		return ctx.(UserContext)
	}
	return UserContext{IsLoggedIn: false}
}

// IsLoggedIn checks if the current user is logged in
func IsLoggedIn(c *fiber.Ctx) bool {
	return GetUserContext(c).IsLoggedIn
}

// IsSiteAdmin checks if the current user manages all tenants
func IsSiteAdmin(c *fiber.Ctx) bool {
	return GetUserContext(c).IsSiteAdmin
}

// GetUserID returns the current user's ID, or 0 if not logged in
func GetUserID(c *fiber.Ctx) uint {
	return GetUserContext(c).UserID
}

// GetShopID returns the current user's shop ID, or 0 for site admins
func GetShopID(c *fiber.Ctx) uint {
	return GetUserContext(c).ShopID
}
