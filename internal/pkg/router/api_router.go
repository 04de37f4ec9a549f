package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/shopbill-app/shopbill/app/controllers"
	"github.com/shopbill-app/shopbill/internal/pkg/entitlements"
	"github.com/shopbill-app/shopbill/internal/pkg/middleware"
	"github.com/shopbill-app/shopbill/internal/pkg/ratelimit"
)

type ApiRouter struct {
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	controllers.InitializeAdminController()
	controllers.InitializeInvoiceController()
	controllers.InitializeBillingController()

	api := app.Group("/api", limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
		Storage:    ratelimit.NewRedisStorage(),
	}))
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	// Public: account bootstrap and password recovery.
	auth := api.Group("/auth")
	auth.Post("/register", controllers.HandleRegister)
	auth.Post("/login", controllers.HandleLogin)
	auth.Post("/forgot-password", controllers.HandleForgotPassword)
	auth.Post("/reset-password", controllers.HandleResetPassword)

	// Public: the gateway authenticates with the body signature, not a key.
	api.Post("/payments/webhook", controllers.HandlePaymentWebhook)

	// Everything below requires an API key.
	authed := api.Group("", middleware.APIKeyAuthMiddleware())
	authed.Get("/me", controllers.HandleGetMe)

	// Billing endpoints stay reachable with an expired subscription, otherwise
	// a lapsed user could never pay their way back in.
	payments := authed.Group("/payments")
	payments.Get("/plans", controllers.HandleListPlans)
	payments.Post("/create-order", controllers.HandleCreateOrder)
	payments.Post("/verify", controllers.HandleVerifyPayment)
	payments.Get("/history", controllers.HandlePaymentHistory)

	subscription := authed.Group("/subscription")
	subscription.Get("/status", controllers.HandleSubscriptionStatus)
	subscription.Post("/start-trial", controllers.HandleStartTrial)

	// Shop-scoped endpoints sit behind the subscription gate.
	shop := authed.Group("", middleware.RequireShop, middleware.RequireActiveSubscription())

	products := shop.Group("/products")
	products.Get("/", controllers.HandleListProducts)
	products.Get("/low-stock", controllers.HandleLowStockProducts)
	products.Get("/:id", controllers.HandleGetProduct)
	products.Post("/", middleware.RequireFeature(entitlements.FeatureStock), controllers.HandleCreateProduct)
	products.Put("/:id", middleware.RequireFeature(entitlements.FeatureStock), controllers.HandleUpdateProduct)
	products.Delete("/:id", middleware.RequireFeature(entitlements.FeatureStock), controllers.HandleDeleteProduct)

	customers := shop.Group("/customers")
	customers.Get("/", controllers.HandleListCustomers)
	customers.Get("/:id", controllers.HandleGetCustomer)
	customers.Post("/", controllers.HandleCreateCustomer)
	customers.Put("/:id", controllers.HandleUpdateCustomer)
	customers.Delete("/:id", controllers.HandleDeleteCustomer)
	customers.Post("/:id/loyalty", controllers.HandleEnableLoyalty)

	invoices := shop.Group("/invoices")
	invoices.Get("/", controllers.HandleListInvoices)
	invoices.Get("/:uuid", controllers.HandleGetInvoice)
	invoices.Post("/", middleware.RequireFeature(entitlements.FeatureBilling), controllers.HandleCreateInvoice)

	taxProfiles := shop.Group("/tax-profiles")
	taxProfiles.Get("/", controllers.HandleListTaxProfiles)
	taxProfiles.Post("/", controllers.HandleCreateTaxProfile)
	taxProfiles.Put("/:id", controllers.HandleUpdateTaxProfile)
	taxProfiles.Delete("/:id", controllers.HandleDeleteTaxProfile)

	expenses := shop.Group("/expenses", middleware.RequireFeature(entitlements.FeatureExpenses))
	expenses.Get("/", controllers.HandleListExpenses)
	expenses.Post("/", controllers.HandleCreateExpense)
	expenses.Delete("/:id", controllers.HandleDeleteExpense)

	reports := shop.Group("/reports", middleware.RequireFeature(entitlements.FeatureReports))
	reports.Get("/sales-summary", controllers.HandleSalesSummary)
	reports.Get("/invoices", controllers.HandleInvoiceReport)

	// Cross-tenant administration.
	admin := authed.Group("/admin", middleware.RequireSiteAdmin)
	ac := controllers.GetAdminController()
	admin.Get("/dashboard", ac.HandleDashboard)
	admin.Get("/shops", ac.HandleListShops)
	admin.Get("/shops/:id", ac.HandleGetShop)
	admin.Put("/users/:id/subscription-override", ac.HandleSubscriptionOverride)
	admin.Get("/plans", ac.HandleListAllPlans)
	admin.Post("/plans", ac.HandleCreatePlan)
	admin.Put("/plans/:id", ac.HandleUpdatePlan)
	admin.Delete("/plans/:id", ac.HandleDeletePlan)
}
