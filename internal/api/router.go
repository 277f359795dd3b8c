package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/finbooks/finbooks/internal/auth"
	"github.com/finbooks/finbooks/internal/handlers"
	"github.com/finbooks/finbooks/internal/middleware"
)

// Handlers bundles every route handler mounted by the router.
type Handlers struct {
	Auth           *handlers.AuthHandler
	Companies      *handlers.CompanyHandler
	Clients        *handlers.ClientHandler
	Invoices       *handlers.InvoiceHandler
	Products       *handlers.ProductHandler
	PaymentMethods *handlers.PaymentMethodHandler
	BankAccounts   *handlers.BankAccountHandler
	Wallets        *handlers.WalletHandler
	Transactions   *handlers.TransactionHandler
	Entries        *handlers.EntryHandler
	Rates          *handlers.RateHandler
	Cache          *handlers.CacheHandler
	Health         *handlers.HealthHandler
}

// NewRouter assembles the HTTP surface: public health/auth endpoints plus the
// JWT-protected resource API.
func NewRouter(jwt *auth.JWTService, h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(middleware.Recovery(), middleware.Logger(), middleware.Metrics())
	router.NoRoute(middleware.NotFoundHandler)

	router.GET("/health", h.Health.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	public := router.Group("/api/auth")
	{
		public.POST("/register", h.Auth.Register)
		public.POST("/login", h.Auth.Login)
		public.POST("/logout", h.Auth.Logout)
	}

	api := router.Group("/api", middleware.Auth(jwt))
	{
		api.GET("/auth/me", h.Auth.Me)

		companies := api.Group("/companies")
		{
			companies.GET("", h.Companies.List)
			companies.POST("", h.Companies.Create)
			companies.GET("/statistics", h.Companies.Statistics)
			companies.GET("/:id", h.Companies.Get)
			companies.PUT("/:id", h.Companies.Update)
			companies.DELETE("/:id", h.Companies.Delete)
		}

		clients := api.Group("/clients")
		{
			clients.GET("", h.Clients.List)
			clients.POST("", h.Clients.Create)
			clients.GET("/:id", h.Clients.Get)
			clients.PUT("/:id", h.Clients.Update)
			clients.DELETE("/:id", h.Clients.Delete)
		}

		invoices := api.Group("/invoices")
		{
			invoices.GET("", h.Invoices.List)
			invoices.POST("", h.Invoices.Create)
			invoices.GET("/:id", h.Invoices.Get)
			invoices.PUT("/:id", h.Invoices.Update)
			invoices.POST("/:id/send", h.Invoices.Send)
			invoices.POST("/:id/status", h.Invoices.SetStatus)
			invoices.DELETE("/:id", h.Invoices.Delete)
		}

		products := api.Group("/products")
		{
			products.GET("", h.Products.List)
			products.POST("", h.Products.Create)
			products.GET("/:id", h.Products.Get)
			products.PUT("/:id", h.Products.Update)
			products.DELETE("/:id", h.Products.Delete)
		}

		paymentMethods := api.Group("/payment-methods")
		{
			paymentMethods.GET("", h.PaymentMethods.List)
			paymentMethods.POST("", h.PaymentMethods.Create)
			paymentMethods.GET("/:id", h.PaymentMethods.Get)
			paymentMethods.PUT("/:id", h.PaymentMethods.Update)
			paymentMethods.DELETE("/:id", h.PaymentMethods.Delete)
		}

		bankAccounts := api.Group("/bank-accounts")
		{
			bankAccounts.GET("", h.BankAccounts.List)
			bankAccounts.POST("", h.BankAccounts.Create)
			bankAccounts.GET("/:id", h.BankAccounts.Get)
			bankAccounts.PUT("/:id", h.BankAccounts.Update)
			bankAccounts.DELETE("/:id", h.BankAccounts.Delete)
		}

		wallets := api.Group("/wallets")
		{
			wallets.GET("", h.Wallets.List)
			wallets.POST("", h.Wallets.Create)
			wallets.GET("/:id", h.Wallets.Get)
			wallets.PUT("/:id", h.Wallets.Update)
			wallets.POST("/:id/import", h.Wallets.Import)
			wallets.DELETE("/:id", h.Wallets.Delete)
		}

		transactions := api.Group("/transactions")
		{
			transactions.GET("", h.Transactions.List)
			transactions.POST("", h.Transactions.Create)
			transactions.GET("/:id", h.Transactions.Get)
			transactions.POST("/:id/link", h.Transactions.Link)
			transactions.POST("/:id/unlink", h.Transactions.Unlink)
			transactions.DELETE("/:id", h.Transactions.Delete)
		}

		entries := api.Group("/entries")
		{
			entries.GET("", h.Entries.List)
			entries.POST("", h.Entries.Create)
			entries.GET("/:id", h.Entries.Get)
			entries.PUT("/:id", h.Entries.Update)
			entries.DELETE("/:id", h.Entries.Delete)
		}

		rates := api.Group("/rates")
		{
			rates.GET("/latest", h.Rates.Latest)
			rates.GET("/history", h.Rates.History)
			rates.POST("/refresh", h.Rates.Refresh)
		}

		api.POST("/cache/invalidate", h.Cache.Invalidate)
	}

	return router
}
