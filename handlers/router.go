package handlers

import (
	"net/http"

	"bitbucket.org/mmdatafocus/sales_backend/middlewares"
	"bitbucket.org/mmdatafocus/sales_backend/models"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the REST API under /api. Everything except register and login
// requires a bearer token; deletes of reference data are admin only.
func RegisterRoutes(r *gin.Engine) {
	useSharedValidator()

	api := r.Group("/api", middlewares.AuthMiddleware())

	auth := api.Group("/auth")
	auth.POST("/register", register)
	auth.POST("/login", login)
	auth.GET("/me", middlewares.RequireAuth(), me)
	auth.PUT("/password", middlewares.RequireAuth(), changePassword)

	secured := api.Group("", middlewares.RequireAuth())
	admin := middlewares.RequireAdmin()

	customers := secured.Group("/customers")
	customers.GET("", listCustomers)
	customers.POST("", createCustomer)
	customers.GET("/search", searchCustomers)
	customers.GET("/next-code", nextCode(models.CustomerCodeSeries))
	customers.GET("/tax-code/:tax_code", getCustomerByTaxCode)
	customers.GET("/tax-code/:tax_code/exists", customerTaxCodeExists)
	customers.GET("/:code", getCustomer)
	customers.GET("/:code/exists", customerExists)
	customers.PUT("/:code", updateCustomer)
	customers.DELETE("/:code", admin, deleteCustomer)

	products := secured.Group("/products")
	products.GET("", listProducts)
	products.POST("", createProduct)
	products.GET("/search", searchProducts)
	products.GET("/next-code", nextCode(models.ProductCodeSeries))
	products.GET("/:code", getProduct)
	products.GET("/:code/exists", productExists)
	products.PUT("/:code", updateProduct)
	products.DELETE("/:code", admin, deleteProduct)

	accounts := secured.Group("/accounts")
	accounts.GET("", listAccounts)
	accounts.POST("", admin, createAccount)
	accounts.GET("/search", searchAccounts)
	accounts.GET("/level/:level", listAccountsByLevel)
	accounts.GET("/:code", getAccount)
	accounts.GET("/:code/exists", accountExists)
	accounts.PUT("/:code", admin, updateAccount)
	accounts.DELETE("/:code", admin, deleteAccount)

	prices := secured.Group("/price-lists")
	prices.GET("", listAllPriceListEntries)
	prices.POST("", createPriceListEntry)
	prices.GET("/:product_code", listPriceListEntries)
	prices.GET("/:product_code/latest", getLatestPrice)
	prices.GET("/:product_code/:effective_date", getPriceListEntry)
	prices.PUT("/:product_code/:effective_date", updatePriceListEntry)
	prices.DELETE("/:product_code/:effective_date", deletePriceListEntry)

	tiers := secured.Group("/discount-tiers")
	tiers.GET("", listAllDiscountTiers)
	tiers.POST("", createDiscountTier)
	tiers.GET("/:product_code", listDiscountTiers)
	tiers.GET("/:product_code/applicable", getApplicableDiscount)
	tiers.GET("/:product_code/:effective_date", getDiscountTier)
	tiers.PUT("/:product_code/:effective_date", updateDiscountTier)
	tiers.DELETE("/:product_code/:effective_date", deleteDiscountTier)

	invoices := secured.Group("/invoices")
	invoices.GET("", listInvoices)
	invoices.POST("", createInvoice)
	invoices.POST("/totals", previewInvoiceTotals)
	invoices.GET("/next-code", nextCode(models.InvoiceCodeSeries))
	invoices.GET("/date-range", listInvoicesByDateRange)
	invoices.GET("/customer/:customer_code", listInvoicesByCustomer)
	invoices.GET("/stats/frequency", invoiceSalesFrequency)
	invoices.GET("/stats/revenue", invoiceSalesRevenue)
	invoices.GET("/:code", getInvoice)
	invoices.PUT("/:code", updateInvoice)
	invoices.DELETE("/:code", deleteInvoice)
	invoices.GET("/:code/details", listInvoiceDetails)
	invoices.POST("/:code/details", createInvoiceDetail)
	invoices.DELETE("/:code/details", deleteInvoiceDetails)
	invoices.GET("/:code/details/:product_code", getInvoiceDetail)
	invoices.PUT("/:code/details/:product_code", updateInvoiceDetail)
	invoices.DELETE("/:code/details/:product_code", deleteInvoiceDetail)

	vouchers := secured.Group("/vouchers")
	vouchers.GET("", listVouchers)
	vouchers.POST("", createVoucher)
	vouchers.GET("/next-code", nextCode(models.VoucherCodeSeries))
	vouchers.GET("/date-range", listVouchersByDateRange)
	vouchers.GET("/customer/:customer_code", listVouchersByCustomer)
	vouchers.GET("/invoice/:invoice_code", listVouchersByInvoice)
	vouchers.GET("/stats/frequency", voucherDiscountFrequency)
	vouchers.GET("/stats/revenue", voucherDiscountRevenue)
	vouchers.GET("/:code", getVoucher)
	vouchers.PUT("/:code", updateVoucher)
	vouchers.DELETE("/:code", deleteVoucher)
	vouchers.GET("/:code/details", listVoucherDetails)
	vouchers.POST("/:code/details", createVoucherDetail)
	vouchers.DELETE("/:code/details", deleteVoucherDetails)
	vouchers.GET("/:code/details/:product_code", getVoucherDetail)
	vouchers.PUT("/:code/details/:product_code", updateVoucherDetail)
	vouchers.DELETE("/:code/details/:product_code", deleteVoucherDetail)

	reports := secured.Group("/reports")
	reports.GET("/revenue/customers", revenueByCustomer)
	reports.GET("/revenue/customers/export", exportRevenueByCustomer)
	reports.GET("/revenue/products", revenueByProduct)
	reports.GET("/revenue/products/export", exportRevenueByProduct)
	reports.GET("/revenue/months", revenueByMonth)
	reports.GET("/revenue/total", totalRevenue)
	reports.GET("/discounts/customers", discountByCustomer)
	reports.GET("/discounts/products", discountByProduct)
	reports.GET("/discounts/total", totalDiscount)
}

func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "route not found", "path": c.Request.URL.Path})
}
