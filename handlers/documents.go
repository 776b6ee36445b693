package handlers

import (
	"context"
	"net/http"
	"time"

	"bitbucket.org/mmdatafocus/sales_backend/models"
	"github.com/gin-gonic/gin"
)

const defaultStatsLimit = 10

// invoices

func listInvoices(c *gin.Context) {
	page, ok := bindPage(c)
	if !ok {
		return
	}
	result, err := models.GetInvoices(c.Request.Context(), page)
	respond(c, http.StatusOK, result, err)
}

func listInvoicesByCustomer(c *gin.Context) {
	page, ok := bindPage(c)
	if !ok {
		return
	}
	result, err := models.GetInvoicesByCustomer(c.Request.Context(), c.Param("customer_code"), page)
	respond(c, http.StatusOK, result, err)
}

func listInvoicesByDateRange(c *gin.Context) {
	listByDateRange(c, models.GetInvoicesByDateRange)
}

func getInvoice(c *gin.Context) {
	result, err := models.GetInvoiceWithDetails(c.Request.Context(), c.Param("code"))
	respondFound(c, result, err)
}

func createInvoice(c *gin.Context) {
	var input models.NewInvoice
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	result, err := models.CreateInvoice(c.Request.Context(), &input)
	respond(c, http.StatusCreated, result, err)
}

func updateInvoice(c *gin.Context) {
	var input models.InvoicePatch
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	result, err := models.UpdateInvoice(c.Request.Context(), c.Param("code"), &input)
	respond(c, http.StatusOK, result, err)
}

func deleteInvoice(c *gin.Context) {
	result, err := models.DeleteInvoice(c.Request.Context(), c.Param("code"))
	respond(c, http.StatusOK, result, err)
}

// previewInvoiceTotals computes amounts for a draft without persisting anything.
func previewInvoiceTotals(c *gin.Context) {
	var input models.InvoiceTotalsPreview
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	result, err := models.ComputeInvoiceTotals(&input)
	respond(c, http.StatusOK, result, err)
}

func listInvoiceDetails(c *gin.Context) {
	result, err := models.GetInvoiceDetails(c.Request.Context(), c.Param("code"))
	respond(c, http.StatusOK, result, err)
}

func getInvoiceDetail(c *gin.Context) {
	result, err := models.GetInvoiceDetail(c.Request.Context(), c.Param("code"), c.Param("product_code"))
	respondFound(c, result, err)
}

func createInvoiceDetail(c *gin.Context) {
	var input models.NewLineItem
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	result, err := models.CreateInvoiceDetail(c.Request.Context(), c.Param("code"), &input)
	respond(c, http.StatusCreated, result, err)
}

func updateInvoiceDetail(c *gin.Context) {
	var input models.LineItemPatch
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	result, err := models.UpdateInvoiceDetail(c.Request.Context(), c.Param("code"), c.Param("product_code"), &input)
	respond(c, http.StatusOK, result, err)
}

func deleteInvoiceDetail(c *gin.Context) {
	result, err := models.DeleteInvoiceDetail(c.Request.Context(), c.Param("code"), c.Param("product_code"))
	respond(c, http.StatusOK, result, err)
}

func deleteInvoiceDetails(c *gin.Context) {
	deleted, err := models.DeleteInvoiceDetails(c.Request.Context(), c.Param("code"))
	respond(c, http.StatusOK, gin.H{"deleted": deleted}, err)
}

func invoiceSalesFrequency(c *gin.Context) {
	limit, ok := intQuery(c, "limit", defaultStatsLimit)
	if !ok {
		return
	}
	result, err := models.GetInvoiceSalesFrequency(c.Request.Context(), limit)
	respond(c, http.StatusOK, result, err)
}

func invoiceSalesRevenue(c *gin.Context) {
	limit, ok := intQuery(c, "limit", defaultStatsLimit)
	if !ok {
		return
	}
	result, err := models.GetInvoiceSalesRevenue(c.Request.Context(), limit)
	respond(c, http.StatusOK, result, err)
}

// vouchers

func listVouchers(c *gin.Context) {
	page, ok := bindPage(c)
	if !ok {
		return
	}
	result, err := models.GetVouchers(c.Request.Context(), page)
	respond(c, http.StatusOK, result, err)
}

func listVouchersByCustomer(c *gin.Context) {
	page, ok := bindPage(c)
	if !ok {
		return
	}
	result, err := models.GetVouchersByCustomer(c.Request.Context(), c.Param("customer_code"), page)
	respond(c, http.StatusOK, result, err)
}

func listVouchersByInvoice(c *gin.Context) {
	page, ok := bindPage(c)
	if !ok {
		return
	}
	result, err := models.GetVouchersByInvoice(c.Request.Context(), c.Param("invoice_code"), page)
	respond(c, http.StatusOK, result, err)
}

func listVouchersByDateRange(c *gin.Context) {
	listByDateRange(c, models.GetVouchersByDateRange)
}

func getVoucher(c *gin.Context) {
	result, err := models.GetVoucherWithDetails(c.Request.Context(), c.Param("code"))
	respondFound(c, result, err)
}

func createVoucher(c *gin.Context) {
	var input models.NewVoucher
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	result, err := models.CreateVoucher(c.Request.Context(), &input)
	respond(c, http.StatusCreated, result, err)
}

func updateVoucher(c *gin.Context) {
	var input models.VoucherPatch
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	result, err := models.UpdateVoucher(c.Request.Context(), c.Param("code"), &input)
	respond(c, http.StatusOK, result, err)
}

func deleteVoucher(c *gin.Context) {
	result, err := models.DeleteVoucher(c.Request.Context(), c.Param("code"))
	respond(c, http.StatusOK, result, err)
}

func listVoucherDetails(c *gin.Context) {
	result, err := models.GetVoucherDetails(c.Request.Context(), c.Param("code"))
	respond(c, http.StatusOK, result, err)
}

func getVoucherDetail(c *gin.Context) {
	result, err := models.GetVoucherDetail(c.Request.Context(), c.Param("code"), c.Param("product_code"))
	respondFound(c, result, err)
}

func createVoucherDetail(c *gin.Context) {
	var input models.NewLineItem
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	result, err := models.CreateVoucherDetail(c.Request.Context(), c.Param("code"), &input)
	respond(c, http.StatusCreated, result, err)
}

func updateVoucherDetail(c *gin.Context) {
	var input models.LineItemPatch
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	result, err := models.UpdateVoucherDetail(c.Request.Context(), c.Param("code"), c.Param("product_code"), &input)
	respond(c, http.StatusOK, result, err)
}

func deleteVoucherDetail(c *gin.Context) {
	result, err := models.DeleteVoucherDetail(c.Request.Context(), c.Param("code"), c.Param("product_code"))
	respond(c, http.StatusOK, result, err)
}

func deleteVoucherDetails(c *gin.Context) {
	deleted, err := models.DeleteVoucherDetails(c.Request.Context(), c.Param("code"))
	respond(c, http.StatusOK, gin.H{"deleted": deleted}, err)
}

func voucherDiscountFrequency(c *gin.Context) {
	limit, ok := intQuery(c, "limit", defaultStatsLimit)
	if !ok {
		return
	}
	result, err := models.GetVoucherDiscountFrequency(c.Request.Context(), limit)
	respond(c, http.StatusOK, result, err)
}

func voucherDiscountRevenue(c *gin.Context) {
	limit, ok := intQuery(c, "limit", defaultStatsLimit)
	if !ok {
		return
	}
	result, err := models.GetVoucherDiscountRevenue(c.Request.Context(), limit)
	respond(c, http.StatusOK, result, err)
}

func listByDateRange[T any](c *gin.Context, list func(context.Context, time.Time, time.Time, *models.Page) ([]*T, error)) {
	from, to, ok := dateRangeQuery(c)
	if !ok {
		return
	}
	page, ok := bindPage(c)
	if !ok {
		return
	}
	result, err := list(c.Request.Context(), from, to, page)
	respond(c, http.StatusOK, result, err)
}
