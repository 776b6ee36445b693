package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"bitbucket.org/mmdatafocus/sales_backend/models/reports"
	"bitbucket.org/mmdatafocus/sales_backend/utils"
	"github.com/gin-gonic/gin"
)

func revenueByCustomer(c *gin.Context) {
	from, to, ok := dateRangeQuery(c)
	if !ok {
		return
	}
	result, err := reports.GetRevenueByCustomer(c.Request.Context(), from, to)
	respond(c, http.StatusOK, result, err)
}

func revenueByProduct(c *gin.Context) {
	from, to, ok := dateRangeQuery(c)
	if !ok {
		return
	}
	result, err := reports.GetRevenueByProduct(c.Request.Context(), from, to)
	respond(c, http.StatusOK, result, err)
}

func revenueByMonth(c *gin.Context) {
	raw, ok := requiredQuery(c, "year")
	if !ok {
		return
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		respondError(c, utils.NewValidationError("year", "must be an integer"))
		return
	}
	result, err := reports.GetRevenueByMonth(c.Request.Context(), year)
	respond(c, http.StatusOK, result, err)
}

func totalRevenue(c *gin.Context) {
	from, to, ok := dateRangeQuery(c)
	if !ok {
		return
	}
	result, err := reports.GetTotalRevenue(c.Request.Context(), from, to)
	respond(c, http.StatusOK, result, err)
}

func discountByCustomer(c *gin.Context) {
	from, to, ok := dateRangeQuery(c)
	if !ok {
		return
	}
	result, err := reports.GetDiscountByCustomer(c.Request.Context(), from, to)
	respond(c, http.StatusOK, result, err)
}

func discountByProduct(c *gin.Context) {
	from, to, ok := dateRangeQuery(c)
	if !ok {
		return
	}
	result, err := reports.GetDiscountByProduct(c.Request.Context(), from, to)
	respond(c, http.StatusOK, result, err)
}

func totalDiscount(c *gin.Context) {
	from, to, ok := dateRangeQuery(c)
	if !ok {
		return
	}
	result, err := reports.GetTotalDiscount(c.Request.Context(), from, to)
	respond(c, http.StatusOK, result, err)
}

func exportRevenueByCustomer(c *gin.Context) {
	from, to, ok := dateRangeQuery(c)
	if !ok {
		return
	}
	rows, err := reports.GetRevenueByCustomer(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	sendExcel(c, reportFileName("revenue_by_customer", from, to), reports.ToExporters(rows), reports.RevenueByCustomerHeadings)
}

func exportRevenueByProduct(c *gin.Context) {
	from, to, ok := dateRangeQuery(c)
	if !ok {
		return
	}
	rows, err := reports.GetRevenueByProduct(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	sendExcel(c, reportFileName("revenue_by_product", from, to), reports.ToExporters(rows), reports.RevenueByProductHeadings)
}

func reportFileName(name string, from time.Time, to time.Time) string {
	return fmt.Sprintf("%s_%s_%s.xlsx", name, from.Format("20060102"), to.Format("20060102"))
}

// sendExcel renders the workbook into memory first so a write error still yields a JSON error.
func sendExcel(c *gin.Context, fileName string, rows []reports.ExcelExporter, headings []string) {
	var buf bytes.Buffer
	if err := reports.WriteExcel(&buf, rows, headings...); err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Data(http.StatusOK, reports.ExcelContentType, buf.Bytes())
}
