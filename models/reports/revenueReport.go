package reports

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/sales_backend/config"
	"bitbucket.org/mmdatafocus/sales_backend/models"
	"bitbucket.org/mmdatafocus/sales_backend/utils"
	"github.com/shopspring/decimal"
)

type RevenueByCustomerResponse struct {
	CustomerCode  string          `json:"customer_code"`
	CustomerName  string          `json:"customer_name"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	TotalTax      decimal.Decimal `json:"total_tax"`
	TotalDiscount decimal.Decimal `json:"total_discount"`
	TotalPayment  decimal.Decimal `json:"total_payment"`
	InvoiceCount  int64           `json:"invoice_count"`
}

type RevenueByProductResponse struct {
	ProductCode   string          `json:"product_code"`
	ProductName   string          `json:"product_name"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	TotalQuantity decimal.Decimal `json:"total_quantity"`
}

type RevenueByMonthResponse struct {
	Month         int             `json:"month"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	TotalTax      decimal.Decimal `json:"total_tax"`
	TotalDiscount decimal.Decimal `json:"total_discount"`
	TotalPayment  decimal.Decimal `json:"total_payment"`
	InvoiceCount  int64           `json:"invoice_count"`
}

type TotalRevenueResponse struct {
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	TotalTax      decimal.Decimal `json:"total_tax"`
	TotalDiscount decimal.Decimal `json:"total_discount"`
	TotalPayment  decimal.Decimal `json:"total_payment"`
	InvoiceCount  int64           `json:"invoice_count"`
}

const invoiceSumColumns = `
    COALESCE(SUM(inv.revenue_amount), 0) AS total_revenue,
    COALESCE(SUM(inv.tax_amount), 0) AS total_tax,
    COALESCE(SUM(inv.discount_amount), 0) AS total_discount,
    COALESCE(SUM(inv.payment_total), 0) AS total_payment,
    COUNT(inv.code) AS invoice_count`

// GetRevenueByCustomer sums invoice amounts per customer, highest revenue first.
func GetRevenueByCustomer(ctx context.Context, fromDate time.Time, toDate time.Time) ([]*RevenueByCustomerResponse, error) {
	sqlT := `
SELECT
    inv.customer_code,
    MAX(inv.customer_name) AS customer_name,
    {{ .sumColumns }}
FROM
    invoices AS inv
WHERE
    inv.issue_date >= @fromDate AND inv.issue_date < @toDate
GROUP BY
    inv.customer_code
ORDER BY
    total_revenue DESC, inv.customer_code
`
	start, end, err := dateRange(fromDate, toDate)
	if err != nil {
		return nil, err
	}
	sql, err := utils.ExecTemplate(sqlT, map[string]interface{}{
		"sumColumns": invoiceSumColumns,
	})
	if err != nil {
		return nil, err
	}

	started := time.Now()
	defer logSlowReport(ctx, "RevenueByCustomer", started, map[string]any{"from": start, "to": end})

	results := []*RevenueByCustomerResponse{}
	db := config.GetDB()
	if err := db.WithContext(ctx).Raw(sql, map[string]interface{}{
		"fromDate": start,
		"toDate":   end,
	}).Scan(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// GetRevenueByProduct sums invoice lines per product for invoices issued in the range.
func GetRevenueByProduct(ctx context.Context, fromDate time.Time, toDate time.Time) ([]*RevenueByProductResponse, error) {
	start, end, err := dateRange(fromDate, toDate)
	if err != nil {
		return nil, err
	}
	started := time.Now()
	defer logSlowReport(ctx, "RevenueByProduct", started, map[string]any{"from": start, "to": end})

	results := []*RevenueByProductResponse{}
	if err := productLineSums(ctx, "invoice_details", "invoice_code", "invoices", start, end, "total_revenue", &results); err != nil {
		return nil, err
	}
	return results, nil
}

// GetRevenueByMonth groups the invoices of year by calendar month, January first.
// Months without invoices are left out.
func GetRevenueByMonth(ctx context.Context, year int) ([]*RevenueByMonthResponse, error) {
	sqlT := `
SELECT
    {{ .monthExpr }} AS month,
    {{ .sumColumns }}
FROM
    invoices AS inv
WHERE
    inv.issue_date >= @fromDate AND inv.issue_date < @toDate
GROUP BY
    {{ .monthExpr }}
ORDER BY
    month
`
	if year < 1 || year > 9999 {
		return nil, utils.NewValidationError("year", "must be between 1 and 9999")
	}
	db := config.GetDB()
	sql, err := utils.ExecTemplate(sqlT, map[string]interface{}{
		"monthExpr":  models.MonthExpr(db, "inv.issue_date"),
		"sumColumns": invoiceSumColumns,
	})
	if err != nil {
		return nil, err
	}

	start, end := utils.YearRange(year)
	started := time.Now()
	defer logSlowReport(ctx, "RevenueByMonth", started, map[string]any{"year": year})

	results := []*RevenueByMonthResponse{}
	if err := db.WithContext(ctx).Raw(sql, map[string]interface{}{
		"fromDate": start,
		"toDate":   end,
	}).Scan(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// GetTotalRevenue always returns a row; an empty range gives zero sums and a zero count.
func GetTotalRevenue(ctx context.Context, fromDate time.Time, toDate time.Time) (*TotalRevenueResponse, error) {
	sqlT := `
SELECT
    {{ .sumColumns }}
FROM
    invoices AS inv
WHERE
    inv.issue_date >= @fromDate AND inv.issue_date < @toDate
`
	start, end, err := dateRange(fromDate, toDate)
	if err != nil {
		return nil, err
	}
	sql, err := utils.ExecTemplate(sqlT, map[string]interface{}{
		"sumColumns": invoiceSumColumns,
	})
	if err != nil {
		return nil, err
	}

	result := TotalRevenueResponse{
		TotalRevenue:  decimal.Zero,
		TotalTax:      decimal.Zero,
		TotalDiscount: decimal.Zero,
		TotalPayment:  decimal.Zero,
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Raw(sql, map[string]interface{}{
		"fromDate": start,
		"toDate":   end,
	}).Scan(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

// productLineSums groups the lines of detailTable by product, restricted to headers issued
// in [start, end), and orders by the summed amount.
func productLineSums(ctx context.Context, detailTable string, parentColumn string, headerTable string,
	start time.Time, end time.Time, amountAlias string, dest interface{}) error {
	sqlT := `
SELECT
    d.product_code,
    COALESCE(MAX(p.name), '') AS product_name,
    COALESCE(SUM(d.quantity * d.unit_price), 0) AS {{ .amountAlias }},
    COALESCE(SUM(d.quantity), 0) AS total_quantity
FROM
    {{ .detailTable }} AS d
    JOIN {{ .headerTable }} AS h ON h.code = d.{{ .parentColumn }}
    LEFT JOIN products AS p ON p.code = d.product_code
WHERE
    h.issue_date >= @fromDate AND h.issue_date < @toDate
GROUP BY
    d.product_code
ORDER BY
    {{ .amountAlias }} DESC, d.product_code
`
	sql, err := utils.ExecTemplate(sqlT, map[string]interface{}{
		"detailTable":  detailTable,
		"parentColumn": parentColumn,
		"headerTable":  headerTable,
		"amountAlias":  amountAlias,
	})
	if err != nil {
		return err
	}
	db := config.GetDB()
	return db.WithContext(ctx).Raw(sql, map[string]interface{}{
		"fromDate": start,
		"toDate":   end,
	}).Scan(dest).Error
}
