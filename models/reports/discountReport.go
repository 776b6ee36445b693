package reports

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/sales_backend/config"
	"github.com/shopspring/decimal"
)

type DiscountByCustomerResponse struct {
	CustomerCode  string          `json:"customer_code"`
	CustomerName  string          `json:"customer_name"`
	TotalDiscount decimal.Decimal `json:"total_discount"`
	TotalTax      decimal.Decimal `json:"total_tax"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	VoucherCount  int64           `json:"voucher_count"`
}

type DiscountByProductResponse struct {
	ProductCode   string          `json:"product_code"`
	ProductName   string          `json:"product_name"`
	TotalDiscount decimal.Decimal `json:"total_discount"`
	TotalQuantity decimal.Decimal `json:"total_quantity"`
}

type TotalDiscountResponse struct {
	TotalDiscount decimal.Decimal `json:"total_discount"`
	TotalTax      decimal.Decimal `json:"total_tax"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	VoucherCount  int64           `json:"voucher_count"`
}

// GetDiscountByCustomer sums voucher reductions per customer, largest discount first.
func GetDiscountByCustomer(ctx context.Context, fromDate time.Time, toDate time.Time) ([]*DiscountByCustomerResponse, error) {
	sql := `
SELECT
    v.customer_code,
    COALESCE(MAX(c.name), '') AS customer_name,
    COALESCE(SUM(v.revenue_reduction), 0) AS total_discount,
    COALESCE(SUM(v.tax_amount), 0) AS total_tax,
    COALESCE(SUM(v.payment_reduction), 0) AS total_amount,
    COUNT(v.code) AS voucher_count
FROM
    vouchers AS v
    LEFT JOIN customers AS c ON c.code = v.customer_code
WHERE
    v.issue_date >= @fromDate AND v.issue_date < @toDate
GROUP BY
    v.customer_code
ORDER BY
    total_discount DESC, v.customer_code
`
	start, end, err := dateRange(fromDate, toDate)
	if err != nil {
		return nil, err
	}
	started := time.Now()
	defer logSlowReport(ctx, "DiscountByCustomer", started, map[string]any{"from": start, "to": end})

	results := []*DiscountByCustomerResponse{}
	db := config.GetDB()
	if err := db.WithContext(ctx).Raw(sql, map[string]interface{}{
		"fromDate": start,
		"toDate":   end,
	}).Scan(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func GetDiscountByProduct(ctx context.Context, fromDate time.Time, toDate time.Time) ([]*DiscountByProductResponse, error) {
	start, end, err := dateRange(fromDate, toDate)
	if err != nil {
		return nil, err
	}
	started := time.Now()
	defer logSlowReport(ctx, "DiscountByProduct", started, map[string]any{"from": start, "to": end})

	results := []*DiscountByProductResponse{}
	if err := productLineSums(ctx, "voucher_details", "voucher_code", "vouchers", start, end, "total_discount", &results); err != nil {
		return nil, err
	}
	return results, nil
}

// GetTotalDiscount always returns a row; an empty range gives zero sums and a zero count.
func GetTotalDiscount(ctx context.Context, fromDate time.Time, toDate time.Time) (*TotalDiscountResponse, error) {
	sql := `
SELECT
    COALESCE(SUM(v.revenue_reduction), 0) AS total_discount,
    COALESCE(SUM(v.tax_amount), 0) AS total_tax,
    COALESCE(SUM(v.payment_reduction), 0) AS total_amount,
    COUNT(v.code) AS voucher_count
FROM
    vouchers AS v
WHERE
    v.issue_date >= @fromDate AND v.issue_date < @toDate
`
	start, end, err := dateRange(fromDate, toDate)
	if err != nil {
		return nil, err
	}

	result := TotalDiscountResponse{
		TotalDiscount: decimal.Zero,
		TotalTax:      decimal.Zero,
		TotalAmount:   decimal.Zero,
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
