package models_test

import (
	"context"
	"testing"
	"time"

	"bitbucket.org/mmdatafocus/sales_backend/models"
	"bitbucket.org/mmdatafocus/sales_backend/testutil"
	"bitbucket.org/mmdatafocus/sales_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func strPtr(s string) *string {
	return &s
}

// setup opens an empty database with the default chart of accounts.
func setup(t *testing.T) context.Context {
	t.Helper()
	testutil.OpenDB(t)
	ctx := testutil.Context()
	for _, acc := range []models.NewAccount{
		{Code: "131", Name: "Receivables", Level: 1},
		{Code: "511", Name: "Revenue", Level: 1},
		{Code: "521", Name: "Revenue deductions", Level: 1},
		{Code: "3331", Name: "Output VAT", Level: 2},
	} {
		acc := acc
		_, err := models.CreateAccount(ctx, &acc)
		require.NoError(t, err)
	}
	return ctx
}

func mustCustomer(t *testing.T, ctx context.Context, name string) *models.Customer {
	t.Helper()
	customer, err := models.CreateCustomer(ctx, &models.NewCustomer{Name: name, Address: "12 Le Loi, District 1"})
	require.NoError(t, err)
	return customer
}

func mustProduct(t *testing.T, ctx context.Context, name string, price string) *models.Product {
	t.Helper()
	product, err := models.CreateProduct(ctx, &models.NewProduct{Name: name, UnitPrice: dec(price), Unit: "pcs"})
	require.NoError(t, err)
	return product
}

// newInvoice builds a consistent invoice: revenue from the lines, 10% tax and no discount.
func newInvoice(customerCode string, issued time.Time, lines ...models.NewLineItem) *models.NewInvoice {
	revenue := decimal.Zero
	for _, line := range lines {
		revenue = revenue.Add(line.Quantity.Mul(line.UnitPrice))
	}
	tax := revenue.Div(decimal.NewFromInt(10))
	return &models.NewInvoice{
		IssueDate:      utils.NewNaiveTime(issued),
		CustomerCode:   customerCode,
		PaymentMethod:  "cash",
		DebitAccount:   "131",
		RevenueAccount: "511",
		TaxAccount:     "3331",
		TaxRate:        dec("10"),
		TaxAmount:      tax,
		RevenueAmount:  revenue,
		PaymentTotal:   revenue.Add(tax),
		Details:        lines,
	}
}

func line(productCode string, quantity string, unitPrice string) models.NewLineItem {
	return models.NewLineItem{ProductCode: productCode, Quantity: dec(quantity), Unit: "pcs", UnitPrice: dec(unitPrice)}
}
