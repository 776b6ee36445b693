package models_test

import (
	"errors"
	"testing"

	"bitbucket.org/mmdatafocus/sales_backend/models"
	"bitbucket.org/mmdatafocus/sales_backend/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvoiceDetail_CRUD(t *testing.T) {
	ctx := setup(t)
	customer := mustCustomer(t, ctx, "Cong ty Minh Long")
	laptop := mustProduct(t, ctx, "Laptop", "15000000")
	mouse := mustProduct(t, ctx, "Mouse", "250000")
	invoice, err := models.CreateInvoice(ctx, newInvoice(customer.Code, day(2024, 4, 10), line(laptop.Code, "1", "1000")))
	require.NoError(t, err)

	added := line(mouse.Code, "2", "250")
	detail, err := models.CreateInvoiceDetail(ctx, invoice.Code, &added)
	require.NoError(t, err)
	assert.Equal(t, invoice.Code, detail.InvoiceCode)

	_, err = models.CreateInvoiceDetail(ctx, invoice.Code, &added)
	assert.True(t, errors.Is(err, utils.ErrorDuplicateKey))

	orphan := line(mouse.Code, "1", "1")
	_, err = models.CreateInvoiceDetail(ctx, "HD0099", &orphan)
	assert.True(t, errors.Is(err, utils.ErrorRecordNotFound))

	quantity := dec("5")
	updated, err := models.UpdateInvoiceDetail(ctx, invoice.Code, mouse.Code, &models.LineItemPatch{Quantity: &quantity})
	require.NoError(t, err)
	assert.True(t, updated.Quantity.Equal(quantity))
	assert.True(t, updated.UnitPrice.Equal(dec("250")))

	_, err = models.UpdateInvoiceDetail(ctx, invoice.Code, "SP0099", &models.LineItemPatch{Quantity: &quantity})
	assert.True(t, errors.Is(err, utils.ErrorRecordNotFound))

	zero := dec("0")
	_, err = models.UpdateInvoiceDetail(ctx, invoice.Code, mouse.Code, &models.LineItemPatch{Quantity: &zero})
	assert.True(t, utils.IsValidationError(err))

	got, err := models.GetInvoiceDetail(ctx, invoice.Code, mouse.Code)
	require.NoError(t, err)
	require.NotNil(t, got)

	_, err = models.DeleteInvoiceDetail(ctx, invoice.Code, mouse.Code)
	require.NoError(t, err)
	got, err = models.GetInvoiceDetail(ctx, invoice.Code, mouse.Code)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDeleteDetailsByParent_CountsRows(t *testing.T) {
	ctx := setup(t)
	customer := mustCustomer(t, ctx, "Cong ty Minh Long")
	laptop := mustProduct(t, ctx, "Laptop", "15000000")
	mouse := mustProduct(t, ctx, "Mouse", "250000")
	invoice, err := models.CreateInvoice(ctx, newInvoice(customer.Code, day(2024, 4, 10),
		line(laptop.Code, "1", "1000"), line(mouse.Code, "1", "10")))
	require.NoError(t, err)

	removed, err := models.DeleteInvoiceDetails(ctx, invoice.Code)
	require.NoError(t, err)
	assert.EqualValues(t, 2, removed)

	removed, err = models.DeleteInvoiceDetails(ctx, invoice.Code)
	require.NoError(t, err)
	assert.Zero(t, removed)

	removed, err = models.DeleteVoucherDetails(ctx, "PG0099")
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestSalesFrequencyAndRevenue(t *testing.T) {
	ctx := setup(t)
	customer := mustCustomer(t, ctx, "Cong ty Minh Long")
	laptop := mustProduct(t, ctx, "Laptop", "15000000")
	mouse := mustProduct(t, ctx, "Mouse", "250000")

	_, err := models.CreateInvoice(ctx, newInvoice(customer.Code, day(2024, 4, 10),
		line(laptop.Code, "1", "1000"), line(mouse.Code, "3", "20")))
	require.NoError(t, err)
	_, err = models.CreateInvoice(ctx, newInvoice(customer.Code, day(2024, 4, 11), line(mouse.Code, "5", "20")))
	require.NoError(t, err)

	frequency, err := models.GetInvoiceSalesFrequency(ctx, 0)
	require.NoError(t, err)
	require.Len(t, frequency, 2)
	assert.Equal(t, mouse.Code, frequency[0].ProductCode)
	assert.Equal(t, "Mouse", frequency[0].ProductName)
	assert.EqualValues(t, 2, frequency[0].Frequency)

	revenue, err := models.GetInvoiceSalesRevenue(ctx, 1)
	require.NoError(t, err)
	require.Len(t, revenue, 1)
	assert.Equal(t, laptop.Code, revenue[0].ProductCode)
	assert.True(t, revenue[0].Revenue.Equal(dec("1000")))

	revenue, err = models.GetInvoiceSalesRevenue(ctx, 10)
	require.NoError(t, err)
	require.Len(t, revenue, 2)
	assert.True(t, revenue[1].Quantity.Equal(dec("8")))
	assert.True(t, revenue[1].Revenue.Equal(dec("160")))

	empty, err := models.GetVoucherDiscountFrequency(ctx, 5)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
