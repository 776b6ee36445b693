package models

import (
	"context"

	"bitbucket.org/mmdatafocus/sales_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type InvoiceDetail struct {
	InvoiceCode string          `gorm:"primaryKey;size:10" json:"invoice_code"`
	ProductCode string          `gorm:"primaryKey;size:10;index" json:"product_code"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"quantity"`
	Unit        string          `gorm:"size:20;not null" json:"unit"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"unit_price"`
}

func (InvoiceDetail) TableName() string {
	return "invoice_details"
}

func (InvoiceDetail) parentColumn() string {
	return "invoice_code"
}

func (d InvoiceDetail) validateReferences(ctx context.Context, tx *gorm.DB) error {
	if err := utils.ValidateResourceId[Invoice](ctx, tx, "code", d.InvoiceCode); err != nil {
		return err
	}
	if err := utils.ValidateResourceId[Product](ctx, tx, "code", d.ProductCode); err != nil {
		return referenceError(err, "product_code", "product not found")
	}
	return nil
}

func mapNewInvoiceDetails(invoiceCode string, lines []NewLineItem) []InvoiceDetail {
	details := make([]InvoiceDetail, 0, len(lines))
	for _, line := range lines {
		details = append(details, InvoiceDetail{
			InvoiceCode: invoiceCode,
			ProductCode: line.ProductCode,
			Quantity:    line.Quantity,
			Unit:        line.Unit,
			UnitPrice:   line.UnitPrice,
		})
	}
	return details
}

// CreateInvoiceDetail adds one line to an existing invoice. The header totals are left as stored.
func CreateInvoiceDetail(ctx context.Context, invoiceCode string, input *NewLineItem) (*InvoiceDetail, error) {
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	detail := mapNewInvoiceDetails(invoiceCode, []NewLineItem{*input})[0]
	return createDetail(ctx, &detail)
}

func GetInvoiceDetails(ctx context.Context, invoiceCode string) ([]*InvoiceDetail, error) {
	return ListDetails[InvoiceDetail](ctx, nil, invoiceCode)
}

func GetInvoiceDetail(ctx context.Context, invoiceCode string, productCode string) (*InvoiceDetail, error) {
	return GetDetail[InvoiceDetail](ctx, invoiceCode, productCode)
}

func UpdateInvoiceDetail(ctx context.Context, invoiceCode string, productCode string, input *LineItemPatch) (*InvoiceDetail, error) {
	return UpdateDetail[InvoiceDetail](ctx, invoiceCode, productCode, input)
}

func DeleteInvoiceDetail(ctx context.Context, invoiceCode string, productCode string) (*InvoiceDetail, error) {
	return DeleteDetail[InvoiceDetail](ctx, invoiceCode, productCode)
}

func DeleteInvoiceDetails(ctx context.Context, invoiceCode string) (int64, error) {
	return DeleteDetailsByParent[InvoiceDetail](ctx, nil, invoiceCode)
}

func GetInvoiceSalesFrequency(ctx context.Context, limit int) ([]*ProductFrequency, error) {
	return SalesFrequency[InvoiceDetail](ctx, limit)
}

func GetInvoiceSalesRevenue(ctx context.Context, limit int) ([]*ProductRevenue, error) {
	return SalesRevenue[InvoiceDetail](ctx, limit)
}
