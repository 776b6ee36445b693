package models

import (
	"context"

	"bitbucket.org/mmdatafocus/sales_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type VoucherDetail struct {
	VoucherCode string          `gorm:"primaryKey;size:10" json:"voucher_code"`
	ProductCode string          `gorm:"primaryKey;size:10;index" json:"product_code"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"quantity"`
	Unit        string          `gorm:"size:20;not null" json:"unit"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"unit_price"`
}

func (VoucherDetail) TableName() string {
	return "voucher_details"
}

func (VoucherDetail) parentColumn() string {
	return "voucher_code"
}

func (d VoucherDetail) validateReferences(ctx context.Context, tx *gorm.DB) error {
	if err := utils.ValidateResourceId[Voucher](ctx, tx, "code", d.VoucherCode); err != nil {
		return err
	}
	if err := utils.ValidateResourceId[Product](ctx, tx, "code", d.ProductCode); err != nil {
		return referenceError(err, "product_code", "product not found")
	}
	return nil
}

func mapNewVoucherDetails(voucherCode string, lines []NewLineItem) []VoucherDetail {
	details := make([]VoucherDetail, 0, len(lines))
	for _, line := range lines {
		details = append(details, VoucherDetail{
			VoucherCode: voucherCode,
			ProductCode: line.ProductCode,
			Quantity:    line.Quantity,
			Unit:        line.Unit,
			UnitPrice:   line.UnitPrice,
		})
	}
	return details
}

func CreateVoucherDetail(ctx context.Context, voucherCode string, input *NewLineItem) (*VoucherDetail, error) {
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	detail := mapNewVoucherDetails(voucherCode, []NewLineItem{*input})[0]
	return createDetail(ctx, &detail)
}

func GetVoucherDetails(ctx context.Context, voucherCode string) ([]*VoucherDetail, error) {
	return ListDetails[VoucherDetail](ctx, nil, voucherCode)
}

func GetVoucherDetail(ctx context.Context, voucherCode string, productCode string) (*VoucherDetail, error) {
	return GetDetail[VoucherDetail](ctx, voucherCode, productCode)
}

func UpdateVoucherDetail(ctx context.Context, voucherCode string, productCode string, input *LineItemPatch) (*VoucherDetail, error) {
	return UpdateDetail[VoucherDetail](ctx, voucherCode, productCode, input)
}

func DeleteVoucherDetail(ctx context.Context, voucherCode string, productCode string) (*VoucherDetail, error) {
	return DeleteDetail[VoucherDetail](ctx, voucherCode, productCode)
}

func DeleteVoucherDetails(ctx context.Context, voucherCode string) (int64, error) {
	return DeleteDetailsByParent[VoucherDetail](ctx, nil, voucherCode)
}

// GetVoucherDiscountFrequency ranks products by how many vouchers discount them.
func GetVoucherDiscountFrequency(ctx context.Context, limit int) ([]*ProductFrequency, error) {
	return SalesFrequency[VoucherDetail](ctx, limit)
}

func GetVoucherDiscountRevenue(ctx context.Context, limit int) ([]*ProductRevenue, error) {
	return SalesRevenue[VoucherDetail](ctx, limit)
}
