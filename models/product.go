package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/sales_backend/config"
	"bitbucket.org/mmdatafocus/sales_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	Code        string          `gorm:"primaryKey;size:10" json:"code"`
	Name        string          `gorm:"size:100;not null;index" json:"name"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"unit_price"`
	Unit        string          `gorm:"size:20;not null" json:"unit"`
	Description *string         `gorm:"type:text" json:"description"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewProduct struct {
	Name        string          `json:"name" binding:"required,max=100"`
	UnitPrice   decimal.Decimal `json:"unit_price" binding:"gt=0"`
	Unit        string          `json:"unit" binding:"required,max=20"`
	Description *string         `json:"description"`
}

type ProductPatch struct {
	Name        *string          `json:"name" binding:"omitempty,min=1,max=100"`
	UnitPrice   *decimal.Decimal `json:"unit_price" binding:"omitempty,gt=0"`
	Unit        *string          `json:"unit" binding:"omitempty,min=1,max=20"`
	Description *string          `json:"description"`
}

func CreateProduct(ctx context.Context, input *NewProduct) (*Product, error) {
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}

	var product Product
	err := mintAndCreate(ctx, ProductCodeSeries, config.CodeMintAttempts(), "Product", func() error {
		return runInTx(ctx, "Product", "CreateProduct", input, func(tx *gorm.DB) error {
			code, err := NextCode(ctx, tx, ProductCodeSeries)
			if err != nil {
				return err
			}
			product = Product{
				Code:        code,
				Name:        input.Name,
				UnitPrice:   input.UnitPrice,
				Unit:        input.Unit,
				Description: utils.TrimToNil(input.Description),
			}
			return createHeader(tx, &product)
		})
	})
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func UpdateProduct(ctx context.Context, code string, input *ProductPatch) (*Product, error) {
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}

	changes := patch{}
	setIfPresent(changes, "name", input.Name)
	setIfPresent(changes, "unit_price", input.UnitPrice)
	setIfPresent(changes, "unit", input.Unit)
	if input.Description != nil {
		changes["description"] = utils.TrimToNil(input.Description)
	}

	var product *Product
	err := runInTx(ctx, "Product", "UpdateProduct", input, func(tx *gorm.DB) error {
		var err error
		product, err = utils.FetchModelOrNotFound[Product](ctx, tx, map[string]interface{}{"code": code})
		if err != nil {
			return err
		}
		if len(changes) == 0 {
			return nil
		}
		if err := tx.Model(product).Updates(map[string]interface{}(changes)).Error; err != nil {
			return err
		}
		product, err = utils.FetchModelOrNotFound[Product](ctx, tx, map[string]interface{}{"code": code})
		return err
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct refuses while price lists, discount tiers or line items still reference the product.
func DeleteProduct(ctx context.Context, code string) (*Product, error) {
	var product *Product
	err := runInTx(ctx, "Product", "DeleteProduct", code, func(tx *gorm.DB) error {
		var err error
		product, err = utils.FetchModelOrNotFound[Product](ctx, tx, map[string]interface{}{"code": code})
		if err != nil {
			return err
		}
		if err := ensureProductUnreferenced(ctx, tx, code); err != nil {
			return err
		}
		return tx.Delete(product).Error
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

func ensureProductUnreferenced(ctx context.Context, tx *gorm.DB, code string) error {
	checks := []struct {
		count func() (int64, error)
		name  string
	}{
		{func() (int64, error) { return utils.ResourceCountWhere[PriceListEntry](ctx, tx, "product_code = ?", code) }, "price lists"},
		{func() (int64, error) { return utils.ResourceCountWhere[DiscountTier](ctx, tx, "product_code = ?", code) }, "discount tiers"},
		{func() (int64, error) { return utils.ResourceCountWhere[InvoiceDetail](ctx, tx, "product_code = ?", code) }, "invoice lines"},
		{func() (int64, error) { return utils.ResourceCountWhere[VoucherDetail](ctx, tx, "product_code = ?", code) }, "voucher lines"},
	}
	for _, check := range checks {
		count, err := check.count()
		if err != nil {
			return err
		}
		if count > 0 {
			return utils.NewValidationError("code", "product is used by "+check.name)
		}
	}
	return nil
}

func GetProduct(ctx context.Context, code string) (*Product, error) {
	return utils.FetchModel[Product](ctx, nil, map[string]interface{}{"code": code})
}

func ProductExists(ctx context.Context, code string) (bool, error) {
	return recordExists[Product](ctx, "code", code)
}

func GetProducts(ctx context.Context, page *Page) ([]*Product, error) {
	skip, limit := page.window()
	return utils.FetchModels[Product](ctx, nil, "code", skip, limit)
}

// SearchProducts matches name case-insensitively.
func SearchProducts(ctx context.Context, name string, page *Page) ([]*Product, error) {
	db := config.GetDB()
	skip, limit := page.window()
	results := []*Product{}
	err := db.WithContext(ctx).
		Where("LOWER(name) LIKE ?", utils.LikePattern(name)).
		Order("name").Order("code").
		Offset(skip).Limit(limit).
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
