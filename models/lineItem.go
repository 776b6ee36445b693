package models

import (
	"context"

	"bitbucket.org/mmdatafocus/sales_backend/config"
	"bitbucket.org/mmdatafocus/sales_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// lineItemModel is a document line keyed by (parent code, product code).
type lineItemModel interface {
	InvoiceDetail | VoucherDetail
	TableName() string
	parentColumn() string
	validateReferences(ctx context.Context, tx *gorm.DB) error
}

type NewLineItem struct {
	ProductCode string          `json:"product_code" binding:"required,max=10"`
	Quantity    decimal.Decimal `json:"quantity" binding:"gt=0"`
	Unit        string          `json:"unit" binding:"required,max=20"`
	UnitPrice   decimal.Decimal `json:"unit_price" binding:"gt=0"`
}

type LineItemPatch struct {
	Quantity  *decimal.Decimal `json:"quantity" binding:"omitempty,gt=0"`
	Unit      *string          `json:"unit" binding:"omitempty,min=1,max=20"`
	UnitPrice *decimal.Decimal `json:"unit_price" binding:"omitempty,gt=0"`
}

type ProductFrequency struct {
	ProductCode string `json:"product_code"`
	ProductName string `json:"product_name"`
	Frequency   int64  `json:"frequency"`
}

type ProductRevenue struct {
	ProductCode string          `json:"product_code"`
	ProductName string          `json:"product_name"`
	Quantity    decimal.Decimal `json:"quantity"`
	Revenue     decimal.Decimal `json:"revenue"`
}

func detailKey[T lineItemModel](parentCode string, productCode string) map[string]interface{} {
	var model T
	return map[string]interface{}{
		model.parentColumn(): parentCode,
		"product_code":       productCode,
	}
}

// validateLines rejects a line set that repeats a product.
func validateLines(lines []NewLineItem) error {
	seen := make(map[string]bool, len(lines))
	for _, line := range lines {
		if seen[line.ProductCode] {
			return utils.NewValidationError("details", "product "+line.ProductCode+" appears more than once")
		}
		seen[line.ProductCode] = true
	}
	return nil
}

func validateLineProducts(ctx context.Context, tx *gorm.DB, lines []NewLineItem) error {
	codes := make([]string, 0, len(lines))
	for _, line := range lines {
		codes = append(codes, line.ProductCode)
	}
	if err := utils.ValidateResourcesId[Product](ctx, tx, "code", codes); err != nil {
		return referenceError(err, "details", "product not found")
	}
	return nil
}

// ListDetails returns the lines of parentCode in product order. db may be a transaction.
func ListDetails[T lineItemModel](ctx context.Context, db *gorm.DB, parentCode string) ([]*T, error) {
	if db == nil {
		db = config.GetDB()
	}
	var model T
	results := []*T{}
	err := db.WithContext(ctx).
		Where(model.parentColumn()+" = ?", parentCode).
		Order("product_code").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func GetDetail[T lineItemModel](ctx context.Context, parentCode string, productCode string) (*T, error) {
	return utils.FetchModel[T](ctx, nil, detailKey[T](parentCode, productCode))
}

func createDetail[T lineItemModel](ctx context.Context, item *T) (*T, error) {
	var model T
	err := runInTx(ctx, "LineItem", "CreateDetail", item, func(tx *gorm.DB) error {
		if err := (*item).validateReferences(ctx, tx); err != nil {
			return err
		}
		if err := tx.Create(item).Error; err != nil {
			if isDuplicateKey(utils.TranslateError(err)) {
				return utils.DuplicateKeyError("line already exists in %s", model.TableName())
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateDetail patches quantity, unit or unit price. A missing line is ErrorRecordNotFound.
func UpdateDetail[T lineItemModel](ctx context.Context, parentCode string, productCode string, input *LineItemPatch) (*T, error) {
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}

	changes := patch{}
	setIfPresent(changes, "quantity", input.Quantity)
	setIfPresent(changes, "unit", input.Unit)
	setIfPresent(changes, "unit_price", input.UnitPrice)

	key := detailKey[T](parentCode, productCode)
	var item *T
	err := runInTx(ctx, "LineItem", "UpdateDetail", key, func(tx *gorm.DB) error {
		if _, err := utils.FetchModelOrNotFound[T](ctx, tx, key); err != nil {
			return err
		}
		if len(changes) > 0 {
			var model T
			if err := tx.Model(&model).Where(key).Updates(map[string]interface{}(changes)).Error; err != nil {
				return err
			}
		}
		var err error
		item, err = utils.FetchModelOrNotFound[T](ctx, tx, key)
		return err
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

func DeleteDetail[T lineItemModel](ctx context.Context, parentCode string, productCode string) (*T, error) {
	key := detailKey[T](parentCode, productCode)
	var item *T
	err := runInTx(ctx, "LineItem", "DeleteDetail", key, func(tx *gorm.DB) error {
		var err error
		item, err = utils.FetchModelOrNotFound[T](ctx, tx, key)
		if err != nil {
			return err
		}
		var model T
		return tx.Where(key).Delete(&model).Error
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// DeleteDetailsByParent removes every line of parentCode and returns how many went.
// Zero lines is not an error. Pass a transaction to make it atomic with the header delete.
func DeleteDetailsByParent[T lineItemModel](ctx context.Context, db *gorm.DB, parentCode string) (int64, error) {
	if db == nil {
		db = config.GetDB()
	}
	var model T
	result := db.WithContext(ctx).Where(model.parentColumn()+" = ?", parentCode).Delete(&model)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// SalesFrequency ranks products by how many documents carry them.
func SalesFrequency[T lineItemModel](ctx context.Context, limit int) ([]*ProductFrequency, error) {
	db := config.GetDB()
	var model T
	results := []*ProductFrequency{}
	err := db.WithContext(ctx).
		Table(model.TableName()+" AS d").
		Select("d.product_code AS product_code, COALESCE(MAX(p.name), '') AS product_name, COUNT(*) AS frequency").
		Joins("LEFT JOIN products p ON p.code = d.product_code").
		Group("d.product_code").
		Order("frequency DESC").Order("d.product_code").
		Limit(rankLimit(limit)).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// SalesRevenue ranks products by sum(quantity * unit_price).
func SalesRevenue[T lineItemModel](ctx context.Context, limit int) ([]*ProductRevenue, error) {
	db := config.GetDB()
	var model T
	results := []*ProductRevenue{}
	err := db.WithContext(ctx).
		Table(model.TableName()+" AS d").
		Select("d.product_code AS product_code, COALESCE(MAX(p.name), '') AS product_name, " +
			"COALESCE(SUM(d.quantity), 0) AS quantity, COALESCE(SUM(d.quantity * d.unit_price), 0) AS revenue").
		Joins("LEFT JOIN products p ON p.code = d.product_code").
		Group("d.product_code").
		Order("revenue DESC").Order("d.product_code").
		Limit(rankLimit(limit)).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
