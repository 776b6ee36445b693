package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/sales_backend/config"
	"bitbucket.org/mmdatafocus/sales_backend/utils"
	"gorm.io/gorm"
)

// temporalModel is an effective-dated row keyed by (product_code, effective_date).
type temporalModel interface {
	PriceListEntry | DiscountTier
}

func temporalKey(productCode string, effectiveDate time.Time) map[string]interface{} {
	return map[string]interface{}{
		"product_code":   productCode,
		"effective_date": utils.NormalizeDate(effectiveDate),
	}
}

// GetTemporalEntry returns the entry with exactly this key, nil when absent.
func GetTemporalEntry[T temporalModel](ctx context.Context, productCode string, effectiveDate time.Time) (*T, error) {
	return utils.FetchModel[T](ctx, nil, temporalKey(productCode, effectiveDate))
}

// ListTemporalEntries returns every entry of productCode, most recent first.
func ListTemporalEntries[T temporalModel](ctx context.Context, productCode string) ([]*T, error) {
	db := config.GetDB()
	results := []*T{}
	err := db.WithContext(ctx).
		Where("product_code = ?", productCode).
		Order("effective_date DESC").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// ListAllTemporalEntries pages through the entries of every product, by product code and
// then most recent first.
func ListAllTemporalEntries[T temporalModel](ctx context.Context, page *Page) ([]*T, error) {
	db := config.GetDB()
	skip, limit := page.window()
	results := []*T{}
	err := db.WithContext(ctx).
		Order("product_code").
		Order("effective_date DESC").
		Offset(skip).Limit(limit).
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// DeleteTemporalEntry removes one entry. A missing entry is ErrorRecordNotFound.
func DeleteTemporalEntry[T temporalModel](ctx context.Context, productCode string, effectiveDate time.Time) (*T, error) {
	var deleted *T
	err := runInTx(ctx, "Temporal", "DeleteTemporalEntry", temporalKey(productCode, effectiveDate), func(tx *gorm.DB) error {
		existing, err := utils.FetchModelOrNotFound[T](ctx, tx, temporalKey(productCode, effectiveDate))
		if err != nil {
			return err
		}
		// zero rows affected is fine here, a concurrent delete already removed it
		var model T
		if err := tx.Where(temporalKey(productCode, effectiveDate)).Delete(&model).Error; err != nil {
			return err
		}
		deleted = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// ensureTemporalKeyFree fails with ErrorDuplicateKey when (productCode, effectiveDate) is taken.
func ensureTemporalKeyFree[T temporalModel](ctx context.Context, tx *gorm.DB, productCode string, effectiveDate time.Time) error {
	existing, err := utils.FetchModel[T](ctx, tx, temporalKey(productCode, effectiveDate))
	if err != nil {
		return err
	}
	if existing != nil {
		return utils.DuplicateKeyError("entry for product %s effective %s already exists",
			productCode, utils.NormalizeDate(effectiveDate).Format("2006-01-02 15:04:05"))
	}
	return nil
}

// updateTemporalEntry applies changes to the entry at the old key. When changes carry a new
// effective_date the new key is checked for collisions first.
func updateTemporalEntry[T temporalModel](ctx context.Context, tx *gorm.DB, productCode string, effectiveDate time.Time, changes patch) (*T, error) {
	oldKey := temporalKey(productCode, effectiveDate)
	if _, err := utils.FetchModelOrNotFound[T](ctx, tx, oldKey); err != nil {
		return nil, err
	}

	newDate := utils.NormalizeDate(effectiveDate)
	if v, ok := changes["effective_date"]; ok {
		newDate = utils.NormalizeDate(v.(time.Time))
		changes["effective_date"] = newDate
		if !newDate.Equal(utils.NormalizeDate(effectiveDate)) {
			if err := ensureTemporalKeyFree[T](ctx, tx, productCode, newDate); err != nil {
				return nil, err
			}
		}
	}

	if len(changes) > 0 {
		var model T
		if err := tx.Model(&model).Where(oldKey).Updates(map[string]interface{}(changes)).Error; err != nil {
			return nil, err
		}
	}

	updated, err := utils.FetchModel[T](ctx, tx, temporalKey(productCode, newDate))
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, errors.New("updated entry not found")
	}
	return updated, nil
}
