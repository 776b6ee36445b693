package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/sales_backend/config"
	"bitbucket.org/mmdatafocus/sales_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PriceListEntry struct {
	ProductCode   string          `gorm:"primaryKey;size:10" json:"product_code"`
	EffectiveDate time.Time       `gorm:"primaryKey" json:"effective_date"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"unit_price"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (PriceListEntry) TableName() string {
	return "price_lists"
}

type NewPriceListEntry struct {
	ProductCode   string          `json:"product_code" binding:"required,max=10"`
	EffectiveDate utils.NaiveTime `json:"effective_date" binding:"required"`
	UnitPrice     decimal.Decimal `json:"unit_price" binding:"gt=0"`
}

type PriceListEntryPatch struct {
	EffectiveDate *utils.NaiveTime `json:"effective_date"`
	UnitPrice     *decimal.Decimal `json:"unit_price" binding:"omitempty,gt=0"`
}

func CreatePriceListEntry(ctx context.Context, input *NewPriceListEntry) (*PriceListEntry, error) {
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}

	entry := PriceListEntry{
		ProductCode:   input.ProductCode,
		EffectiveDate: utils.NormalizeDate(input.EffectiveDate.Time),
		UnitPrice:     input.UnitPrice,
	}

	err := runInTx(ctx, "PriceList", "CreatePriceListEntry", input, func(tx *gorm.DB) error {
		if err := utils.ValidateResourceId[Product](ctx, tx, "code", entry.ProductCode); err != nil {
			return referenceError(err, "product_code", "product not found")
		}
		if err := ensureTemporalKeyFree[PriceListEntry](ctx, tx, entry.ProductCode, entry.EffectiveDate); err != nil {
			return err
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// UpdatePriceListEntry may move the entry to a new effective date.
func UpdatePriceListEntry(ctx context.Context, productCode string, effectiveDate time.Time, input *PriceListEntryPatch) (*PriceListEntry, error) {
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	if err := utils.CheckPatchDate("effective_date", input.EffectiveDate); err != nil {
		return nil, err
	}

	changes := patch{}
	setIfPresent(changes, "effective_date", input.EffectiveDate.Ptr())
	setIfPresent(changes, "unit_price", input.UnitPrice)

	var entry *PriceListEntry
	err := runInTx(ctx, "PriceList", "UpdatePriceListEntry", input, func(tx *gorm.DB) error {
		var err error
		entry, err = updateTemporalEntry[PriceListEntry](ctx, tx, productCode, effectiveDate, changes)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func GetPriceListEntry(ctx context.Context, productCode string, effectiveDate time.Time) (*PriceListEntry, error) {
	return GetTemporalEntry[PriceListEntry](ctx, productCode, effectiveDate)
}

func GetAllPriceListEntries(ctx context.Context, page *Page) ([]*PriceListEntry, error) {
	return ListAllTemporalEntries[PriceListEntry](ctx, page)
}

func GetPriceListEntries(ctx context.Context, productCode string) ([]*PriceListEntry, error) {
	return ListTemporalEntries[PriceListEntry](ctx, productCode)
}

func DeletePriceListEntry(ctx context.Context, productCode string, effectiveDate time.Time) (*PriceListEntry, error) {
	return DeleteTemporalEntry[PriceListEntry](ctx, productCode, effectiveDate)
}

// GetLatestPrice returns the entry with the greatest effective date on or before date.
func GetLatestPrice(ctx context.Context, productCode string, date time.Time) (*PriceListEntry, error) {
	db := config.GetDB()
	results := []*PriceListEntry{}
	err := db.WithContext(ctx).
		Where("product_code = ? AND effective_date <= ?", productCode, utils.NormalizeDate(date)).
		Order("effective_date DESC").
		Limit(1).
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}
