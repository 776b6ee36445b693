package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/sales_backend/config"
	"bitbucket.org/mmdatafocus/sales_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DiscountTier grants DiscountRate percent on purchases of at least Threshold, from
// EffectiveDate until a later tier of the same product supersedes it.
type DiscountTier struct {
	ProductCode   string          `gorm:"primaryKey;size:10" json:"product_code"`
	EffectiveDate time.Time       `gorm:"primaryKey" json:"effective_date"`
	Threshold     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"threshold"`
	DiscountRate  decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"discount_rate"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (DiscountTier) TableName() string {
	return "discount_tiers"
}

type NewDiscountTier struct {
	ProductCode   string          `json:"product_code" binding:"required,max=10"`
	EffectiveDate utils.NaiveTime `json:"effective_date" binding:"required"`
	Threshold     decimal.Decimal `json:"threshold" binding:"gte=0"`
	DiscountRate  decimal.Decimal `json:"discount_rate" binding:"gte=0,lte=100"`
}

type DiscountTierPatch struct {
	EffectiveDate *utils.NaiveTime `json:"effective_date"`
	Threshold     *decimal.Decimal `json:"threshold" binding:"omitempty,gte=0"`
	DiscountRate  *decimal.Decimal `json:"discount_rate" binding:"omitempty,gte=0,lte=100"`
}

func CreateDiscountTier(ctx context.Context, input *NewDiscountTier) (*DiscountTier, error) {
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}

	tier := DiscountTier{
		ProductCode:   input.ProductCode,
		EffectiveDate: utils.NormalizeDate(input.EffectiveDate.Time),
		Threshold:     input.Threshold,
		DiscountRate:  input.DiscountRate,
	}

	err := runInTx(ctx, "DiscountTier", "CreateDiscountTier", input, func(tx *gorm.DB) error {
		if err := utils.ValidateResourceId[Product](ctx, tx, "code", tier.ProductCode); err != nil {
			return referenceError(err, "product_code", "product not found")
		}
		if err := ensureTemporalKeyFree[DiscountTier](ctx, tx, tier.ProductCode, tier.EffectiveDate); err != nil {
			return err
		}
		return tx.Create(&tier).Error
	})
	if err != nil {
		return nil, err
	}
	return &tier, nil
}

func UpdateDiscountTier(ctx context.Context, productCode string, effectiveDate time.Time, input *DiscountTierPatch) (*DiscountTier, error) {
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	if err := utils.CheckPatchDate("effective_date", input.EffectiveDate); err != nil {
		return nil, err
	}

	changes := patch{}
	setIfPresent(changes, "effective_date", input.EffectiveDate.Ptr())
	setIfPresent(changes, "threshold", input.Threshold)
	setIfPresent(changes, "discount_rate", input.DiscountRate)

	var tier *DiscountTier
	err := runInTx(ctx, "DiscountTier", "UpdateDiscountTier", input, func(tx *gorm.DB) error {
		var err error
		tier, err = updateTemporalEntry[DiscountTier](ctx, tx, productCode, effectiveDate, changes)
		return err
	})
	if err != nil {
		return nil, err
	}
	return tier, nil
}

func GetDiscountTier(ctx context.Context, productCode string, effectiveDate time.Time) (*DiscountTier, error) {
	return GetTemporalEntry[DiscountTier](ctx, productCode, effectiveDate)
}

func GetAllDiscountTiers(ctx context.Context, page *Page) ([]*DiscountTier, error) {
	return ListAllTemporalEntries[DiscountTier](ctx, page)
}

func GetDiscountTiers(ctx context.Context, productCode string) ([]*DiscountTier, error) {
	return ListTemporalEntries[DiscountTier](ctx, productCode)
}

func DeleteDiscountTier(ctx context.Context, productCode string, effectiveDate time.Time) (*DiscountTier, error) {
	return DeleteTemporalEntry[DiscountTier](ctx, productCode, effectiveDate)
}

// GetApplicableDiscount picks, among tiers effective on or before date (and with a
// threshold not above amount when given), the most recent one, then the highest threshold.
func GetApplicableDiscount(ctx context.Context, productCode string, date time.Time, amount *decimal.Decimal) (*DiscountTier, error) {
	db := config.GetDB()
	query := db.WithContext(ctx).
		Where("product_code = ? AND effective_date <= ?", productCode, utils.NormalizeDate(date))
	if amount != nil {
		query = query.Where("threshold <= ?", *amount)
	}

	results := []*DiscountTier{}
	err := query.Order("effective_date DESC").Order("threshold DESC").Limit(1).Find(&results).Error
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}
