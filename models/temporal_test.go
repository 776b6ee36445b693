package models_test

import (
	"errors"
	"testing"

	"bitbucket.org/mmdatafocus/sales_backend/models"
	"bitbucket.org/mmdatafocus/sales_backend/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceList_DuplicateKeyRejected(t *testing.T) {
	ctx := setup(t)
	product := mustProduct(t, ctx, "Printer", "3000000")

	input := &models.NewPriceListEntry{
		ProductCode:   product.Code,
		EffectiveDate: utils.NewNaiveTime(day(2024, 1, 1)),
		UnitPrice:     dec("3100000"),
	}
	_, err := models.CreatePriceListEntry(ctx, input)
	require.NoError(t, err)

	_, err = models.CreatePriceListEntry(ctx, input)
	require.Error(t, err)
	assert.True(t, errors.Is(err, utils.ErrorDuplicateKey))

	entries, err := models.GetPriceListEntries(ctx, product.Code)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestPriceList_UnknownProduct(t *testing.T) {
	ctx := setup(t)
	_, err := models.CreatePriceListEntry(ctx, &models.NewPriceListEntry{
		ProductCode:   "SP0042",
		EffectiveDate: utils.NewNaiveTime(day(2024, 1, 1)),
		UnitPrice:     dec("1"),
	})
	assert.True(t, utils.IsValidationError(err))
}

func TestPriceList_NonPositivePrice(t *testing.T) {
	ctx := setup(t)
	product := mustProduct(t, ctx, "Printer", "3000000")
	_, err := models.CreatePriceListEntry(ctx, &models.NewPriceListEntry{
		ProductCode:   product.Code,
		EffectiveDate: utils.NewNaiveTime(day(2024, 1, 1)),
		UnitPrice:     dec("0"),
	})
	assert.True(t, utils.IsValidationError(err))
}

func TestGetLatestPrice(t *testing.T) {
	ctx := setup(t)
	product := mustProduct(t, ctx, "Toner", "500000")

	for _, e := range []struct {
		date  int
		price string
	}{{1, "500000"}, {15, "520000"}, {28, "540000"}} {
		_, err := models.CreatePriceListEntry(ctx, &models.NewPriceListEntry{
			ProductCode:   product.Code,
			EffectiveDate: utils.NewNaiveTime(day(2024, 2, e.date)),
			UnitPrice:     dec(e.price),
		})
		require.NoError(t, err)
	}

	latest, err := models.GetLatestPrice(ctx, product.Code, day(2024, 2, 20))
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.True(t, latest.UnitPrice.Equal(dec("520000")))

	latest, err = models.GetLatestPrice(ctx, product.Code, day(2024, 2, 15))
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.True(t, latest.UnitPrice.Equal(dec("520000")), "an entry effective on the reference date applies")

	latest, err = models.GetLatestPrice(ctx, product.Code, day(2024, 1, 31))
	require.NoError(t, err)
	assert.Nil(t, latest)
}

func TestPriceList_UpdateMovesKey(t *testing.T) {
	ctx := setup(t)
	product := mustProduct(t, ctx, "Toner", "500000")
	for _, d := range []int{1, 10} {
		_, err := models.CreatePriceListEntry(ctx, &models.NewPriceListEntry{
			ProductCode:   product.Code,
			EffectiveDate: utils.NewNaiveTime(day(2024, 3, d)),
			UnitPrice:     dec("500000"),
		})
		require.NoError(t, err)
	}

	taken := utils.NewNaiveTime(day(2024, 3, 10))
	_, err := models.UpdatePriceListEntry(ctx, product.Code, day(2024, 3, 1), &models.PriceListEntryPatch{EffectiveDate: &taken})
	assert.True(t, errors.Is(err, utils.ErrorDuplicateKey))

	free := utils.NewNaiveTime(day(2024, 3, 5))
	price := dec("510000")
	updated, err := models.UpdatePriceListEntry(ctx, product.Code, day(2024, 3, 1), &models.PriceListEntryPatch{
		EffectiveDate: &free,
		UnitPrice:     &price,
	})
	require.NoError(t, err)
	assert.True(t, updated.EffectiveDate.Equal(day(2024, 3, 5)))
	assert.True(t, updated.UnitPrice.Equal(price))

	old, err := models.GetPriceListEntry(ctx, product.Code, day(2024, 3, 1))
	require.NoError(t, err)
	assert.Nil(t, old)

	_, err = models.UpdatePriceListEntry(ctx, product.Code, day(2024, 3, 2), &models.PriceListEntryPatch{UnitPrice: &price})
	assert.True(t, errors.Is(err, utils.ErrorRecordNotFound))
}

func TestPriceList_Delete(t *testing.T) {
	ctx := setup(t)
	product := mustProduct(t, ctx, "Toner", "500000")
	_, err := models.CreatePriceListEntry(ctx, &models.NewPriceListEntry{
		ProductCode:   product.Code,
		EffectiveDate: utils.NewNaiveTime(day(2024, 3, 1)),
		UnitPrice:     dec("500000"),
	})
	require.NoError(t, err)

	deleted, err := models.DeletePriceListEntry(ctx, product.Code, day(2024, 3, 1))
	require.NoError(t, err)
	assert.Equal(t, product.Code, deleted.ProductCode)

	_, err = models.DeletePriceListEntry(ctx, product.Code, day(2024, 3, 1))
	assert.True(t, errors.Is(err, utils.ErrorRecordNotFound))
}

func TestGetApplicableDiscount(t *testing.T) {
	ctx := setup(t)
	product := mustProduct(t, ctx, "Paper A4", "80000")

	tiers := []models.NewDiscountTier{
		{ProductCode: product.Code, EffectiveDate: utils.NewNaiveTime(day(2024, 1, 1)), Threshold: dec("0"), DiscountRate: dec("2")},
		{ProductCode: product.Code, EffectiveDate: utils.NewNaiveTime(day(2024, 1, 2)), Threshold: dec("1000000"), DiscountRate: dec("5")},
		{ProductCode: product.Code, EffectiveDate: utils.NewNaiveTime(day(2024, 6, 1)), Threshold: dec("5000000"), DiscountRate: dec("8")},
	}
	for i := range tiers {
		_, err := models.CreateDiscountTier(ctx, &tiers[i])
		require.NoError(t, err)
	}

	amount := dec("2000000")
	tier, err := models.GetApplicableDiscount(ctx, product.Code, day(2024, 3, 1), &amount)
	require.NoError(t, err)
	require.NotNil(t, tier)
	assert.True(t, tier.DiscountRate.Equal(dec("5")))

	small := dec("500000")
	tier, err = models.GetApplicableDiscount(ctx, product.Code, day(2024, 3, 1), &small)
	require.NoError(t, err)
	require.NotNil(t, tier)
	assert.True(t, tier.DiscountRate.Equal(dec("2")))

	// the June tier is the most recent but its threshold is not met
	tier, err = models.GetApplicableDiscount(ctx, product.Code, day(2024, 7, 1), &amount)
	require.NoError(t, err)
	require.NotNil(t, tier)
	assert.True(t, tier.DiscountRate.Equal(dec("5")))

	tier, err = models.GetApplicableDiscount(ctx, product.Code, day(2023, 12, 31), &amount)
	require.NoError(t, err)
	assert.Nil(t, tier)
}

func TestDiscountTier_RateOutOfRange(t *testing.T) {
	ctx := setup(t)
	product := mustProduct(t, ctx, "Paper A4", "80000")
	_, err := models.CreateDiscountTier(ctx, &models.NewDiscountTier{
		ProductCode:   product.Code,
		EffectiveDate: utils.NewNaiveTime(day(2024, 1, 1)),
		Threshold:     dec("0"),
		DiscountRate:  dec("101"),
	})
	assert.True(t, utils.IsValidationError(err))
}

func TestPriceList_UpdateRejectsZeroDate(t *testing.T) {
	ctx := setup(t)
	product := mustProduct(t, ctx, "Toner", "500000")
	_, err := models.CreatePriceListEntry(ctx, &models.NewPriceListEntry{
		ProductCode:   product.Code,
		EffectiveDate: utils.NewNaiveTime(day(2024, 3, 1)),
		UnitPrice:     dec("500000"),
	})
	require.NoError(t, err)

	_, err = models.UpdatePriceListEntry(ctx, product.Code, day(2024, 3, 1), &models.PriceListEntryPatch{EffectiveDate: &utils.NaiveTime{}})
	assert.True(t, utils.IsValidationError(err))

	kept, err := models.GetPriceListEntry(ctx, product.Code, day(2024, 3, 1))
	require.NoError(t, err)
	assert.NotNil(t, kept)
}

func TestDiscountTier_DuplicateKeyRejected(t *testing.T) {
	ctx := setup(t)
	product := mustProduct(t, ctx, "Paper A4", "80000")

	input := &models.NewDiscountTier{
		ProductCode:   product.Code,
		EffectiveDate: utils.NewNaiveTime(day(2024, 1, 1)),
		Threshold:     dec("1000000"),
		DiscountRate:  dec("5"),
	}
	_, err := models.CreateDiscountTier(ctx, input)
	require.NoError(t, err)

	_, err = models.CreateDiscountTier(ctx, input)
	assert.True(t, errors.Is(err, utils.ErrorDuplicateKey))

	tiers, err := models.GetDiscountTiers(ctx, product.Code)
	require.NoError(t, err)
	assert.Len(t, tiers, 1)
}

func TestDiscountTier_UpdateMovesKey(t *testing.T) {
	ctx := setup(t)
	product := mustProduct(t, ctx, "Paper A4", "80000")
	for _, d := range []int{1, 10} {
		_, err := models.CreateDiscountTier(ctx, &models.NewDiscountTier{
			ProductCode:   product.Code,
			EffectiveDate: utils.NewNaiveTime(day(2024, 3, d)),
			Threshold:     dec("0"),
			DiscountRate:  dec("3"),
		})
		require.NoError(t, err)
	}

	taken := utils.NewNaiveTime(day(2024, 3, 10))
	_, err := models.UpdateDiscountTier(ctx, product.Code, day(2024, 3, 1), &models.DiscountTierPatch{EffectiveDate: &taken})
	assert.True(t, errors.Is(err, utils.ErrorDuplicateKey))

	_, err = models.UpdateDiscountTier(ctx, product.Code, day(2024, 3, 1), &models.DiscountTierPatch{EffectiveDate: &utils.NaiveTime{}})
	assert.True(t, utils.IsValidationError(err))

	free := utils.NewNaiveTime(day(2024, 3, 5))
	rate := dec("4.5")
	updated, err := models.UpdateDiscountTier(ctx, product.Code, day(2024, 3, 1), &models.DiscountTierPatch{
		EffectiveDate: &free,
		DiscountRate:  &rate,
	})
	require.NoError(t, err)
	assert.True(t, updated.EffectiveDate.Equal(day(2024, 3, 5)))
	assert.True(t, updated.DiscountRate.Equal(rate))

	old, err := models.GetDiscountTier(ctx, product.Code, day(2024, 3, 1))
	require.NoError(t, err)
	assert.Nil(t, old)

	_, err = models.UpdateDiscountTier(ctx, product.Code, day(2024, 3, 2), &models.DiscountTierPatch{DiscountRate: &rate})
	assert.True(t, errors.Is(err, utils.ErrorRecordNotFound))
}

func TestListAllTemporalEntries(t *testing.T) {
	ctx := setup(t)
	toner := mustProduct(t, ctx, "Toner", "500000")
	paper := mustProduct(t, ctx, "Paper A4", "80000")

	for _, entry := range []models.NewPriceListEntry{
		{ProductCode: paper.Code, EffectiveDate: utils.NewNaiveTime(day(2024, 1, 1)), UnitPrice: dec("80000")},
		{ProductCode: toner.Code, EffectiveDate: utils.NewNaiveTime(day(2024, 1, 1)), UnitPrice: dec("500000")},
		{ProductCode: toner.Code, EffectiveDate: utils.NewNaiveTime(day(2024, 6, 1)), UnitPrice: dec("520000")},
	} {
		entry := entry
		_, err := models.CreatePriceListEntry(ctx, &entry)
		require.NoError(t, err)
	}
	_, err := models.CreateDiscountTier(ctx, &models.NewDiscountTier{
		ProductCode:   paper.Code,
		EffectiveDate: utils.NewNaiveTime(day(2024, 2, 1)),
		Threshold:     dec("0"),
		DiscountRate:  dec("2"),
	})
	require.NoError(t, err)

	prices, err := models.GetAllPriceListEntries(ctx, nil)
	require.NoError(t, err)
	require.Len(t, prices, 3)
	// toner was created first, so it holds the lower code
	assert.Equal(t, toner.Code, prices[0].ProductCode)
	assert.True(t, prices[0].EffectiveDate.Equal(day(2024, 6, 1)))
	assert.Equal(t, paper.Code, prices[2].ProductCode)

	paged, err := models.GetAllPriceListEntries(ctx, &models.Page{Skip: 2, Limit: 5})
	require.NoError(t, err)
	assert.Len(t, paged, 1)

	tiers, err := models.GetAllDiscountTiers(ctx, nil)
	require.NoError(t, err)
	require.Len(t, tiers, 1)
	assert.Equal(t, paper.Code, tiers[0].ProductCode)
}
