package models_test

import (
	"errors"
	"fmt"
	"testing"

	"bitbucket.org/mmdatafocus/sales_backend/config"
	"bitbucket.org/mmdatafocus/sales_backend/models"
	"bitbucket.org/mmdatafocus/sales_backend/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestNextCode_EmptyTableStartsAtOne(t *testing.T) {
	ctx := setup(t)
	db := config.GetDB()

	code, err := models.NextCode(ctx, db, models.ProductCodeSeries)
	require.NoError(t, err)
	assert.Equal(t, "SP0001", code)
}

func TestNextCode_FollowsHighestExistingCode(t *testing.T) {
	ctx := setup(t)
	db := config.GetDB()

	for i := 1; i <= 9; i++ {
		require.NoError(t, db.Create(&models.Product{
			Code: fmt.Sprintf("SP%04d", i), Name: "p", UnitPrice: dec("1"), Unit: "pcs",
		}).Error)
	}
	// a code of another width never takes part
	require.NoError(t, db.Create(&models.Product{Code: "SP99999", Name: "legacy", UnitPrice: dec("1"), Unit: "pcs"}).Error)

	var code string
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		code, err = models.NextCode(ctx, tx, models.ProductCodeSeries)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, "SP0010", code)
}

func TestNextCode_Exhausted(t *testing.T) {
	ctx := setup(t)
	db := config.GetDB()
	require.NoError(t, db.Create(&models.Customer{Code: "KH9999", Name: "last", Address: "x"}).Error)

	_, err := models.NextCode(ctx, db, models.CustomerCodeSeries)
	require.Error(t, err)
	assert.True(t, errors.Is(err, utils.ErrorCodeSequenceExhausted))
}

func TestCreateProduct_MintsSequentialCodes(t *testing.T) {
	ctx := setup(t)

	first := mustProduct(t, ctx, "Laptop", "15000000")
	second := mustProduct(t, ctx, "Mouse", "250000")
	assert.Equal(t, "SP0001", first.Code)
	assert.Equal(t, "SP0002", second.Code)

	customer := mustCustomer(t, ctx, "Cong ty An Phat")
	assert.Equal(t, "KH0001", customer.Code)
}

func TestMintAndCreate_RetriesOnlyCodeCollisions(t *testing.T) {
	ctx := setup(t)
	db := config.GetDB()
	taken := mustCustomer(t, ctx, "Cong ty An Phat")

	calls := 0
	err := models.MintAndCreate(ctx, models.CustomerCodeSeries, 3, "Customer", func() error {
		calls++
		return models.CreateHeader(db, &models.Customer{Code: taken.Code, Name: "again", Address: "x"})
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, utils.ErrorDuplicateKey))
	assert.Equal(t, 3, calls)

	calls = 0
	err = models.MintAndCreate(ctx, models.CustomerCodeSeries, 3, "Customer", func() error {
		calls++
		return utils.DuplicateKeyError("tax_code %s already exists", "0301234567")
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, utils.ErrorDuplicateKey))
	assert.Equal(t, 1, calls)
}

func TestCreateCustomer_DuplicateTaxCodeKeepsCounter(t *testing.T) {
	ctx := setup(t)
	_, err := models.CreateCustomer(ctx, &models.NewCustomer{Name: "An Phat", Address: "x", TaxCode: strPtr("0301234567")})
	require.NoError(t, err)

	_, err = models.CreateCustomer(ctx, &models.NewCustomer{Name: "Copy", Address: "y", TaxCode: strPtr("0301234567")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, utils.ErrorDuplicateKey))

	next := mustCustomer(t, ctx, "Binh Minh")
	assert.Equal(t, "KH0002", next.Code)
}

func TestPeekNextCode_DoesNotConsume(t *testing.T) {
	ctx := setup(t)

	code, err := models.PeekNextCode(ctx, models.CustomerCodeSeries)
	require.NoError(t, err)
	assert.Equal(t, "KH0001", code)

	code, err = models.PeekNextCode(ctx, models.CustomerCodeSeries)
	require.NoError(t, err)
	assert.Equal(t, "KH0001", code)

	customer := mustCustomer(t, ctx, "Cong ty An Phat")
	assert.Equal(t, "KH0001", customer.Code)

	code, err = models.PeekNextCode(ctx, models.CustomerCodeSeries)
	require.NoError(t, err)
	assert.Equal(t, "KH0002", code)

	code, err = models.PeekNextCode(ctx, models.VoucherCodeSeries)
	require.NoError(t, err)
	assert.Equal(t, "PG0001", code)
}
