package utils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type priceInput struct {
	Code      string           `json:"code" binding:"required,max=10"`
	UnitPrice decimal.Decimal  `json:"unit_price" binding:"gt=0"`
	Rate      *decimal.Decimal `json:"rate" binding:"omitempty,gte=0,lte=100"`
}

func TestValidateStruct_DecimalTags(t *testing.T) {
	ok := priceInput{Code: "SP0001", UnitPrice: decimal.NewFromInt(1000)}
	require.NoError(t, ValidateStruct(&ok))

	zero := priceInput{Code: "SP0001", UnitPrice: decimal.Zero}
	err := ValidateStruct(&zero)
	require.Error(t, err)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "unit_price", ve.Field)

	rate := decimal.NewFromInt(101)
	tooHigh := priceInput{Code: "SP0001", UnitPrice: decimal.NewFromInt(1), Rate: &rate}
	err = ValidateStruct(&tooHigh)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "rate", ve.Field)
	assert.Equal(t, "must be at most 100", ve.Message)
}

func TestValidateStruct_Required(t *testing.T) {
	err := ValidateStruct(&priceInput{UnitPrice: decimal.NewFromInt(1)})
	require.True(t, IsValidationError(err))
	assert.Contains(t, err.Error(), "code")
}

func TestValidatePhoneNumber(t *testing.T) {
	assert.NoError(t, ValidatePhoneNumber("0901234567", "VN"))
	assert.Error(t, ValidatePhoneNumber("090-123-4567", "VN"))
	assert.Error(t, ValidatePhoneNumber("123", "VN"))
}

func TestUniqueSlice(t *testing.T) {
	assert.Equal(t, []string{"SP0001", "SP0002"}, UniqueSlice([]string{"SP0001", "SP0002", "SP0001"}))
}

func TestValidateStruct_ListsEveryField(t *testing.T) {
	err := ValidateStruct(&priceInput{})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "code", ve.Field)
	assert.Equal(t, map[string]string{
		"code":       "is required",
		"unit_price": "must be greater than 0",
	}, ve.Fields)

	err = ValidateStruct(&priceInput{Code: "SP0001"})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "unit_price", ve.Field)
	assert.Nil(t, ve.Fields)
}

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("sales@anphat.vn"))
	assert.False(t, IsValidEmail("sales@localhost"))
	assert.False(t, IsValidEmail("sales anphat.vn"))
}
