package utils

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"bitbucket.org/mmdatafocus/sales_backend/config"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// check if a row with column = value exists, return RecordNotFound Error otherwise.
// db may be an open transaction; nil uses the global connection.
func ValidateResourceId[T any](ctx context.Context, db *gorm.DB, column string, value interface{}) error {

	count, err := ResourceCountWhere[T](ctx, db, column+" = ?", value)
	if err != nil {
		return err
	}
	if count <= 0 {
		return ErrorRecordNotFound
	}

	return nil
}

// check if ALL values exist in column, return RecordNotFound Error otherwise
func ValidateResourcesId[M any, ID comparable](ctx context.Context, db *gorm.DB, column string, ids []ID) error {
	unqIds := UniqueSlice(ids)
	if len(unqIds) == 0 {
		return nil
	}

	count, err := ResourceCountWhere[M](ctx, db, column+" IN ?", unqIds)
	if err != nil {
		return err
	}
	if count != int64(len(unqIds)) {
		return ErrorRecordNotFound
	}

	return nil
}

// ValidateUnique fails with ErrorDuplicateKey when another row already holds value in column.
// exceptValue excludes the row being updated (matched on exceptColumn).
func ValidateUnique[T any](ctx context.Context, db *gorm.DB, column string, value interface{}, exceptColumn string, exceptValue interface{}) error {
	var count int64
	var err error
	if exceptValue == nil || reflect.ValueOf(exceptValue).IsZero() {
		count, err = ResourceCountWhere[T](ctx, db, column+" = ?", value)
	} else {
		count, err = ResourceCountWhere[T](ctx, db, column+" = ? AND NOT "+exceptColumn+" = ?", value, exceptValue)
	}

	if err != nil {
		return err
	}
	if count > 0 {
		return DuplicateKeyError("%s %v already exists", column, value)
	}
	return nil
}

// count records WHERE $condition
func ResourceCountWhere[T any](ctx context.Context, db *gorm.DB, condition string, value ...interface{}) (int64, error) {
	var model T

	if db == nil {
		db = config.GetDB()
	}
	var count int64
	if err := db.WithContext(ctx).Model(&model).Where(condition, value...).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func UniqueSlice[T comparable](slice []T) []T {
	seen := make(map[T]bool, len(slice))
	result := make([]T, 0, len(slice))
	for _, v := range slice {
		if !seen[v] {
			seen[v] = true
			result = append(result, v)
		}
	}
	return result
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared validator. Struct tags use the "binding" key so the same
// tags drive gin's request binding and model-level checks.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.SetTagName("binding")
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		validate.RegisterCustomTypeFunc(func(v reflect.Value) interface{} {
			switch d := v.Interface().(type) {
			case decimal.Decimal:
				f, _ := d.Float64()
				return f
			case decimal.NullDecimal:
				if !d.Valid {
					return nil
				}
				f, _ := d.Decimal.Float64()
				return f
			}
			return nil
		}, decimal.Decimal{}, decimal.NullDecimal{})
		validate.RegisterCustomTypeFunc(func(v reflect.Value) interface{} {
			if nt, ok := v.Interface().(NaiveTime); ok {
				return nt.Time
			}
			return nil
		}, NaiveTime{})
	})
	return validate
}

// ValidateStruct runs the binding tags of input and reports the first violation, plus the
// full field list when there are several.
func ValidateStruct(input interface{}) error {
	err := Validator().Struct(input)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		ve := toValidationError(verrs[0])
		if len(verrs) > 1 {
			ve.Fields = ProcessValidationErrors(err)
		}
		return ve
	}
	return err
}

func ProcessValidationErrors(err error) map[string]string {
	errorResponse := make(map[string]string)

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return errorResponse
	}
	for _, ve := range validationErrors {
		errorResponse[ve.Field()] = toValidationError(ve).Message
	}

	return errorResponse
}

func toValidationError(fe validator.FieldError) *ValidationError {
	var msg string
	switch fe.Tag() {
	case "required":
		msg = "is required"
	case "gt":
		msg = fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte", "min":
		msg = fmt.Sprintf("must be at least %s", fe.Param())
	case "lte", "max":
		msg = fmt.Sprintf("must be at most %s", fe.Param())
	case "len":
		msg = fmt.Sprintf("must have length %s", fe.Param())
	case "email":
		msg = "must be a valid email"
	case "numeric":
		msg = "must contain digits only"
	case "oneof":
		msg = fmt.Sprintf("must be one of [%s]", fe.Param())
	case "dive":
		msg = "is invalid"
	default:
		msg = fmt.Sprintf("failed on %s", fe.Tag())
	}
	return NewValidationError(fe.Field(), msg)
}
