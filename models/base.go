package models

import (
	"context"
	"errors"
	"fmt"

	"bitbucket.org/mmdatafocus/sales_backend/config"
	"bitbucket.org/mmdatafocus/sales_backend/utils"
	"gorm.io/gorm"
)

const (
	defaultPageLimit = 100
	maxPageLimit     = 1000
	defaultRankLimit = 10
)

// Page is the skip/limit window used by list operations.
type Page struct {
	Skip  int `form:"skip" json:"skip" binding:"gte=0"`
	Limit int `form:"limit" json:"limit" binding:"gte=0"`
}

func (p *Page) window() (int, int) {
	if p == nil {
		return 0, defaultPageLimit
	}
	skip, limit := p.Skip, p.Limit
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return skip, limit
}

func rankLimit(limit int) int {
	if limit <= 0 {
		return defaultRankLimit
	}
	if limit > maxPageLimit {
		return maxPageLimit
	}
	return limit
}

// patch collects the column updates of a partial update. Only fields the caller supplied
// are added, so absent fields never overwrite stored values.
type patch map[string]interface{}

func setIfPresent[T any](p patch, column string, value *T) {
	if value != nil {
		p[column] = *value
	}
}

// runInTx begins a transaction, runs fn and commits. Any error rolls everything back.
func runInTx(ctx context.Context, moduleName string, funcName string, data any, fn func(tx *gorm.DB) error) error {
	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		if !utils.IsValidationError(err) && !errors.Is(err, utils.ErrorRecordNotFound) {
			config.LogError(config.GetLogger(), moduleName, funcName, "transaction rolled back", data, err)
		}
		return utils.TranslateError(err)
	}
	return utils.TranslateError(tx.Commit().Error)
}

func dialectName(db *gorm.DB) string {
	if db == nil || db.Dialector == nil {
		return ""
	}
	return db.Dialector.Name()
}

// MonthExpr extracts the calendar month of column as an integer.
func MonthExpr(db *gorm.DB, column string) string {
	if dialectName(db) == "sqlite" {
		return fmt.Sprintf("CAST(strftime('%%m', %s) AS INTEGER)", column)
	}
	return fmt.Sprintf("MONTH(%s)", column)
}

// referenceError turns a failed existence check of a referenced row into a validation error.
func referenceError(err error, field string, message string) error {
	if errors.Is(err, utils.ErrorRecordNotFound) {
		return utils.NewValidationError(field, message)
	}
	return err
}

// recordExists reports whether any T has column = value.
func recordExists[T any](ctx context.Context, column string, value interface{}) (bool, error) {
	count, err := utils.ResourceCountWhere[T](ctx, nil, column+" = ?", value)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func isDuplicateKey(err error) bool {
	return errors.Is(err, utils.ErrorDuplicateKey) || errors.Is(err, gorm.ErrDuplicatedKey)
}
