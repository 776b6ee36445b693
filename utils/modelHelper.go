package utils

import (
	"context"
	"errors"

	"bitbucket.org/mmdatafocus/sales_backend/config"
	"gorm.io/gorm"
)

/* DB fetching */

// fetch model by a key column.
// A missing row is not an error: returns nil, nil.
func FetchModel[T any](ctx context.Context, db *gorm.DB, where map[string]interface{}) (*T, error) {
	if db == nil {
		db = config.GetDB()
	}
	var result T
	err := db.WithContext(ctx).Where(where).Take(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// fetch model by a key column, ErrorRecordNotFound when absent.
// Used on update and delete paths.
func FetchModelOrNotFound[T any](ctx context.Context, db *gorm.DB, where map[string]interface{}) (*T, error) {
	result, err := FetchModel[T](ctx, db, where)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, ErrorRecordNotFound
	}
	return result, nil
}

// fetch a page of models ordered by orderBy
func FetchModels[T any](ctx context.Context, db *gorm.DB, orderBy string, skip int, limit int) ([]*T, error) {
	if db == nil {
		db = config.GetDB()
	}
	var results []*T
	err := db.WithContext(ctx).Order(orderBy).Offset(skip).Limit(limit).Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
