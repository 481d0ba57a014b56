package utils

import (
	"context"

	"github.com/mmdatafocus/chitty_backend/config"
)

/* DB fetching */

// fetch model from db by its string id
// (may return RecordNotFound)
func FetchModel[T any](ctx context.Context, id string, associations ...string) (*T, error) {

	db := config.GetDB()
	dbCtx := db.WithContext(ctx)
	// preloading
	for _, field := range associations {
		dbCtx = dbCtx.Preload(field)
	}
	var result T
	err := dbCtx.Where("id = ?", id).First(&result).Error
	if err != nil {
		return nil, ErrorRecordNotFound
	}
	return &result, nil
}

// fetch all models matching condition, ordered if order is non-empty
func FetchModelsWhere[T any](ctx context.Context, order string, condition string, values ...interface{}) ([]*T, error) {

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Where(condition, values...)
	if order != "" {
		dbCtx = dbCtx.Order(order)
	}
	var results []*T
	err := dbCtx.Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
