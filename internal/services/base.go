package services

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"gorm.io/gorm"

	"dooh/internal/events"
)

// BaseService defines generic read and update operations over one gorm
// model. Rows are created by the owning domain service, not through here.
type BaseService[T any] interface {
	Get(ctx context.Context, id string, filters map[string]interface{}) (*T, error)
	List(ctx context.Context, page, limit int, filters map[string]interface{}, sortField, order string) ([]T, int64, error)
	Update(ctx context.Context, id string, filters map[string]interface{}, values map[string]interface{}) error
}

type BaseServiceImpl[T any] struct {
	db        *gorm.DB
	modelType T
	bus       events.Emitter
}

func GormTableName(db *gorm.DB, v any) string {
	structName := reflect.TypeOf(v).Name()
	return db.NamingStrategy.TableName(structName)
}

// NewBaseService creates a new base service
func NewBaseService[T any](db *gorm.DB, modelType T) BaseService[T] {
	return &BaseServiceImpl[T]{
		db:        db,
		modelType: modelType,
		bus:       events.Default(),
	}
}

func applyFilters(query *gorm.DB, filters map[string]interface{}) *gorm.DB {
	for key, value := range filters {
		query = query.Where(key+" = ?", value)
	}
	return query
}

// Get loads one row by id. Filters scope the lookup, so a row outside them
// reads as ErrNotFound.
func (s *BaseServiceImpl[T]) Get(ctx context.Context, id string, filters map[string]interface{}) (*T, error) {
	var entity T
	query := applyFilters(s.db.WithContext(ctx), filters)

	if err := query.First(&entity, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &entity, nil
}

func (s *BaseServiceImpl[T]) List(ctx context.Context, page, limit int, filters map[string]interface{}, sortField, order string) ([]T, int64, error) {
	var entities []T
	var total int64

	query := applyFilters(s.db.WithContext(ctx).Model(&s.modelType), filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page > 0 && limit > 0 {
		query = query.Offset((page - 1) * limit).Limit(limit)
	}
	if sortField != "" {
		if order != "asc" {
			order = "desc"
		}
		query = query.Order(fmt.Sprintf("%s %s", sortField, order))
	}

	if err := query.Find(&entities).Error; err != nil {
		return nil, 0, err
	}
	if entities == nil {
		entities = []T{}
	}
	return entities, total, nil
}

// Update writes values to the row matching id and filters.
func (s *BaseServiceImpl[T]) Update(ctx context.Context, id string, filters map[string]interface{}, values map[string]interface{}) error {
	query := applyFilters(s.db.WithContext(ctx).Model(&s.modelType), filters)
	res := query.Where("id = ?", id).Updates(values)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}

	s.bus.Emit(fmt.Sprintf("%s.updated", GormTableName(s.db, s.modelType)), id)
	return nil
}
