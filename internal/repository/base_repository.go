package repository

import (
	"context"
	"errors"

	appErr "github.com/resourcehub/engine/pkg/errors"
	"gorm.io/gorm"
)

// BaseRepository defines the raw persistence verbs shared by entity
// repositories. Not-found is a nil result, never an error; only malformed
// input or storage failures surface as errors.
type BaseRepository[T any] interface {
	Insert(ctx context.Context, obj *T) error
	FindByID(ctx context.Context, id int64) (*T, error)
	Remove(ctx context.Context, id int64) (bool, error)
}

type baseRepository[T any] struct {
	db *gorm.DB
}

func NewBaseRepository[T any](db *gorm.DB) BaseRepository[T] {
	return &baseRepository[T]{db: db}
}

func (r *baseRepository[T]) Insert(ctx context.Context, obj *T) error {
	if err := r.db.WithContext(ctx).Create(obj).Error; err != nil {
		if isUniqueViolation(err) {
			return appErr.Wrap(err, appErr.CodeConflict, "entity already exists")
		}
		return appErr.Wrap(err, appErr.CodeInternal, "create entity failed")
	}
	return nil
}

func (r *baseRepository[T]) FindByID(ctx context.Context, id int64) (*T, error) {
	if id < 1 {
		return nil, appErr.New(appErr.CodeInvalid, "id must be a positive integer")
	}
	var dest T
	if err := r.db.WithContext(ctx).First(&dest, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, appErr.Wrap(err, appErr.CodeInternal, "get entity failed")
	}
	return &dest, nil
}

func (r *baseRepository[T]) Remove(ctx context.Context, id int64) (bool, error) {
	if id < 1 {
		return false, appErr.New(appErr.CodeInvalid, "id must be a positive integer")
	}
	var t T
	res := r.db.WithContext(ctx).Delete(&t, "id = ?", id)
	if res.Error != nil {
		return false, appErr.Wrap(res.Error, appErr.CodeInternal, "delete entity failed")
	}
	return res.RowsAffected > 0, nil
}
