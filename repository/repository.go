package repository

import (
	"context"
	"errors"
	"strings"

	"catalog-service/apperrors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the CRUD surface shared by every catalog entity.
type Store[T any] interface {
	Create(ctx context.Context, entity *T) error
	FindByID(ctx context.Context, id uint) (*T, error)
	FindAll(ctx context.Context, page, limit int) ([]T, int64, error)
	Update(ctx context.Context, entity *T) error
	Delete(ctx context.Context, id uint) error
}

// gormStore implements Store for a single model. Errors leave it translated
// to the apperrors persistence sentinels.
type gormStore[T any] struct {
	db       *gorm.DB
	order    string
	preloads []string
}

func newGormStore[T any](db *gorm.DB, order string, preloads ...string) gormStore[T] {
	return gormStore[T]{db: db, order: order, preloads: preloads}
}

func (s gormStore[T]) query(ctx context.Context) *gorm.DB {
	q := s.db.WithContext(ctx)
	for _, p := range s.preloads {
		q = q.Preload(p)
	}
	return q
}

func (s gormStore[T]) Create(ctx context.Context, entity *T) error {
	return translate(s.db.WithContext(ctx).Omit(clause.Associations).Create(entity).Error)
}

func (s gormStore[T]) FindByID(ctx context.Context, id uint) (*T, error) {
	var entity T
	if err := s.query(ctx).First(&entity, id).Error; err != nil {
		return nil, translate(err)
	}
	return &entity, nil
}

func (s gormStore[T]) FindAll(ctx context.Context, page, limit int) ([]T, int64, error) {
	var items []T
	var total int64

	if err := s.db.WithContext(ctx).Model(new(T)).Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}

	offset := (page - 1) * limit
	if err := s.query(ctx).
		Offset(offset).
		Limit(limit).
		Order(s.order).
		Find(&items).Error; err != nil {
		return nil, 0, translate(err)
	}
	return items, total, nil
}

// Update writes every column. Associations are managed separately.
func (s gormStore[T]) Update(ctx context.Context, entity *T) error {
	return translate(s.db.WithContext(ctx).Omit(clause.Associations).Save(entity).Error)
}

func (s gormStore[T]) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(new(T), id)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrRecordNotFound
	}
	return nil
}

// count returns the number of rows of model where column = id.
func count(ctx context.Context, db *gorm.DB, model interface{}, column string, id uint) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(model).Where(column+" = ?", id).Count(&n).Error
	return n, translate(err)
}

// translate maps driver and gorm errors onto the persistence sentinels.
// gorm's TranslateError handles the real drivers; the message checks cover
// connections opened without it.
func translate(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperrors.Wrap(apperrors.ErrRecordNotFound, err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperrors.Wrap(apperrors.ErrDuplicate, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return apperrors.Wrap(apperrors.ErrProtected, err)
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique"):
		return apperrors.Wrap(apperrors.ErrDuplicate, err)
	case strings.Contains(msg, "foreign key"):
		return apperrors.Wrap(apperrors.ErrProtected, err)
	}
	return err
}
