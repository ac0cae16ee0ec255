package services

import (
	"context"
	"strings"

	"catalog-service/repository"
	"catalog-service/validation"

	"go.uber.org/zap"
)

// CRUDService is the admin surface of a simple catalog entity: T is the
// model and R the request payload.
type CRUDService[T any, R any] interface {
	Create(ctx context.Context, req *R) (*T, *ServiceError)
	Update(ctx context.Context, id uint, req *R) (*T, *ServiceError)
	Delete(ctx context.Context, id uint) *ServiceError
	Get(ctx context.Context, id uint) (*T, *ServiceError)
	List(ctx context.Context, page, limit int) ([]T, int64, *ServiceError)
}

// crudService implements CRUDService over a repository.Store. The hooks
// carry the entity-specific rules.
type crudService[T any, R any] struct {
	repo    repository.Store[T]
	subject string
	logger  *zap.Logger

	// apply copies the request onto the model.
	apply func(req *R, entity *T)
	// check runs after payload validation, before any write.
	check func(ctx context.Context, req *R) *ServiceError
	// guard runs before delete and reports protecting references.
	guard func(ctx context.Context, id uint) *ServiceError
	// afterWrite runs after a successful create or update.
	afterWrite func(ctx context.Context, entity *T, created bool)
}

func (s *crudService[T, R]) Create(ctx context.Context, req *R) (*T, *ServiceError) {
	if svcErr := s.validate(ctx, req); svcErr != nil {
		return nil, svcErr
	}

	entity := new(T)
	s.apply(req, entity)
	if err := s.repo.Create(ctx, entity); err != nil {
		return nil, fromRepo(s.logger, err, s.subject, s.failed("create"))
	}
	if s.afterWrite != nil {
		s.afterWrite(ctx, entity, true)
	}
	s.logger.Info(s.subject+" created", zap.Any("entity", entity))
	return entity, nil
}

func (s *crudService[T, R]) Update(ctx context.Context, id uint, req *R) (*T, *ServiceError) {
	if svcErr := s.validate(ctx, req); svcErr != nil {
		return nil, svcErr
	}

	entity, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fromRepo(s.logger, err, s.subject, s.failed("fetch"))
	}
	s.apply(req, entity)
	if err := s.repo.Update(ctx, entity); err != nil {
		return nil, fromRepo(s.logger, err, s.subject, s.failed("update"))
	}
	if s.afterWrite != nil {
		s.afterWrite(ctx, entity, false)
	}
	s.logger.Info(s.subject+" updated", zap.Uint("id", id))
	return entity, nil
}

func (s *crudService[T, R]) Delete(ctx context.Context, id uint) *ServiceError {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return fromRepo(s.logger, err, s.subject, s.failed("fetch"))
	}
	if s.guard != nil {
		if svcErr := s.guard(ctx, id); svcErr != nil {
			return svcErr
		}
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fromRepo(s.logger, err, s.subject, s.failed("delete"))
	}
	s.logger.Info(s.subject+" deleted", zap.Uint("id", id))
	return nil
}

func (s *crudService[T, R]) Get(ctx context.Context, id uint) (*T, *ServiceError) {
	entity, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fromRepo(s.logger, err, s.subject, s.failed("fetch"))
	}
	return entity, nil
}

func (s *crudService[T, R]) List(ctx context.Context, page, limit int) ([]T, int64, *ServiceError) {
	items, total, err := s.repo.FindAll(ctx, page, limit)
	if err != nil {
		return nil, 0, fromRepo(s.logger, err, s.subject, s.failed("list"))
	}
	return items, total, nil
}

func (s *crudService[T, R]) validate(ctx context.Context, req *R) *ServiceError {
	if err := validation.Struct(req); err != nil {
		return badRequest(err.Error())
	}
	if s.check != nil {
		return s.check(ctx, req)
	}
	return nil
}

func (s *crudService[T, R]) failed(verb string) string {
	return "Failed to " + verb + " " + strings.ToLower(s.subject)
}

// protectedBy builds a delete guard from a reference counter.
func protectedBy(logger *zap.Logger, counter func(ctx context.Context, id uint) (int64, error), msg string) func(ctx context.Context, id uint) *ServiceError {
	return func(ctx context.Context, id uint) *ServiceError {
		n, err := counter(ctx, id)
		if err != nil {
			logger.Error("Failed to count references", zap.Error(err), zap.Uint("id", id))
			return &ServiceError{StatusCode: 500, Message: "Failed to check references"}
		}
		if n > 0 {
			return conflict(msg)
		}
		return nil
	}
}
