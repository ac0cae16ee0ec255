package services

import (
	"errors"
	"net/http"

	"catalog-service/apperrors"

	"go.uber.org/zap"
)

// ServiceError is what services hand back to controllers: a status and a
// message that is safe to show the client.
type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string { return e.Message }

func newServiceError(status int, msg string) *ServiceError {
	return &ServiceError{StatusCode: status, Message: msg}
}

func badRequest(msg string) *ServiceError { return newServiceError(http.StatusBadRequest, msg) }
func notFound(msg string) *ServiceError   { return newServiceError(http.StatusNotFound, msg) }
func conflict(msg string) *ServiceError   { return newServiceError(http.StatusConflict, msg) }

// repoOutcomes maps known repository sentinels to a status and a message
// suffix appended to the subject.
var repoOutcomes = []struct {
	sentinel error
	status   int
	suffix   string
}{
	{apperrors.ErrRecordNotFound, http.StatusNotFound, " not found"},
	{apperrors.ErrDuplicate, http.StatusConflict, " already exists"},
	{apperrors.ErrProtected, http.StatusConflict, " is referenced by other records"},
}

// fromRepo turns a repository error into a ServiceError about subject.
// Anything unrecognised is logged and reported as a 500 with fallback.
func fromRepo(logger *zap.Logger, err error, subject, fallback string) *ServiceError {
	for _, o := range repoOutcomes {
		if errors.Is(err, o.sentinel) {
			return newServiceError(o.status, subject+o.suffix)
		}
	}
	logger.Error(fallback, zap.Error(err))
	return newServiceError(http.StatusInternalServerError, fallback)
}
