// Package apperrors holds the sentinel errors shared by repositories,
// services and handlers, each tied to the HTTP status it renders as.
package apperrors

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error pairs an HTTP status with a client-safe message. Cause is logged,
// never rendered.
type Error struct {
	Status  int    `json:"code"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return e.Message + ": " + e.Cause.Error()
}

func (e *Error) Unwrap() error { return e.Cause }

// Is makes a wrapped copy match the sentinel it was made from.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Status == t.Status && e.Message == t.Message
}

func sentinel(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

// Wrap returns a copy of s that carries cause. s itself is never mutated.
func Wrap(s *Error, cause error) *Error {
	return &Error{Status: s.Status, Message: s.Message, Cause: cause}
}

var (
	ErrUnauthorized   = sentinel(http.StatusUnauthorized, "Unauthorized")
	ErrNotFound       = sentinel(http.StatusNotFound, "Not found")
	ErrInternalServer = sentinel(http.StatusInternalServerError, "Internal server error")
	ErrInvalidToken   = sentinel(http.StatusUnauthorized, "Invalid token")
)

// Repository errors. Drivers' own errors are translated into these.
var (
	ErrRecordNotFound = sentinel(http.StatusNotFound, "Record not found")
	ErrDuplicate      = sentinel(http.StatusConflict, "Duplicate value violates a unique constraint")
	ErrProtected      = sentinel(http.StatusConflict, "Record is referenced by protected rows")
)

// From finds the *Error in err's chain; anything else becomes a 500.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(ErrInternalServer, err)
}

// ErrorMiddleware renders the last error a handler attached with c.Error,
// unless the handler already wrote a response.
func ErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		last := c.Errors.Last()
		if last == nil || c.Writer.Written() {
			return
		}
		appErr := From(last.Err)
		c.AbortWithStatusJSON(appErr.Status, appErr)
	}
}
