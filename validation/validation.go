// Package validation holds the request rules shared by gin binding and the
// service layer.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var slugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

// IsSlug reports whether s only holds letters, digits, hyphens and underscores.
func IsSlug(s string) bool {
	return slugPattern.MatchString(s)
}

func validateSlug(fl validator.FieldLevel) bool {
	return IsSlug(fl.Field().String())
}

var (
	once     sync.Once
	validate *validator.Validate
)

// Validator returns the shared instance. It reads `binding` tags so request
// DTOs carry one set of rules.
func Validator() *validator.Validate {
	once.Do(func() {
		validate = validator.New()
		validate.SetTagName("binding")
		_ = validate.RegisterValidation("slug", validateSlug)
	})
	return validate
}

// RegisterGinValidators adds the custom rules to gin's binding engine.
func RegisterGinValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected gin validator engine %T", binding.Validator.Engine())
	}
	return v.RegisterValidation("slug", validateSlug)
}

// Struct validates s and flattens the failures into one message.
func Struct(s interface{}) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}

var maxPrice = decimal.RequireFromString("999.99")

// Price checks a decimal(5,2) amount: non-negative, at most two decimal
// places and three integer digits.
func Price(name string, d decimal.Decimal) error {
	if d.IsNegative() {
		return fmt.Errorf("%s must not be negative", name)
	}
	if d.GreaterThan(maxPrice) {
		return fmt.Errorf("%s must be at most %s", name, maxPrice.StringFixed(2))
	}
	if !d.Equal(d.Round(2)) {
		return fmt.Errorf("%s must have at most 2 decimal places", name)
	}
	return nil
}
