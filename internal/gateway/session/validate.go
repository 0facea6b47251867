package session

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/lanzouproxy/lanzouproxy/internal/common/apperrors"
)

var (
	requestValidator *validator.Validate
	validatorOnce    sync.Once
)

func v() *validator.Validate {
	validatorOnce.Do(func() {
		requestValidator = validator.New(validator.WithRequiredStructEnabled())
		requestValidator.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return requestValidator
}

// validateRequest checks req's validate tags and reports the first violation
// by JSON field name.
func validateRequest(req any) apperrors.Error {
	err := v().Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return ErrInvalidRequest.Err(err)
	}
	e := verrs[0]
	switch e.Tag() {
	case "required":
		return ErrInvalidRequest.Msg(e.Field() + " is required")
	default:
		return ErrInvalidRequest.Msg(e.Field() + " is invalid")
	}
}
