package request

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/Additional-Code/fleet/pkg/errorbank"
)

// Validator adapts go-playground/validator to echo.Validator.
type Validator struct {
	validate *validator.Validate
}

// NewValidator builds a Validator reporting fields by their JSON names.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonFieldName)
	return &Validator{validate: v}
}

// Validate checks i and returns a validation AppError listing failed fields.
func (v *Validator) Validate(i any) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return errorbank.Validation("invalid payload", errorbank.WithCause(err))
	}
	fields := make(map[string]any, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields[trimRoot(fe.Namespace())] = fe.Tag()
	}
	return errorbank.Validation("invalid payload", errorbank.WithDetail("fields", fields))
}

// Bind decodes the request body into dst and validates it.
func Bind(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return errorbank.Validation("invalid payload", errorbank.WithCause(err))
	}
	if err := c.Validate(dst); err != nil {
		return errorbank.From(err)
	}
	return nil
}
