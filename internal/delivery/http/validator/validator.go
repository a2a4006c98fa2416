// Package validator adapts go-playground/validator to Echo's Validator hook.
// Request payloads are validated exactly once, here at the transport boundary;
// the use case layer assumes validated input.
package validator

import (
	domainerrors "gate/internal/domain/errors"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type echoValidator struct {
	validate *validator.Validate
}

// New builds the Echo validator backed by go-playground/validator struct tags.
func New() echo.Validator {
	return &echoValidator{validate: validator.New()}
}

// Validate implements echo.Validator. Tag failures classify as validation
// errors; the concrete field detail stays in logs, not the response.
func (v *echoValidator) Validate(i any) error {
	if err := v.validate.Struct(i); err != nil {
		return domainerrors.ErrValidationFailed.WrapMessage(err.Error())
	}

	return nil
}
