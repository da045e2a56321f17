// Package validator adapts go-playground/validator to echo's Validator
// interface so request structs are checked from their struct tags at bind
// time.
package validator

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type EchoValidator struct {
	validate *validator.Validate
}

func New() *EchoValidator {
	return &EchoValidator{validate: validator.New(validator.WithRequiredStructEnabled())}
}

func (v *EchoValidator) Validate(i any) error {
	if err := v.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
