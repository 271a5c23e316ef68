package server

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/jmylchreest/skytint/internal/theme"
)

// CustomValidator adapts go-playground/validator to echo.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a validator that also understands the colour tag.
func NewValidator() *CustomValidator {
	return &CustomValidator{validator: theme.NewValidator()}
}

// Validate runs struct tag validation, reporting failures as 400s.
func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
	}
	return nil
}
