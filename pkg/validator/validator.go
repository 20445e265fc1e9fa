package validator

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

// objectKeySegment matches identifiers that are safe as a single object key or path segment
var objectKeySegment = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// CustomValidator implements echo.Validator using go-playground/validator
type CustomValidator struct {
	v *validator.Validate
}

// New creates a new CustomValidator instance
func New() *CustomValidator {
	v := validator.New()
	// meeting and session IDs end up in object keys and local paths
	_ = v.RegisterValidation("keysegment", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return objectKeySegment.MatchString(s) && s != "." && s != ".."
	})
	return &CustomValidator{v: v}
}

// Validate performs struct validation
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.v.Struct(i)
}

// IsKeySegment reports whether s can be used as a single object key segment
func IsKeySegment(s string) bool {
	return objectKeySegment.MatchString(s)
}
