package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/igloolab/pharmacy-inventory/internal/core/domain"
)

// echoValidator wraps go-playground/validator so Echo can call c.Validate(req).
type echoValidator struct {
	v *validator.Validate
}

// NewValidator returns an echoValidator ready to be assigned to echo.Echo.Validator.
func NewValidator() *echoValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(wireName)
	_ = v.RegisterValidation("iso8601", validateISO8601)
	_ = v.RegisterValidation("password", validatePassword)
	v.RegisterStructValidation(validateProductDates, createProductRequest{}, updateProductRequest{})
	return &echoValidator{v: v}
}

// Validate satisfies the echo.Validator interface. Rule failures come back as
// a *domain.ValidationError listing one violation per field.
func (ev *echoValidator) Validate(i any) error {
	if err := ev.v.Struct(i); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			out := &domain.ValidationError{Violations: make([]domain.FieldViolation, 0, len(ve))}
			for _, fe := range ve {
				out.Violations = append(out.Violations, domain.FieldViolation{
					Field:   fe.Field(),
					Message: fieldError(fe),
				})
			}
			return out
		}
		return err
	}
	return nil
}

// wireName reports fields by their JSON or query name.
func wireName(f reflect.StructField) string {
	for _, tag := range []string{"json", "query"} {
		name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}

// fieldError converts a single FieldError into a human-readable message.
func fieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "min":
		if isNumber(fe.Kind()) {
			return fmt.Sprintf("%s must be at least %s", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		if isNumber(fe.Kind()) {
			return fmt.Sprintf("%s must be at most %s", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "iso8601":
		return field + " must be a valid ISO-8601 date"
	case "password":
		return field + " must contain at least one lowercase letter, one uppercase letter and one number"
	case "after_elaboration":
		return "expiryDate must be after elaborationDate"
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}

func isNumber(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func validateISO8601(fl validator.FieldLevel) bool {
	_, err := domain.ParseISO8601(fl.Field().String())
	return err == nil
}

func validatePassword(fl validator.FieldLevel) bool {
	var lower, upper, digit bool
	for _, r := range fl.Field().String() {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return lower && upper && digit
}

// validateProductDates enforces expiryDate > elaborationDate when both dates
// are present and well formed. Malformed dates are reported by iso8601.
func validateProductDates(sl validator.StructLevel) {
	var elaboration, expiry *string
	switch req := sl.Current().Interface().(type) {
	case createProductRequest:
		elaboration, expiry = &req.ElaborationDate, &req.ExpiryDate
	case *createProductRequest:
		elaboration, expiry = &req.ElaborationDate, &req.ExpiryDate
	case updateProductRequest:
		elaboration, expiry = req.ElaborationDate, req.ExpiryDate
	case *updateProductRequest:
		elaboration, expiry = req.ElaborationDate, req.ExpiryDate
	}
	if elaboration == nil || expiry == nil {
		return
	}

	from, err := domain.ParseISO8601(*elaboration)
	if err != nil {
		return
	}
	to, err := domain.ParseISO8601(*expiry)
	if err != nil {
		return
	}
	if !to.After(from) {
		sl.ReportError(*expiry, "expiryDate", "ExpiryDate", "after_elaboration", "")
	}
}
