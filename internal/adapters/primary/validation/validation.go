package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	apperrors "github.com/lorrc/skycrm-backend/internal/core/errors"
)

// Validate is the shared struct validator. Field names in errors use the json
// tag of the field.
var Validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})

	_ = v.RegisterValidation("decimal", validateDecimal)
	_ = v.RegisterValidation("notblank", validateNotBlank)

	return v
}

// validateDecimal accepts empty strings and anything decimal can parse.
func validateDecimal(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	_, err := decimal.NewFromString(value)
	return err == nil
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// Struct validates s and converts failures into ValidationErrors.
func Struct(s any) error {
	err := Validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.NewBadRequestError(err, "Invalid request body")
	}

	out := apperrors.NewValidationErrors()
	for _, fe := range fieldErrs {
		out.Add(fieldPath(fe), message(fe))
	}
	return out
}

// fieldPath strips the top-level struct name from the namespace so nested
// errors read like "items[0].description".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if idx := strings.Index(ns, "."); idx >= 0 {
		return ns[idx+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "This field is required"
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Must be %s characters or less", fe.Param())
		}
		return fmt.Sprintf("Must be at most %s", fe.Param())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Must be at least %s characters", fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("Must contain at least %s item(s)", fe.Param())
		}
		return fmt.Sprintf("Must be at least %s", fe.Param())
	case "email":
		return "Invalid email format"
	case "uuid", "uuid4":
		return "Must be a valid UUID"
	case "oneof":
		return "Must be one of: " + strings.Join(strings.Fields(fe.Param()), ", ")
	case "datetime":
		return "Must be a date in " + fe.Param() + " format"
	case "decimal":
		return "Must be a decimal number"
	case "hostname_rfc1123", "alphanumunicode":
		return "Invalid format"
	default:
		return "Invalid value"
	}
}

// DecodeAndValidate decodes the JSON request body into T and validates it
func DecodeAndValidate[T any](r *http.Request) (*T, error) {
	var req T

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&req); err != nil {
		return nil, apperrors.NewBadRequestError(err, "Invalid request body")
	}

	if err := Struct(&req); err != nil {
		return nil, err
	}

	return &req, nil
}

// ParseUUIDParam parses a path or query value as a UUID.
func ParseUUIDParam(field, value string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		errs := apperrors.NewValidationErrors()
		errs.Add(field, "Must be a valid UUID")
		return uuid.Nil, errs
	}
	return id, nil
}

// ParseDecimal parses an optional decimal string. Empty means zero.
func ParseDecimal(value string) decimal.Decimal {
	if value == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// PaginationParams holds pagination parameters
type PaginationParams struct {
	Limit  int
	Offset int
}

// DefaultPagination returns default pagination values
func DefaultPagination() PaginationParams {
	return PaginationParams{
		Limit:  20,
		Offset: 0,
	}
}

// ParsePagination extracts and validates pagination from query parameters
func ParsePagination(r *http.Request, maxLimit int) PaginationParams {
	params := DefaultPagination()

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
			params.Limit = limit
		}
	}

	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil && offset >= 0 {
			params.Offset = offset
		}
	}

	if params.Limit > maxLimit {
		params.Limit = maxLimit
	}

	return params
}

// ParseStringQueryParam safely parses a string query parameter
func ParseStringQueryParam(r *http.Request, key string) *string {
	value := r.URL.Query().Get(key)
	if value == "" {
		return nil
	}
	return &value
}

// ParseUUIDQueryParam parses an optional UUID query parameter.
func ParseUUIDQueryParam(r *http.Request, key string) (*uuid.UUID, error) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return nil, nil
	}
	id, err := ParseUUIDParam(key, value)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
