package validation

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"

	apperrors "orders/internal/errors"
)

// DecodeAndValidate decodes a JSON body into out and runs the struct tags.
// Every failure comes back as a *ValidationError whose details name the
// offending JSON fields.
func DecodeAndValidate(body io.Reader, out interface{}, v *validatorv10.Validate) error {
	if err := json.NewDecoder(body).Decode(out); err != nil {
		return decodeError(err)
	}

	if err := v.Struct(out); err != nil {
		return structError(err)
	}
	return nil
}

func decodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if stderrors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		return apperrors.NewValidationError("invalid request body", apperrors.ValidationDetail{
			Field:   field,
			Message: fmt.Sprintf("%s must be of type %s", field, typeName(typeErr)),
		})
	}

	if stderrors.Is(err, io.EOF) {
		return apperrors.NewValidationError("invalid request body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must not be empty",
		})
	}

	return apperrors.NewValidationError("invalid request body", apperrors.ValidationDetail{
		Field:   "body",
		Message: "request body must be valid JSON",
	})
}

func typeName(err *json.UnmarshalTypeError) string {
	if err.Type == nil {
		return "value"
	}
	switch err.Type.Kind() {
	case reflect.Int, reflect.Int64, reflect.Uint:
		return "integer"
	case reflect.Float64:
		return "number"
	case reflect.Struct:
		return "timestamp"
	default:
		return err.Type.Kind().String()
	}
}

func structError(err error) error {
	var fieldErrs validatorv10.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return apperrors.NewValidationError(err.Error())
	}

	details := make([]apperrors.ValidationDetail, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		field := fieldPath(fe.Namespace())
		details = append(details, apperrors.ValidationDetail{
			Field:   field,
			Message: fieldMessage(field, fe),
		})
	}

	return apperrors.NewValidationError("validation failed", details...)
}

// fieldPath drops the root struct name: "CreateOrderRequest.items[0].price"
// becomes "items[0].price".
func fieldPath(namespace string) string {
	if idx := strings.Index(namespace, "."); idx >= 0 {
		return namespace[idx+1:]
	}
	return namespace
}

func fieldMessage(field string, fe validatorv10.FieldError) string {
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "required_without":
		return field + " is required when no other field is provided"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
