// internal/pkg/validation/validation.go
package validation

import (
	"encoding/json"
	"errors"
	"io"
	"reflect"
	"regexp"
	"strings"

	xerrors "adscreen-service/internal/pkg/errors"
	"adscreen-service/internal/pkg/i18n"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var clockRe = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// Register configures gin's validator: json names in errors, unknown JSON fields
// rejected, and the custom tags used by request DTOs.
func Register() error {
	binding.EnableDecoderDisallowUnknownFields = true

	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin validator engine is not go-playground/validator")
	}
	return Configure(v)
}

// Configure installs the tag name func and custom validations on v.
func Configure(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	custom := map[string]validator.Func{
		"dec_gt0":  decimalCompare(func(d decimal.Decimal) bool { return d.IsPositive() }),
		"dec_gte0": decimalCompare(func(d decimal.Decimal) bool { return !d.IsNegative() }),
		"clock": func(fl validator.FieldLevel) bool {
			return clockRe.MatchString(fl.Field().String())
		},
	}
	for tag, fn := range custom {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

func decimalCompare(ok func(decimal.Decimal) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		switch d := fl.Field().Interface().(type) {
		case decimal.Decimal:
			return ok(d)
		case *decimal.Decimal:
			return d == nil || ok(*d)
		}
		return false
	}
}

// FromBindError converts a gin binding error into a field level validation error.
func FromBindError(err error) error {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := &xerrors.ValidationError{Fields: make(map[string]string, len(verrs))}
		for _, fe := range verrs {
			out.Fields[fe.Field()] = messageForTag(fe.Tag())
		}
		return out
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		return xerrors.NewValidationError(field, i18n.FieldInvalid)
	}

	if errors.Is(err, io.EOF) {
		return xerrors.NewValidationError("body", i18n.FieldRequired)
	}

	if msg := err.Error(); strings.HasPrefix(msg, "json: unknown field ") {
		field := strings.Trim(strings.TrimPrefix(msg, "json: unknown field "), `"`)
		return xerrors.NewValidationError(field, i18n.FieldUnknown)
	}

	return xerrors.NewValidationError("body", i18n.FieldInvalid)
}

func messageForTag(tag string) string {
	switch tag {
	case "required", "required_without", "required_if":
		return i18n.FieldRequired
	case "email":
		return i18n.FieldEmail
	case "min", "gte", "gt", "dec_gt0", "dec_gte0":
		return i18n.FieldMin
	case "max", "lte", "lt":
		return i18n.FieldMax
	case "oneof":
		return i18n.FieldOneOf
	case "gtefield", "gtfield":
		return i18n.FieldDateOrder
	default:
		return i18n.FieldInvalid
	}
}
