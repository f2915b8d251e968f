package validator

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"strings"
	"time"

	"visit/config"
	"visit/shared/constant"
	"visit/shared/failure"

	val "github.com/go-playground/validator/v10"
)

const defaultMinSlotMinutes = 15

var validate *val.Validate

func registerMinSlotValidation(cfg *config.Config) val.Func {
	return func(field val.FieldLevel) bool {
		minimum := cfg.Scheduling.MinSlotMinutes
		if minimum <= 0 {
			minimum = defaultMinSlotMinutes
		}

		switch field.Field().Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return field.Field().Int() >= int64(minimum)
		default:
			return false
		}
	}
}

func registerDateTimeValidation(field val.FieldLevel) bool {
	str, ok := field.Field().Interface().(string)
	if !ok {
		return false
	}

	_, err := time.Parse(constant.DateFormat, str)

	return err == nil
}

func jsonName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "-" {
		return constant.Empty
	}

	if name == constant.Empty {
		return field.Name
	}

	return name
}

func init() {
	cfg := config.Get()

	validate = val.New(val.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(jsonName)

	err := validate.RegisterValidation("minslot", registerMinSlotValidation(cfg))
	if err != nil {
		panic(err)
	}

	err = validate.RegisterValidation("rfc3339", registerDateTimeValidation)
	if err != nil {
		panic(err)
	}
}

// Validate decodes a JSON request body into data and validates it. Failures are BadRequest and
// name the offending field by its json name.
func Validate[T any](r io.Reader, data *T) error {
	decoder := json.NewDecoder(r)
	err := decoder.Decode(data)

	if err != nil {
		return failure.BadRequest(fmt.Errorf("failed to decode request body: %w", err)) //nolint:wrapcheck
	}

	return ValidateStruct(data)
}

func ValidateStruct[T any](data *T) error {
	err := validate.Struct(data)

	if err != nil {
		msg := message(err)

		return failure.BadRequestFromString(msg) //nolint:wrapcheck
	}

	return nil
}

func ValidateVar(field any, tag string) error {
	err := validate.Var(field, tag)

	if err != nil {
		msg := message(err)

		return failure.BadRequestFromString(msg) //nolint:wrapcheck
	}

	return nil
}
