package validator

import (
	"errors"
	"strings"

	val "github.com/go-playground/validator/v10"
)

var (
	messages = map[string]string{
		"required": "{field} is required",
		"gte":      "{field} must be greater than or equal to {param}",
		"lte":      "{field} must be less than or equal to {param}",
		"oneof":    "{field} must be one of {param}",
		"max":      "{field} must be at most {param}",
		"min":      "{field} must be at least {param}",
		"minslot":  "{field} is shorter than the minimum bookable slot",
		"rfc3339":  "{field} must be an RFC3339 timestamp",
	}
)

// message renders the first failing rule. Element errors of a slice keep their index,
// e.g. "weekdays[2] must be at most 6".
func message(err error) string {
	var valErrors val.ValidationErrors

	if !errors.As(err, &valErrors) {
		return err.Error()
	}

	for _, valErr := range valErrors {
		tmpl, ok := messages[valErr.Tag()]
		if !ok {
			continue
		}

		return strings.NewReplacer("{field}", fieldPath(valErr), "{param}", valErr.Param()).Replace(tmpl)
	}

	return valErrors.Error()
}

func fieldPath(valErr val.FieldError) string {
	ns := valErr.Namespace()

	if _, rest, found := strings.Cut(ns, "."); found {
		return rest
	}

	return valErr.Field()
}
