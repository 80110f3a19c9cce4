package validation

import (
	"reflect"
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"
)

// New returns a validator that reports fields by their wire names.
func New() *validatorv10.Validate {
	v := validatorv10.New()

	// Error maps use json/form/uri names so callers see what they sent.
	v.RegisterTagNameFunc(wireName)

	return v
}

func wireName(f reflect.StructField) string {
	for _, tag := range []string{"json", "form", "uri"} {
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
