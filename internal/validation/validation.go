// Package validation binds request payloads and reports validation
// failures as field errors the client can act on.
//
// Rules live in `validate` struct tags checked by a shared
// go-playground/validator instance. Field names are reported by their JSON
// path ("section.name"), so errors in nested payloads point at the nested
// field rather than being folded into the parent.
package validation

import (
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	validate *validator.Validate
)

// Validator returns the shared validator instance.
func Validator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(jsonName)
	})
	return validate
}

// Struct validates s against its tags.
func Struct(s any) error {
	return Validator().Struct(s)
}

// jsonName reports struct fields by the name used on the wire: the JSON
// name, else the query or path parameter name.
func jsonName(fld reflect.StructField) string {
	for _, tag := range []string{"json", "query", "param"} {
		name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
		if name != "" && name != "-" {
			return name
		}
	}
	return fld.Name
}
