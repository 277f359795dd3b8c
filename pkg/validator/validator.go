package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is built once at package load; rules.go contributes the
// domain-specific tags before any struct is checked.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(jsonFieldName)
	registerDomainRules(v)
	return v
}

// jsonFieldName reports the field's json tag so validation failures name
// the same keys the client sent.
func jsonFieldName(fld reflect.StructField) string {
	tag, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if tag == "" || tag == "-" {
		return fld.Name
	}
	return tag
}

// ValidationError is one failed rule on one field.
type ValidationError struct {
	Field string `json:"field"`
	Tag   string `json:"tag"`
	Param string `json:"param"`
}

// ValidationErrors aggregates every failure from a single struct check.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "validation failed"
	}

	var b strings.Builder
	for i, failure := range v {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(failure.Field)
		b.WriteString(" failed on ")
		b.WriteString(failure.Tag)
		if failure.Param != "" {
			b.WriteString("=")
			b.WriteString(failure.Param)
		}
	}
	return b.String()
}

// Fields returns the JSON names of every failed field.
func (v ValidationErrors) Fields() []string {
	fields := make([]string, 0, len(v))
	for _, failure := range v {
		fields = append(fields, failure.Field)
	}
	return fields
}

// ValidateStruct checks s against its validate tags and returns a
// ValidationErrors value on failure.
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	failures := make(ValidationErrors, 0, len(ve))
	for _, fe := range ve {
		failures = append(failures, ValidationError{
			Field: fe.Field(),
			Tag:   fe.Tag(),
			Param: fe.Param(),
		})
	}
	return failures
}
