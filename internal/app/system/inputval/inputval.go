// Package inputval validates decoded JSON request bodies with struct tags,
// using waffle/pantry/validate, and turns failures into messages keyed by
// JSON field name.
//
// Example:
//
//	type loginInput struct {
//	    Email    string `json:"email" validate:"required,email,max=254" label:"Email"`
//	    Password string `json:"password" validate:"required,notblank" label:"Password"`
//	}
//
//	if res := inputval.Validate(in); res.HasErrors() {
//	    jsonutil.ValidationError(w, res.Fields())
//	    return
//	}
package inputval

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/dalemusser/waffle/pantry/validate"
)

// FieldError is the failure of one field. Field is the JSON name.
type FieldError struct {
	Field   string
	Message string
}

// Result holds the failures of one Validate call, in struct field order.
type Result struct {
	Errors []FieldError
}

// HasErrors reports whether any field failed.
func (r *Result) HasErrors() bool {
	return len(r.Errors) > 0
}

// First returns the first message, or "" when nothing failed.
func (r *Result) First() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Message
}

// Fields returns one message per field, for jsonutil.ValidationError.
func (r *Result) Fields() map[string]string {
	out := make(map[string]string, len(r.Errors))
	for _, e := range r.Errors {
		if _, seen := out[e.Field]; !seen {
			out[e.Field] = e.Message
		}
	}
	return out
}

var (
	validator     *validate.Validator
	validatorOnce sync.Once
)

func getValidator() *validate.Validator {
	validatorOnce.Do(func() {
		validator = validate.New(validate.WithStopOnFirstError())

		// notblank: a string with at least one non-space character
		validator.RegisterRuleFunc("notblank", func(value any) bool {
			s, ok := value.(string)
			return ok && strings.TrimSpace(s) != ""
		}, "notblank")
	})
	return validator
}

// Validate checks s against its `validate` tags. Messages use the `label`
// tag, falling back to the field name. Non-struct values yield an empty Result.
//
// Rules: required, email, min=N, max=N, oneof=a b (pantry/validate) and
// notblank (registered here).
func Validate(s any) *Result {
	res := &Result{}
	err := getValidator().Struct(s)
	if err == nil {
		return res
	}

	var errs validate.Errors
	if !errors.As(err, &errs) {
		return res
	}
	labels := fieldLabels(s)
	for _, e := range errs {
		label := labels[e.Field]
		if label == "" {
			label = e.Field
		}
		res.Errors = append(res.Errors, FieldError{
			Field:   e.Field,
			Message: message(label, e.Rule, e.Param),
		})
	}
	return res
}

// fieldLabels maps JSON field names (or Go names without a json tag) to
// their label tag.
func fieldLabels(s any) map[string]string {
	labels := make(map[string]string)

	v := reflect.ValueOf(s)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return labels
	}

	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		label := f.Tag.Get("label")
		if label == "" {
			continue
		}
		name := f.Name
		if tag, _, _ := strings.Cut(f.Tag.Get("json"), ","); tag != "" && tag != "-" {
			name = tag
		}
		labels[name] = label
	}
	return labels
}

func message(label, rule, param string) string {
	switch rule {
	case "required", "notblank":
		return label + " is required."
	case "email":
		return "A valid email address is required."
	case "oneof":
		return label + " must be one of: " + strings.ReplaceAll(param, " ", ", ") + "."
	case "min":
		return label + " must be at least " + param + " characters."
	case "max":
		return label + " must be at most " + param + " characters."
	default:
		return label + " is invalid."
	}
}
