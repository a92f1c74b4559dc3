// Package validation shapes field level input errors and normalizes email
// addresses.
package validation

import (
	"errors"
	"sort"
	"strings"

	ozzo "github.com/go-ozzo/ozzo-validation"
)

// FieldError describes a single invalid request field.
type FieldError struct {
	Type     string `json:"type"`
	Value    any    `json:"value"`
	Msg      string `json:"msg"`
	Path     string `json:"path"`
	Location string `json:"location"`
}

// Errors is the list of every invalid field of a request.
type Errors []FieldError

func (e Errors) Error() string {
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fe.Path + ": " + fe.Msg
	}
	return strings.Join(msgs, "; ")
}

// Has reports whether path failed validation.
func (e Errors) Has(path string) bool {
	for _, fe := range e {
		if fe.Path == path {
			return true
		}
	}
	return false
}

// Collect turns the result of ozzo.ValidateStruct into Errors. values holds
// the submitted value of each field keyed by its json name. Internal rule
// failures and nil are passed through unchanged.
func Collect(err error, values map[string]any) error {
	var fields ozzo.Errors
	if !errors.As(err, &fields) {
		return err
	}

	paths := make([]string, 0, len(fields))
	for path := range fields {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	out := make(Errors, 0, len(paths))
	for _, path := range paths {
		out = append(out, FieldError{
			Type:     "field",
			Value:    values[path],
			Msg:      fields[path].Error(),
			Path:     path,
			Location: "body",
		})
	}
	return out
}
