// Package validation wraps a shared go-playground validator instance.
//
// The validator caches struct metadata, so one instance serves the whole
// process.
package validation

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the process-wide validator.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Struct validates s against its `validate` tags and flattens any field
// errors into a single readable error.
func Struct(s interface{}) error {
	return flatten(Validator().Struct(s))
}

// FailedTags returns the namespace→tag pairs of a validation error, for
// callers that map individual rules to user-facing text.
func FailedTags(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	tags := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		tags[fe.Field()] = fe.Tag()
	}
	return tags
}

// FieldErrors keeps the validator's errors reachable through errors.As
// while giving a compact message.
type FieldErrors struct {
	validator.ValidationErrors
}

func (e FieldErrors) Error() string {
	parts := make([]string, 0, len(e.ValidationErrors))
	for _, fe := range e.ValidationErrors {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s failed %s=%s", fe.Namespace(), fe.Tag(), fe.Param()))
		} else {
			parts = append(parts, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}

func (e FieldErrors) Unwrap() error {
	return e.ValidationErrors
}

func flatten(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return FieldErrors{verrs}
	}
	return err
}
