package errors

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalid = errors.New("invalid")

// Article-level failures. They are reported per file and never abort a build.
var (
	ErrMalformedArticle  = errors.New("malformed article")
	ErrDuplicateFilename = errors.New("duplicate filename")
	ErrEmptySlug         = errors.New("empty slug")
	ErrSlugCollision     = errors.New("slug collision")

	// ErrTemplatePlaceholder marks a template lacking one of its placeholders.
	ErrTemplatePlaceholder = errors.New("template placeholder missing")
)

type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

type ValidationError struct {
	Items []FieldError
}

func (e ValidationError) Error() string {
	if len(e.Items) == 0 {
		return "validation failed"
	}

	var b strings.Builder
	b.WriteString("validation failed:\n")
	for _, item := range e.Items {
		b.WriteString(" - ")
		b.WriteString(item.Error())
		b.WriteString("\n")
	}
	return b.String()
}

func (e *ValidationError) Add(field, msg string) {
	e.Items = append(e.Items, FieldError{
		Field:   field,
		Message: msg,
	})
}

func (e ValidationError) Is(target error) bool {
	return target == ErrInvalid
}

func (e ValidationError) HasAny() bool {
	return len(e.Items) > 0
}

// Malformed wraps ErrMalformedArticle with the reason the source was rejected.
func Malformed(reason string) error {
	return fmt.Errorf("%w: %s", ErrMalformedArticle, reason)
}
