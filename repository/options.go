package repository

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/code19m/errx"
)

// ListOptions collects GetList options.
type ListOptions struct {
	Includes []string
}

// ListOption configures GetList.
type ListOption func(*ListOptions)

// Include eagerly loads the named relations.
func Include(relations ...string) ListOption {
	return func(o *ListOptions) {
		for _, r := range relations {
			if !slices.Contains(o.Includes, r) {
				o.Includes = append(o.Includes, r)
			}
		}
	}
}

// ApplyListOptions folds opts into ListOptions.
func ApplyListOptions(opts ...ListOption) ListOptions {
	var o ListOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NotFound builds the error returned for a missing entity.
func NotFound[E any](code string, id any) error {
	return errx.New(
		fmt.Sprintf("no %s found", NameOf[E]()),
		errx.WithCode(code),
		errx.WithType(errx.T_NotFound),
		errx.WithDetails(errx.D{"id": id}),
	)
}

// Conflict builds the error returned when an identity is taken.
func Conflict[E any](id any) error {
	return errx.New(
		fmt.Sprintf("%s already exists", NameOf[E]()),
		errx.WithCode(CodeConflict),
		errx.WithType(errx.T_Conflict),
		errx.WithDetails(errx.D{"id": id}),
	)
}

// NoSession builds the error returned by writes outside a session.
func NoSession[E any]() error {
	return errx.New(
		fmt.Sprintf("no session in context to stage %s", NameOf[E]()),
		errx.WithCode(CodeNoSession),
	)
}

// NameOf returns the type name of E, looking through pointers.
func NameOf[E any]() string {
	t := reflect.TypeFor[E]()
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}
