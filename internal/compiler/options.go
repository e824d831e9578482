package compiler

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/roach88/apigraph/internal/casing"
	"github.com/roach88/apigraph/internal/graph"
)

// ErrInvalidOptions is returned when Options fail validation.
var ErrInvalidOptions = errors.New("invalid options")

var validate = validator.New()

// Options configure one build.
type Options struct {
	// Audiences selects the projection. Empty means every declaration.
	Audiences []string `validate:"dive,required"`

	// Language picks the reserved words escaped in safe names.
	Language casing.Language `validate:"omitempty,oneof=go java python typescript"`

	// Concurrency bounds how many files convert at once. Zero means
	// GOMAXPROCS.
	Concurrency int `validate:"gte=0,lte=256"`

	Logger *slog.Logger
}

// Filter returns the graph filter for o.Audiences.
func (o Options) Filter() graph.Filter {
	return graph.ForAudiences(o.Audiences...)
}

func (o Options) withDefaults() (Options, error) {
	if err := validate.Struct(o); err != nil {
		return o, fmt.Errorf("%w: %s", ErrInvalidOptions, describeValidation(err))
	}
	if o.Concurrency == 0 {
		o.Concurrency = runtime.GOMAXPROCS(0)
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o, nil
}

func describeValidation(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		var msg string
		switch fe.Tag() {
		case "required":
			msg = "must not be empty"
		case "oneof":
			msg = fmt.Sprintf("must be one of: %s", fe.Param())
		case "gte":
			msg = fmt.Sprintf("must be at least %s", fe.Param())
		case "lte":
			msg = fmt.Sprintf("must be at most %s", fe.Param())
		default:
			msg = fmt.Sprintf("failed %s validation", fe.Tag())
		}
		msgs = append(msgs, fe.Namespace()+": "+msg)
	}
	return strings.Join(msgs, "; ")
}
