package resolver

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownSymbol means a reference matched no declaration.
	ErrUnknownSymbol = errors.New("unknown symbol")
	// ErrAmbiguousReference means a reference matched several declarations.
	ErrAmbiguousReference = errors.New("ambiguous reference")
	// ErrBrokenImport means an import points at a file that does not exist.
	ErrBrokenImport = errors.New("broken import")
	// ErrExampleMismatch means an example does not fit its type.
	ErrExampleMismatch = errors.New("example mismatch")
)

// ResolutionError reports a reference that could not be resolved, with
// the file it was written in.
type ResolutionError struct {
	Symbol     string // "type", "error" or "variable"
	Reference  string
	File       string
	Candidates []string
	Err        error
	Cause      error
}

func (e *ResolutionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s %q: %v", e.File, e.Symbol, e.Reference, e.Err)
	if len(e.Candidates) > 0 {
		fmt.Fprintf(&b, " (candidates: %s)", strings.Join(e.Candidates, ", "))
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

func (e *ResolutionError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

// MismatchKind classifies an example mismatch.
type MismatchKind string

const (
	MissingRequiredField MismatchKind = "missing required field"
	UnexpectedProperty   MismatchKind = "unexpected property"
	WrongPrimitiveKind   MismatchKind = "wrong primitive kind"
	InvalidFormat        MismatchKind = "invalid format"
	UnknownDiscriminant  MismatchKind = "unknown discriminant value"
	NotAnEnumValue       MismatchKind = "not an enum value"
	LiteralMismatch      MismatchKind = "literal mismatch"
	NoMatchingMember     MismatchKind = "no matching union member"
	WrongShape           MismatchKind = "wrong shape"
	RecursiveType        MismatchKind = "recursive type"
)

// ExampleMismatchError locates the first place an example diverges from
// its type. Path is a JSON path rooted at "$".
type ExampleMismatchError struct {
	Path   string
	Kind   MismatchKind
	Detail string
}

func (e *ExampleMismatchError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %s", e.Path, e.Kind, e.Detail)
}

func (e *ExampleMismatchError) Unwrap() error {
	return ErrExampleMismatch
}

func mismatch(path string, kind MismatchKind, format string, args ...any) *ExampleMismatchError {
	return &ExampleMismatchError{Path: path, Kind: kind, Detail: fmt.Sprintf(format, args...)}
}
