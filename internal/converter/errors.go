package converter

import (
	"errors"
	"fmt"
)

// ErrStructural marks input that resolves but does not fit together, such
// as a path template naming an undeclared parameter.
var ErrStructural = errors.New("structural inconsistency")

// StructuralError is an ErrStructural with the file and declaration at
// fault.
type StructuralError struct {
	File        string
	Declaration string
	Message     string
}

func (e *StructuralError) Error() string {
	if e.Declaration == "" {
		return fmt.Sprintf("%s: %s", e.File, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.File, e.Declaration, e.Message)
}

func (e *StructuralError) Unwrap() error {
	return ErrStructural
}

func structural(file, declaration, format string, args ...any) *StructuralError {
	return &StructuralError{File: file, Declaration: declaration, Message: fmt.Sprintf(format, args...)}
}

// Warning is a recoverable problem, such as an example that was dropped.
type Warning struct {
	File        string `json:"file"`
	Declaration string `json:"declaration"`
	Message     string `json:"message"`
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s: %s", w.File, w.Declaration, w.Message)
}
