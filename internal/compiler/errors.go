package compiler

import (
	"fmt"

	"github.com/roach88/apigraph/internal/converter"
)

// ErrStructural marks input that resolves but does not fit together.
// Resolution failures use the resolver package's sentinels.
var ErrStructural = converter.ErrStructural

// StructuralError names the file and declaration behind an
// ErrStructural.
type StructuralError = converter.StructuralError

func structural(file, declaration, format string, args ...any) *StructuralError {
	return &StructuralError{File: file, Declaration: declaration, Message: fmt.Sprintf(format, args...)}
}
