package expr

import (
	"errors"
	"fmt"
)

// InvalidExpressionMessage is shown to the user for every evaluation failure,
// whatever the underlying syntax fault.
const InvalidExpressionMessage = "Invalid Expression"

// ErrSyntax is wrapped by every *SyntaxError.
var ErrSyntax = errors.New("syntax error")

// SyntaxError reports the byte offset in the (sanitized) input where parsing failed.
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s at offset %d: %s", ErrSyntax, e.Pos, e.Msg)
}

func (e *SyntaxError) Unwrap() error { return ErrSyntax }
