package ypath

import (
	"errors"
	"fmt"
)

// ErrMalformedExpression indicates text that cannot be parsed into segments.
var ErrMalformedExpression = errors.New("malformed YAML Path")

// ExpressionError carries the offending sub-expression and the full
// expression text.
type ExpressionError struct {
	Expression string
	Segment    string
	Message    string
}

func (e *ExpressionError) Error() string {
	if e.Segment != "" {
		return fmt.Sprintf("%s, segment %q, in YAML Path %q", e.Message, e.Segment, e.Expression)
	}
	return fmt.Sprintf("%s, in YAML Path %q", e.Message, e.Expression)
}

func (e *ExpressionError) Unwrap() error {
	return ErrMalformedExpression
}

func malformed(expr, segment, format string, args ...any) error {
	return &ExpressionError{Expression: expr, Segment: segment, Message: fmt.Sprintf(format, args...)}
}
