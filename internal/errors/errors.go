// Package errors holds the parse/eval error taxonomy shared across the
// engine.
package errors

import (
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// ParseErrorKind enumerates the parse-time error taxonomy.
type ParseErrorKind string

const (
	SyntaxError            ParseErrorKind = "SyntaxError"
	MismatchedParenthesis  ParseErrorKind = "MismatchedParenthesis"
	MissingParenthesis     ParseErrorKind = "MissingParenthesis"
	EmptyParenthesis       ParseErrorKind = "EmptyParenthesis"
	ExpectedOperator       ParseErrorKind = "ExpectedOperator"
	OutOfMemory            ParseErrorKind = "OutOfMemory"
	InvalidVariableName    ParseErrorKind = "InvalidVariableName"
	IllegalParameterCount  ParseErrorKind = "IllegalParameterCount"
	ExpectedParenthesis    ParseErrorKind = "ExpectedParenthesis"
	PrematureEnd           ParseErrorKind = "PrematureEnd"
	InvalidChar            ParseErrorKind = "InvalidChar"
)

// ParseError is returned by Parser.Parse with the byte offset into the
// source text where the problem was detected. The compiled program is left
// empty when this is non-nil.
type ParseError struct {
	Kind   ParseErrorKind
	Offset int
	Detail string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s at offset %d: %s", e.Kind, e.Offset, e.Detail)
}

func NewParseError(kind ParseErrorKind, offset int, detail string) *ParseError {
	return &ParseError{Kind: kind, Offset: offset, Detail: detail}
}

// EvalError is the latched runtime error code. Zero value is EvalNone. Eval
// always returns a T alongside this code; the code is never thrown, only
// ever read back via an accessor.
type EvalError int

const (
	EvalNone EvalError = iota
	EvalDivByZero
	EvalSqrtError
	EvalLogError
	EvalTrigError
	EvalMaxRecursion
)

func (e EvalError) String() string {
	switch e {
	case EvalNone:
		return "None"
	case EvalDivByZero:
		return "DivByZero"
	case EvalSqrtError:
		return "SqrtError"
	case EvalLogError:
		return "LogError"
	case EvalTrigError:
		return "TrigError"
	case EvalMaxRecursion:
		return "MaxRecursion"
	default:
		return "Unknown"
	}
}

// WrapInternal annotates an optimizer-internal anomaly (a broken rule, a
// hash collision assumption that failed to hold) with a stack trace for
// debug logging. Nothing in the engine calls it at present: rewrite.Optimize
// skips a rule that does not apply and reports no anomalies.
func WrapInternal(err error, context string) error {
	return pkgerrors.Wrap(err, context)
}
