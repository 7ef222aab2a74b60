// Package fp is the public façade: a compiled expression parser generic
// over the scalar type it evaluates, built on the four scalar
// instantiations the engine ships (float64, float32, complex128, int64).
// Construction by copy shares the compiled program in O(1) (copy-on-write);
// see Parser.Share.
package fp

import (
	"fpgo/internal/errors"
	"fpgo/internal/numeric"
	"fpgo/internal/parser"
)

// ParseErrorKind classifies a failed Parse call.
type ParseErrorKind = errors.ParseErrorKind

// EvalError classifies a runtime domain error latched during Eval.
type EvalError = errors.EvalError

const (
	EvalNone         = errors.EvalNone
	EvalDivByZero    = errors.EvalDivByZero
	EvalSqrtError    = errors.EvalSqrtError
	EvalLogError     = errors.EvalLogError
	EvalTrigError    = errors.EvalTrigError
	EvalMaxRecursion = errors.EvalMaxRecursion
)

// Float64 is the default, most commonly instantiated parser.
type Float64 = parser.Parser[float64, numeric.Float64Ops]

// Float32 trades precision for a smaller literal pool and faster epsilon
// comparisons.
type Float32 = parser.Parser[float32, numeric.Float32Ops]

// Complex128 adds polar/argument/conjugate support and complex-domain
// transcendentals; real-only domain errors (log/sqrt/asin/acos) never
// latch for this backend.
type Complex128 = parser.Parser[complex128, numeric.Complex128Ops]

// Int64 is the integer backend: epsilon is zero, transcendentals are
// rejected at parse time for any function not flagged ok_for_int.
type Int64 = parser.Parser[int64, numeric.Int64Ops]

func NewFloat64() *Float64        { return parser.New[float64, numeric.Float64Ops]() }
func NewFloat32() *Float32        { return parser.New[float32, numeric.Float32Ops]() }
func NewComplex128() *Complex128  { return parser.New[complex128, numeric.Complex128Ops]() }
func NewInt64() *Int64            { return parser.New[int64, numeric.Int64Ops]() }
