package numeric

import (
	"math"
	"strconv"
)

// Float32Epsilon is the default equality tolerance for the float32 backend.
var Float32Epsilon float32 = 1e-5

// Float32Ops is the Ops[float32] instantiation.
type Float32Ops struct{}

func (Float32Ops) Zero() float32 { return 0 }
func (Float32Ops) One() float32  { return 1 }

func (Float32Ops) Add(a, b float32) float32 { return a + b }
func (Float32Ops) Sub(a, b float32) float32 { return a - b }
func (Float32Ops) Mul(a, b float32) float32 { return a * b }
func (Float32Ops) Div(a, b float32) float32 { return a / b }
func (Float32Ops) Mod(a, b float32) float32 { return float32(math.Mod(float64(a), float64(b))) }
func (Float32Ops) Neg(a float32) float32    { return -a }
func (Float32Ops) Abs(a float32) float32    { return float32(math.Abs(float64(a))) }
func (Float32Ops) Inv(a float32) float32    { return 1 / a }

func (Float32Ops) Equal(a, b float32) bool { return epsilonEqual(a, b, Float32Epsilon) }
func (Float32Ops) Less(a, b float32) bool  { return a < b-Float32Epsilon }

func (Float32Ops) Sin(a float32) float32   { return float32(math.Sin(float64(a))) }
func (Float32Ops) Cos(a float32) float32   { return float32(math.Cos(float64(a))) }
func (Float32Ops) Tan(a float32) float32   { return float32(math.Tan(float64(a))) }
func (Float32Ops) Asin(a float32) float32  { return float32(math.Asin(float64(a))) }
func (Float32Ops) Acos(a float32) float32  { return float32(math.Acos(float64(a))) }
func (Float32Ops) Atan(a float32) float32  { return float32(math.Atan(float64(a))) }
func (Float32Ops) Sinh(a float32) float32  { return float32(math.Sinh(float64(a))) }
func (Float32Ops) Cosh(a float32) float32  { return float32(math.Cosh(float64(a))) }
func (Float32Ops) Tanh(a float32) float32  { return float32(math.Tanh(float64(a))) }
func (Float32Ops) Log(a float32) float32   { return float32(math.Log(float64(a))) }
func (Float32Ops) Log2(a float32) float32  { return float32(math.Log2(float64(a))) }
func (Float32Ops) Log10(a float32) float32 { return float32(math.Log10(float64(a))) }
func (Float32Ops) Exp(a float32) float32   { return float32(math.Exp(float64(a))) }
func (Float32Ops) Exp2(a float32) float32  { return float32(math.Exp2(float64(a))) }
func (Float32Ops) Sqrt(a float32) float32  { return float32(math.Sqrt(float64(a))) }
func (Float32Ops) Cbrt(a float32) float32  { return float32(math.Cbrt(float64(a))) }

func (Float32Ops) Hypot(a, b float32) float32 { return float32(math.Hypot(float64(a), float64(b))) }

func (o Float32Ops) Pow(a, b float32) float32 {
	if b == 1 {
		return a
	}
	if a == 1 {
		return 1
	}
	if n, ok := o.ToLong(b); ok {
		return float32(intPow(float64(a), n))
	}
	if a < 0 {
		return float32(-math.Exp(math.Log(float64(-a)) * float64(b)))
	}
	return float32(math.Exp(math.Log(float64(a)) * float64(b)))
}

func (Float32Ops) Atan2(a, b float32) float32 { return float32(math.Atan2(float64(a), float64(b))) }
func (Float32Ops) Min(a, b float32) float32   { return float32(math.Min(float64(a), float64(b))) }
func (Float32Ops) Max(a, b float32) float32   { return float32(math.Max(float64(a), float64(b))) }
func (Float32Ops) Floor(a float32) float32    { return float32(math.Floor(float64(a))) }
func (Float32Ops) Ceil(a float32) float32     { return float32(math.Ceil(float64(a))) }
func (Float32Ops) Trunc(a float32) float32    { return float32(math.Trunc(float64(a))) }
func (Float32Ops) IntRound(a float32) float32 { return roundHalfAwayFromZero(a) }

func (Float32Ops) Deg(a float32) float32 { return a * float32(180/math.Pi) }
func (Float32Ops) Rad(a float32) float32 { return a * float32(math.Pi/180) }

func (Float32Ops) IsInteger(a float32) bool { return a == float32(math.Trunc(float64(a))) }
func (o Float32Ops) IsLongInteger(a float32) bool {
	_, ok := o.ToLong(a)
	return ok
}
func (Float32Ops) ToLong(a float32) (int64, bool) {
	t := math.Trunc(float64(a))
	if float64(a) != t || t < math.MinInt64 || t > math.MaxInt64 {
		return 0, false
	}
	return int64(t), true
}
func (Float32Ops) PrecisionDigits() int { return 6 }

func (Float32Ops) Truthy(a float32) bool { return math.Abs(float64(a)) >= 0.5 }

func (Float32Ops) IsComplex() bool        { return false }
func (Float32Ops) Real(a float32) float32 { return a }
func (Float32Ops) Imag(float32) float32   { return 0 }
func (Float32Ops) Arg(a float32) float32 {
	if a < 0 {
		return float32(math.Pi)
	}
	return 0
}
func (Float32Ops) Conj(a float32) float32 { return a }

// Polar is never called for a non-complex T (the builtin is ComplexOnly).
func (Float32Ops) Polar(r, theta float32) float32 { return r }

func (Float32Ops) Format(a float32) string { return strconv.FormatFloat(float64(a), 'g', -1, 32) }

func (Float32Ops) ParseLiteral(lexeme string) (float32, bool) {
	v, ok := parseRealLiteral(lexeme)
	return float32(v), ok
}
