package numeric

import (
	"math"
	"math/cmplx"
	"strconv"
)

// Complex128Epsilon is the default componentwise equality tolerance.
var Complex128Epsilon = 1e-12

// Complex128Ops is the Ops[complex128] instantiation.
type Complex128Ops struct{}

func (Complex128Ops) Zero() complex128 { return 0 }
func (Complex128Ops) One() complex128  { return 1 }

func (Complex128Ops) Add(a, b complex128) complex128 { return a + b }
func (Complex128Ops) Sub(a, b complex128) complex128 { return a - b }
func (Complex128Ops) Mul(a, b complex128) complex128 { return a * b }
func (Complex128Ops) Div(a, b complex128) complex128 { return a / b }
func (Complex128Ops) Mod(a, b complex128) complex128 {
	q := a / b
	return a - b*complex(math.Trunc(real(q)), math.Trunc(imag(q)))
}
func (Complex128Ops) Neg(a complex128) complex128 { return -a }
func (Complex128Ops) Abs(a complex128) complex128 { return complex(cmplx.Abs(a), 0) }
func (Complex128Ops) Inv(a complex128) complex128 { return 1 / a }

// Equal is standard componentwise epsilon equality: ==/!= stay
// epsilon-based rather than exact, same as the real backends.
func (Complex128Ops) Equal(a, b complex128) bool {
	return epsilonEqual(real(a), real(b), Complex128Epsilon) &&
		epsilonEqual(imag(a), imag(b), Complex128Epsilon)
}

// Less imposes a consistent strict order on values that have no natural
// total order: compare by squared magnitude first, then by imaginary part.
// Used for the engine's internal child-ordering as well as comparison ops.
func (Complex128Ops) Less(a, b complex128) bool {
	ma := real(a)*real(a) + imag(a)*imag(a)
	mb := real(b)*real(b) + imag(b)*imag(b)
	if !epsilonEqual(ma, mb, Complex128Epsilon) {
		return ma < mb
	}
	return imag(a) < imag(b)-Complex128Epsilon
}

func (Complex128Ops) Sin(a complex128) complex128  { return cmplx.Sin(a) }
func (Complex128Ops) Cos(a complex128) complex128  { return cmplx.Cos(a) }
func (Complex128Ops) Tan(a complex128) complex128  { return cmplx.Tan(a) }
func (Complex128Ops) Asin(a complex128) complex128 { return cmplx.Asin(a) }
func (Complex128Ops) Acos(a complex128) complex128 { return cmplx.Acos(a) }
func (Complex128Ops) Atan(a complex128) complex128 { return cmplx.Atan(a) }
func (Complex128Ops) Sinh(a complex128) complex128 { return cmplx.Sinh(a) }
func (Complex128Ops) Cosh(a complex128) complex128 { return cmplx.Cosh(a) }
func (Complex128Ops) Tanh(a complex128) complex128 { return cmplx.Tanh(a) }
func (Complex128Ops) Log(a complex128) complex128  { return cmplx.Log(a) }
func (Complex128Ops) Log2(a complex128) complex128 { return cmplx.Log10(a) / complex(math.Log10(2), 0) }
func (Complex128Ops) Log10(a complex128) complex128 { return cmplx.Log10(a) }
func (Complex128Ops) Exp(a complex128) complex128  { return cmplx.Exp(a) }
func (Complex128Ops) Exp2(a complex128) complex128 { return cmplx.Exp(a * complex(math.Ln2, 0)) }
func (Complex128Ops) Sqrt(a complex128) complex128 { return cmplx.Sqrt(a) }

// Cbrt takes the principal complex cube root; unlike the real backend's
// negative-real special case, complex T has no reason to prefer the
// negative real root since the domain is unrestricted.
func (Complex128Ops) Cbrt(a complex128) complex128 {
	return cmplx.Pow(a, complex(1.0/3.0, 0))
}

func (Complex128Ops) Hypot(a, b complex128) complex128 {
	return complex(math.Hypot(cmplx.Abs(a), cmplx.Abs(b)), 0)
}

// Pow always goes through exp(y*log(x)), with a shortcut when x is real and
// non-negative to avoid an unnecessary trip through complex math.Log.
func (o Complex128Ops) Pow(a, b complex128) complex128 {
	if b == 1 {
		return a
	}
	if imag(a) == 0 && real(a) >= 0 && imag(b) == 0 {
		return complex(math.Pow(real(a), real(b)), 0)
	}
	return cmplx.Exp(b * cmplx.Log(a))
}

// Atan2 handles complex T's two degenerate cases explicitly:
// atan2(0,x) = arg(x), atan2(y,0) = -pi/2.
func (o Complex128Ops) Atan2(y, x complex128) complex128 {
	if y == 0 {
		return complex(o.argFloat(x), 0)
	}
	if x == 0 {
		return complex(-math.Pi/2, 0)
	}
	return cmplx.Atan(y / x)
}

func (Complex128Ops) argFloat(a complex128) float64 { return cmplx.Phase(a) }

func (o Complex128Ops) Min(a, b complex128) complex128 {
	if o.Less(a, b) {
		return a
	}
	return b
}
func (o Complex128Ops) Max(a, b complex128) complex128 {
	if o.Less(a, b) {
		return b
	}
	return a
}
func (Complex128Ops) Floor(a complex128) complex128 {
	return complex(math.Floor(real(a)), math.Floor(imag(a)))
}
func (Complex128Ops) Ceil(a complex128) complex128 {
	return complex(math.Ceil(real(a)), math.Ceil(imag(a)))
}
func (Complex128Ops) Trunc(a complex128) complex128 {
	return complex(math.Trunc(real(a)), math.Trunc(imag(a)))
}
func (Complex128Ops) IntRound(a complex128) complex128 {
	return complex(roundHalfAwayFromZero(real(a)), roundHalfAwayFromZero(imag(a)))
}

func (Complex128Ops) Deg(a complex128) complex128 { return a * complex(180/math.Pi, 0) }
func (Complex128Ops) Rad(a complex128) complex128 { return a * complex(math.Pi/180, 0) }

func (Complex128Ops) IsInteger(a complex128) bool {
	return imag(a) == 0 && real(a) == math.Trunc(real(a))
}
func (o Complex128Ops) IsLongInteger(a complex128) bool {
	_, ok := o.ToLong(a)
	return ok
}
func (Complex128Ops) ToLong(a complex128) (int64, bool) {
	if imag(a) != 0 || real(a) != math.Trunc(real(a)) || real(a) < math.MinInt64 || real(a) > math.MaxInt64 {
		return 0, false
	}
	return int64(real(a)), true
}
func (Complex128Ops) PrecisionDigits() int { return 15 }

// Truthy applies a real-component test: the imaginary part never
// participates in a branch condition.
func (Complex128Ops) Truthy(a complex128) bool { return math.Abs(real(a)) >= 0.5 }

func (Complex128Ops) IsComplex() bool { return true }
func (Complex128Ops) Real(a complex128) complex128 { return complex(real(a), 0) }
func (Complex128Ops) Imag(a complex128) complex128 { return complex(imag(a), 0) }
func (o Complex128Ops) Arg(a complex128) complex128 { return complex(o.argFloat(a), 0) }
func (Complex128Ops) Conj(a complex128) complex128  { return cmplx.Conj(a) }

func (Complex128Ops) Polar(r, theta complex128) complex128 {
	rr, th := real(r), real(theta)
	return complex(rr*math.Cos(th), rr*math.Sin(th))
}

func (Complex128Ops) Format(a complex128) string {
	return strconv.FormatFloat(real(a), 'g', -1, 64) + "+" + strconv.FormatFloat(imag(a), 'g', -1, 64) + "i"
}

func (Complex128Ops) ParseLiteral(lexeme string) (complex128, bool) {
	mag, isImag, ok := parseComplexLiteral(lexeme)
	if !ok {
		return 0, false
	}
	if isImag {
		return complex(0, mag), true
	}
	return complex(mag, 0), true
}
