package numeric

import "strconv"

// Int64Ops is the Ops[int64] instantiation: the integer scalar type, for
// which epsilon is zero and every transcendental is a no-op pass-through
// (the parser rejects function names not flagged ok_for_int before any of
// these are ever called).
type Int64Ops struct{}

func (Int64Ops) integerOnly() {}

func (Int64Ops) Zero() int64 { return 0 }
func (Int64Ops) One() int64  { return 1 }

func (Int64Ops) Add(a, b int64) int64 { return a + b }
func (Int64Ops) Sub(a, b int64) int64 { return a - b }
func (Int64Ops) Mul(a, b int64) int64 { return a * b }
func (Int64Ops) Div(a, b int64) int64 { return a / b }
func (Int64Ops) Mod(a, b int64) int64 { return a % b }
func (Int64Ops) Neg(a int64) int64    { return -a }
func (Int64Ops) Abs(a int64) int64 {
	if a < 0 {
		return -a
	}
	return a
}
func (Int64Ops) Inv(a int64) int64 {
	if a == 0 {
		return 0
	}
	return 1 / a
}

func (Int64Ops) Equal(a, b int64) bool { return a == b }
func (Int64Ops) Less(a, b int64) bool  { return a < b }

// Transcendentals are identity functions here.
func (Int64Ops) Sin(a int64) int64   { return a }
func (Int64Ops) Cos(a int64) int64   { return a }
func (Int64Ops) Tan(a int64) int64   { return a }
func (Int64Ops) Asin(a int64) int64  { return a }
func (Int64Ops) Acos(a int64) int64  { return a }
func (Int64Ops) Atan(a int64) int64  { return a }
func (Int64Ops) Sinh(a int64) int64  { return a }
func (Int64Ops) Cosh(a int64) int64  { return a }
func (Int64Ops) Tanh(a int64) int64  { return a }
func (Int64Ops) Log(a int64) int64   { return a }
func (Int64Ops) Log2(a int64) int64  { return a }
func (Int64Ops) Log10(a int64) int64 { return a }
func (Int64Ops) Exp(a int64) int64   { return a }
func (Int64Ops) Exp2(a int64) int64  { return a }
func (Int64Ops) Sqrt(a int64) int64  { return a }
func (Int64Ops) Cbrt(a int64) int64  { return a }

func (Int64Ops) Hypot(a, b int64) int64 { return a + b }

func (Int64Ops) Pow(a, b int64) int64 {
	neg := b < 0
	if neg {
		b = -b
	}
	result := int64(1)
	base := a
	for b > 0 {
		if b&1 == 1 {
			result *= base
		}
		base *= base
		b >>= 1
	}
	if neg {
		if result == 0 {
			return 0
		}
		return 1 / result
	}
	return result
}

func (Int64Ops) Atan2(a, b int64) int64 { return a }
func (Int64Ops) Min(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
func (Int64Ops) Max(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
func (Int64Ops) Floor(a int64) int64    { return a }
func (Int64Ops) Ceil(a int64) int64     { return a }
func (Int64Ops) Trunc(a int64) int64    { return a }
func (Int64Ops) IntRound(a int64) int64 { return a }

func (Int64Ops) Deg(a int64) int64 { return a }
func (Int64Ops) Rad(a int64) int64 { return a }

func (Int64Ops) IsInteger(int64) bool     { return true }
func (Int64Ops) IsLongInteger(int64) bool { return true }
func (Int64Ops) ToLong(a int64) (int64, bool) { return a, true }
func (Int64Ops) PrecisionDigits() int         { return 19 }

func (Int64Ops) Truthy(a int64) bool { return a != 0 }

func (Int64Ops) IsComplex() bool    { return false }
func (Int64Ops) Real(a int64) int64 { return a }
func (Int64Ops) Imag(int64) int64   { return 0 }
func (Int64Ops) Arg(a int64) int64 {
	if a < 0 {
		return 1
	}
	return 0
}
func (Int64Ops) Conj(a int64) int64 { return a }

// Polar is never called for integer T (the builtin is ComplexOnly).
func (Int64Ops) Polar(r, theta int64) int64 { return r }

func (Int64Ops) Format(a int64) string { return strconv.FormatInt(a, 10) }

// ParseLiteral rejects fractional/exponent/complex forms: an integer T has
// no representation for them.
func (Int64Ops) ParseLiteral(lexeme string) (int64, bool) {
	base := 10
	if len(lexeme) > 2 && lexeme[0] == '0' && (lexeme[1] == 'x' || lexeme[1] == 'X') {
		base = 0 // let ParseInt consume the 0x prefix itself
	}
	v, err := strconv.ParseInt(lexeme, base, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
