// Package powsynth synthesizes a short multiplication chain for an
// integer-exponent power, used by the rewrite package in place of a generic
// cPow call whenever the exponent is a compile-time literal.
package powsynth

import (
	"fpgo/internal/bytecode"
	"fpgo/internal/codetree"
)

// MaxExponent is the largest exponent the rewrite package hands to
// Synthesize (Synthesize itself does not check it); rewrite keeps a plain
// cPow call above this, same as it does for a non-integer exponent.
const MaxExponent = 255

// Synthesize builds base^n (n >= 2) via binary (square-and-multiply)
// exponentiation: a squaring per bit of n below the leading one, plus one
// multiply per additional set bit. Every reference to base beyond the first
// is an independent Clone, since CodeTree nodes are owned by exactly one
// parent.
func Synthesize[T any](base *codetree.Node[T], n int64) *codetree.Node[T] {
	if n < 0 {
		return codetree.NewOp[T](bytecode.OpInv, Synthesize(base, -n))
	}

	bits := bitsOf(n)
	result := base.Clone()
	for i := 1; i < len(bits); i++ {
		result = codetree.NewOp[T](bytecode.OpSqr, result)
		if bits[i] == 1 {
			result = codetree.NewOp[T](bytecode.OpMul, result, base.Clone())
		}
	}
	return result
}

// bitsOf returns n's bits, most significant first; n must be positive.
func bitsOf(n int64) []int {
	var bits []int
	for n > 0 {
		bits = append([]int{int(n & 1)}, bits...)
		n >>= 1
	}
	return bits
}
