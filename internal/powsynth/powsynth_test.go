package powsynth

import (
	"math"
	"testing"

	"fpgo/internal/bytecode"
	"fpgo/internal/codetree"
	"fpgo/internal/compiler"
	"fpgo/internal/errors"
	"fpgo/internal/numeric"
	"fpgo/internal/vm"
)

// countMuls walks the synthesized tree counting cMul/cSqr nodes, the
// "multiplicative instructions" the eval-time cost bound is measured in.
func countMuls[T any](n *codetree.Node[T]) int {
	count := 0
	if n.Op == bytecode.OpMul || n.Op == bytecode.OpSqr {
		count++
	}
	for _, p := range n.Children {
		count += countMuls[T](p.Child)
	}
	return count
}

// evalAt serializes and evaluates a synthesized tree with a single free
// variable bound to x, the same round trip codetree.Build's own tests use.
func evalAt(t *testing.T, n *codetree.Node[float64], x float64) float64 {
	t.Helper()
	prog := compiler.NewSerializer[float64]().Serialize(n)
	ops := numeric.Float64Ops{}
	got, errKind := vm.Eval[float64, numeric.Float64Ops](ops, prog, []float64{x}, nil)
	if errKind != errors.EvalNone {
		t.Fatalf("eval latched %v", errKind)
	}
	return got
}

func TestSynthesizeStaysUnder12For40(t *testing.T) {
	base := codetree.NewLeafVar[float64](0)
	out := Synthesize(base, 40)
	n := countMuls[float64](out)
	if n > 12 {
		t.Fatalf("synthesized %d multiplicative ops for exponent 40, want <= 12", n)
	}
	if n == 0 {
		t.Fatalf("synthesized tree has no multiplicative ops at all")
	}

	const x = 1.02
	got := evalAt(t, out, x)
	want := math.Pow(x, 40)
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("Synthesize(40) evaluated to %v, want %v", got, want)
	}
}

// TestSynthesizeMatchesPow checks, for every exponent in [2, MaxExponent],
// that the synthesized multiplication chain computes base^n to within a
// relative 1e-9 of math.Pow — the property a wrong bit-walk (as in a prior
// version of this function) breaks silently unless actually evaluated.
func TestSynthesizeMatchesPow(t *testing.T) {
	const x = 1.0000137
	for n := int64(2); n <= MaxExponent; n++ {
		base := codetree.NewLeafVar[float64](0)
		out := Synthesize(base, n)
		got := evalAt(t, out, x)
		want := math.Pow(x, float64(n))
		if math.Abs(got-want) > math.Abs(want)*1e-9+1e-9 {
			t.Fatalf("Synthesize(%d): got %v, want %v", n, got, want)
		}
	}
}

func TestSynthesizeSmallExponents(t *testing.T) {
	for _, exp := range []int64{2, 3, 5, 7, 16, 255} {
		base := codetree.NewLeafVar[float64](0)
		out := Synthesize(base, exp)
		if out == nil {
			t.Fatalf("Synthesize(%d) returned nil", exp)
		}
	}
}
