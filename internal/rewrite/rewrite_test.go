package rewrite

import (
	"testing"

	"fpgo/internal/bytecode"
	"fpgo/internal/codetree"
	"fpgo/internal/numeric"
)

func TestConstantFolding(t *testing.T) {
	ops := numeric.Float64Ops{}
	// (2 + 3) * 4
	sum := codetree.NewOp[float64](bytecode.OpAdd, codetree.NewLeafLiteral(2.0), codetree.NewLeafLiteral(3.0))
	root := codetree.NewOp[float64](bytecode.OpMul, sum, codetree.NewLeafLiteral(4.0))

	out := Optimize[float64, numeric.Float64Ops](ops, root)
	if !out.HasLiteral {
		t.Fatalf("expected a folded literal, got op %v", out.Op)
	}
	if out.Literal != 20 {
		t.Fatalf("got %v, want 20", out.Literal)
	}
}

func TestPythagoreanIdentityFolds(t *testing.T) {
	ops := numeric.Float64Ops{}
	x := codetree.NewLeafVar[float64](0)
	sinX2 := codetree.NewOp[float64](bytecode.OpPow, codetree.NewOp[float64](bytecode.OpSin, x), codetree.NewLeafLiteral(2.0))
	cosX2 := codetree.NewOp[float64](bytecode.OpPow, codetree.NewOp[float64](bytecode.OpCos, x.Clone()), codetree.NewLeafLiteral(2.0))
	root := codetree.NewOp[float64](bytecode.OpAdd, sinX2, cosX2)

	out := Optimize[float64, numeric.Float64Ops](ops, root)
	if !out.HasLiteral || out.Literal != 1 {
		t.Fatalf("expected literal 1, got op=%v literal=%v", out.Op, out.Literal)
	}
}

func TestIdentityElements(t *testing.T) {
	ops := numeric.Float64Ops{}
	x := codetree.NewLeafVar[float64](0)
	// (x + 0) * 1
	plusZero := codetree.NewOp[float64](bytecode.OpAdd, x, codetree.NewLeafLiteral(0.0))
	root := codetree.NewOp[float64](bytecode.OpMul, plusZero, codetree.NewLeafLiteral(1.0))

	out := Optimize[float64, numeric.Float64Ops](ops, root)
	if !out.IsVar || out.VarIdx != 0 {
		t.Fatalf("expected bare var x, got op=%v isVar=%v", out.Op, out.IsVar)
	}
}

// TestRangeFoldsDisjointComparison checks that abs(x)+1 < 0 folds to a
// literal false: the range analyzer proves abs(x)+1 has range [1, +Inf),
// entirely above zero, without knowing anything about x itself.
func TestRangeFoldsDisjointComparison(t *testing.T) {
	ops := numeric.Float64Ops{}
	x := codetree.NewLeafVar[float64](0)
	absX := codetree.NewOp[float64](bytecode.OpAbs, x)
	absXPlus1 := codetree.NewOp[float64](bytecode.OpAdd, absX, codetree.NewLeafLiteral(1.0))
	root := codetree.NewOp[float64](bytecode.OpLt, absXPlus1, codetree.NewLeafLiteral(0.0))

	out := Optimize[float64, numeric.Float64Ops](ops, root)
	if !out.HasLiteral || out.Literal != 0 {
		t.Fatalf("expected folded literal 0 (false), got op=%v literal=%v hasLiteral=%v", out.Op, out.Literal, out.HasLiteral)
	}
}

// TestRangeLowersAndToAbsAnd checks that x^2 and (y^2+1) — both provably
// non-negative regardless of x/y — rewrite a plain cAnd into the
// sign-agnostic cAbsAnd form.
func TestRangeLowersAndToAbsAnd(t *testing.T) {
	ops := numeric.Float64Ops{}
	x := codetree.NewLeafVar[float64](0)
	y := codetree.NewLeafVar[float64](1)
	xSq := codetree.NewOp[float64](bytecode.OpPow, x, codetree.NewLeafLiteral(2.0))
	ySqPlus1 := codetree.NewOp[float64](bytecode.OpAdd,
		codetree.NewOp[float64](bytecode.OpPow, y, codetree.NewLeafLiteral(2.0)),
		codetree.NewLeafLiteral(1.0))
	root := codetree.NewOp[float64](bytecode.OpAnd, xSq, ySqPlus1)

	out := Optimize[float64, numeric.Float64Ops](ops, root)
	if out.Op != bytecode.OpAbsAnd {
		t.Fatalf("expected cAbsAnd, got op=%v", out.Op)
	}
}
