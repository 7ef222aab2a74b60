// Package rewrite is the algebraic optimizer: a rule-driven tree rewriter
// plus a constant folder, run to a fixpoint over a codetree.Node.
package rewrite

import (
	"fpgo/internal/bytecode"
	"fpgo/internal/codetree"
	"fpgo/internal/numeric"
	"fpgo/internal/powsynth"
)

// maxPasses bounds the fixpoint loop; real rule sets converge in a handful
// of passes, and a well-formed tree never oscillates, but a stray rule bug
// should not hang the caller.
const maxPasses = 8

// Optimize rewrites root bottom-up to a fixpoint: constant subexpressions
// fold, recognized identities collapse, and integer-literal powers lower to
// a squaring chain. It never fails; a rule that doesn't apply is skipped.
func Optimize[T any, O numeric.Ops[T]](ops O, root *codetree.Node[T]) *codetree.Node[T] {
	node := root
	for pass := 0; pass < maxPasses; pass++ {
		rewritten, changed := rewriteOnce(ops, node)
		node = rewritten
		if !changed {
			break
		}
	}
	return node
}

func rewriteOnce[T any, O numeric.Ops[T]](ops O, n *codetree.Node[T]) (*codetree.Node[T], bool) {
	changed := false
	for i := range n.Children {
		c, ch := rewriteOnce(ops, n.Children[i].Child)
		if ch {
			n.Children[i].Child = c
			changed = true
		}
	}
	if changed {
		n.Recompute()
	}

	if folded, ok := foldConstant(ops, n); ok {
		return folded, true
	}
	if simplified, ok := applyIdentities(ops, n); ok {
		simplified.Recompute()
		return simplified, true
	}
	if guarded, ok := rangeGuardedRewrite(ops, n); ok {
		guarded.Recompute()
		return guarded, true
	}
	if synthesized, ok := synthesizePower(ops, n); ok {
		return synthesized, true
	}
	return n, changed
}

// rangeGuardedRewrite applies the rewrites that need a value-range proof to
// be sound: lowering cAnd/cOr to their sign-agnostic cAbsAnd/cAbsOr forms
// once both operands are proven non-negative, and folding a comparison whose
// operand ranges are proven to never overlap.
func rangeGuardedRewrite[T any, O numeric.Ops[T]](ops O, n *codetree.Node[T]) (*codetree.Node[T], bool) {
	switch n.Op {
	case bytecode.OpAnd, bytecode.OpOr:
		a, b := n.Children[0].Child, n.Children[1].Child
		ranges := analyzeRanges[T, O](ops, n)
		if isDefinitelyNonNegative(ops, ranges[a]) && isDefinitelyNonNegative(ops, ranges[b]) {
			newOp := bytecode.OpAbsAnd
			if n.Op == bytecode.OpOr {
				newOp = bytecode.OpAbsOr
			}
			return codetree.NewOp(newOp, a, b), true
		}

	case bytecode.OpLt, bytecode.OpLe, bytecode.OpGt, bytecode.OpGe:
		a, b := n.Children[0].Child, n.Children[1].Child
		ranges := analyzeRanges[T, O](ops, n)
		if result, ok := foldComparisonByRange(ops, n.Op, ranges[a], ranges[b]); ok {
			if result {
				return codetree.NewLeafLiteral(ops.One()), true
			}
			return codetree.NewLeafLiteral(ops.Zero()), true
		}
	}
	return n, false
}

func isLeaf[T any](n *codetree.Node[T]) bool { return n.HasLiteral || n.IsVar }

func literalEq[T any, O numeric.Ops[T]](ops O, n *codetree.Node[T], v T) bool {
	return n.HasLiteral && ops.Equal(n.Literal, v)
}

// foldConstant collapses an op whose children are all literals into a
// single literal leaf, evaluated with the same Ops table Eval would use.
func foldConstant[T any, O numeric.Ops[T]](ops O, n *codetree.Node[T]) (*codetree.Node[T], bool) {
	if isLeaf(n) || len(n.Children) == 0 {
		return n, false
	}
	for _, p := range n.Children {
		if !p.Child.HasLiteral {
			return n, false
		}
	}
	vals := make([]T, len(n.Children))
	for i, p := range n.Children {
		vals[i] = p.Child.Literal
	}

	switch n.Op {
	case bytecode.OpAdd:
		return codetree.NewLeafLiteral(ops.Add(vals[0], vals[1])), true
	case bytecode.OpSub:
		return codetree.NewLeafLiteral(ops.Sub(vals[0], vals[1])), true
	case bytecode.OpMul:
		return codetree.NewLeafLiteral(ops.Mul(vals[0], vals[1])), true
	case bytecode.OpDiv:
		if ops.Equal(vals[1], ops.Zero()) {
			return n, false
		}
		return codetree.NewLeafLiteral(ops.Div(vals[0], vals[1])), true
	case bytecode.OpMod:
		if ops.Equal(vals[1], ops.Zero()) {
			return n, false
		}
		return codetree.NewLeafLiteral(ops.Mod(vals[0], vals[1])), true
	case bytecode.OpNeg:
		return codetree.NewLeafLiteral(ops.Neg(vals[0])), true
	case bytecode.OpPow:
		return codetree.NewLeafLiteral(ops.Pow(vals[0], vals[1])), true
	case bytecode.OpAbs:
		return codetree.NewLeafLiteral(ops.Abs(vals[0])), true
	case bytecode.OpSqrt:
		if !ops.IsComplex() && ops.Less(vals[0], ops.Zero()) {
			return n, false
		}
		return codetree.NewLeafLiteral(ops.Sqrt(vals[0])), true
	case bytecode.OpSin:
		return codetree.NewLeafLiteral(ops.Sin(vals[0])), true
	case bytecode.OpCos:
		return codetree.NewLeafLiteral(ops.Cos(vals[0])), true
	case bytecode.OpExp:
		return codetree.NewLeafLiteral(ops.Exp(vals[0])), true
	case bytecode.OpLog:
		if !ops.IsComplex() && !ops.Less(ops.Zero(), vals[0]) {
			return n, false
		}
		return codetree.NewLeafLiteral(ops.Log(vals[0])), true
	case bytecode.OpMin:
		return codetree.NewLeafLiteral(ops.Min(vals[0], vals[1])), true
	case bytecode.OpMax:
		return codetree.NewLeafLiteral(ops.Max(vals[0], vals[1])), true
	}
	return n, false
}

// asSquareOf reports whether n computes base^2 for some base matching
// wantOp at its root, returning that base's own operand. It recognizes both
// the as-parsed cPow(base, 2) form and the already-synthesized cSqr(base)
// form, since bottom-up rewriting may lower the former before a parent node
// like cAdd gets a chance to match the Pythagorean identity.
func asSquareOf[T any, O numeric.Ops[T]](ops O, n *codetree.Node[T], wantOp bytecode.Op) (*codetree.Node[T], bool) {
	if n.Op == bytecode.OpSqr && len(n.Children) == 1 {
		base := n.Children[0].Child
		if base.Op != wantOp {
			return nil, false
		}
		return base.Children[0].Child, true
	}
	if n.Op == bytecode.OpPow && len(n.Children) == 2 {
		base, exp := n.Children[0].Child, n.Children[1].Child
		if base.Op != wantOp || !exp.HasLiteral {
			return nil, false
		}
		e, ok := ops.ToLong(exp.Literal)
		if !ok || e != 2 {
			return nil, false
		}
		return base.Children[0].Child, true
	}
	return nil, false
}

// applyIdentities covers the handful of algebraic simplifications that
// don't require every operand to already be a literal: additive/
// multiplicative identity elements, double negation, pow by 0 or 1, and the
// Pythagorean identity sin(a)^2+cos(a)^2 -> 1.
func applyIdentities[T any, O numeric.Ops[T]](ops O, n *codetree.Node[T]) (*codetree.Node[T], bool) {
	eq := func(x, y T) bool { return ops.Equal(x, y) }

	switch n.Op {
	case bytecode.OpAdd:
		a, b := n.Children[0].Child, n.Children[1].Child
		if literalEq(ops, b, ops.Zero()) {
			return a, true
		}
		if literalEq(ops, a, ops.Zero()) {
			return b, true
		}
		if sinArg, ok := asSquareOf(ops, a, bytecode.OpSin); ok {
			if cosArg, ok := asSquareOf(ops, b, bytecode.OpCos); ok && codetree.Equal(sinArg, cosArg, eq) {
				return codetree.NewLeafLiteral(ops.One()), true
			}
		}
		if cosArg, ok := asSquareOf(ops, a, bytecode.OpCos); ok {
			if sinArg, ok := asSquareOf(ops, b, bytecode.OpSin); ok && codetree.Equal(sinArg, cosArg, eq) {
				return codetree.NewLeafLiteral(ops.One()), true
			}
		}

	case bytecode.OpMul:
		a, b := n.Children[0].Child, n.Children[1].Child
		if literalEq(ops, b, ops.One()) {
			return a, true
		}
		if literalEq(ops, a, ops.One()) {
			return b, true
		}
		if literalEq(ops, a, ops.Zero()) || literalEq(ops, b, ops.Zero()) {
			return codetree.NewLeafLiteral(ops.Zero()), true
		}

	case bytecode.OpSub:
		b := n.Children[1].Child
		if literalEq(ops, b, ops.Zero()) {
			return n.Children[0].Child, true
		}

	case bytecode.OpPow:
		exp := n.Children[1].Child
		if literalEq(ops, exp, ops.One()) {
			return n.Children[0].Child, true
		}
		if literalEq(ops, exp, ops.Zero()) {
			return codetree.NewLeafLiteral(ops.One()), true
		}

	case bytecode.OpNeg:
		if child := n.Children[0].Child; child.Op == bytecode.OpNeg {
			return child.Children[0].Child, true
		}
	}
	return n, false
}

// synthesizePower lowers base^n, for a literal integer exponent in
// [2, powsynth.MaxExponent], into a squaring chain instead of a generic
// cPow call.
func synthesizePower[T any, O numeric.Ops[T]](ops O, n *codetree.Node[T]) (*codetree.Node[T], bool) {
	if n.Op != bytecode.OpPow {
		return n, false
	}
	base, exp := n.Children[0].Child, n.Children[1].Child
	if !exp.HasLiteral {
		return n, false
	}
	e, ok := ops.ToLong(exp.Literal)
	if !ok || e < 2 || e > powsynth.MaxExponent {
		return n, false
	}
	return powsynth.Synthesize(base, e), true
}
