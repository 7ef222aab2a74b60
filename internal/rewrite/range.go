package rewrite

import (
	"fpgo/internal/bytecode"
	"fpgo/internal/codetree"
	"fpgo/internal/numeric"
)

// valueRange is a conservative (min?, max?) bound on a node's runtime value,
// each bound optional since most subtrees don't have a known one. For
// complex T, interval arithmetic doesn't apply (there's no total order on
// the plane), so every non-literal node gets an unknown range; an exact
// literal is still exact regardless of T.
type valueRange[T any] struct {
	Min, Max       T
	HasMin, HasMax bool
}

func unknownRange[T any]() valueRange[T] { return valueRange[T]{} }

func exactRange[T any](v T) valueRange[T] {
	return valueRange[T]{Min: v, Max: v, HasMin: true, HasMax: true}
}

// analyzeRanges computes a range for every node reachable from root,
// compositionally and bottom-up: literals are exact, variables are unknown,
// and each op combines its operands' ranges with interval arithmetic or a
// known conservative bound (sin/cos into [-1,1], exp/sqrt into [0,+Inf)).
// The result is sound but not tight — any bound it reports genuinely holds,
// but it may report "unknown" where a tighter analysis could do better.
func analyzeRanges[T any, O numeric.Ops[T]](ops O, root *codetree.Node[T]) map[*codetree.Node[T]]valueRange[T] {
	out := make(map[*codetree.Node[T]]valueRange[T])
	var walk func(n *codetree.Node[T]) valueRange[T]
	walk = func(n *codetree.Node[T]) valueRange[T] {
		if r, ok := out[n]; ok {
			return r
		}
		var r valueRange[T]
		switch {
		case n.HasLiteral:
			r = exactRange(n.Literal)
		case n.IsVar:
			r = unknownRange[T]()
		case ops.IsComplex():
			r = unknownRange[T]()
		default:
			children := make([]valueRange[T], len(n.Children))
			for i, p := range n.Children {
				children[i] = walk(p.Child)
			}
			r = combineRange(ops, n.Op, children)
		}
		out[n] = r
		return r
	}
	walk(root)
	return out
}

// combineRange propagates ranges through op per the rules each operation's
// mathematics admits; anything not covered here falls through to unknown,
// which is always a sound (if unhelpful) answer.
func combineRange[T any, O numeric.Ops[T]](ops O, op bytecode.Op, c []valueRange[T]) valueRange[T] {
	switch op {
	case bytecode.OpNeg:
		a := c[0]
		return valueRange[T]{
			Min: ops.Neg(a.Max), HasMin: a.HasMax,
			Max: ops.Neg(a.Min), HasMax: a.HasMin,
		}

	case bytecode.OpAbs:
		a := c[0]
		r := valueRange[T]{Min: ops.Zero(), HasMin: true}
		if a.HasMin && a.HasMax {
			hi := ops.Abs(a.Min)
			if ops.Less(hi, ops.Abs(a.Max)) {
				hi = ops.Abs(a.Max)
			}
			r.Max, r.HasMax = hi, true
		}
		return r

	case bytecode.OpSqr:
		a := c[0]
		r := valueRange[T]{Min: ops.Zero(), HasMin: true}
		if a.HasMin && a.HasMax {
			lo, hi := ops.Mul(a.Min, a.Min), ops.Mul(a.Max, a.Max)
			if ops.Less(hi, lo) {
				lo, hi = hi, lo
			}
			r.Max, r.HasMax = hi, true
		}
		return r

	case bytecode.OpAdd:
		a, b := c[0], c[1]
		return valueRange[T]{
			Min: ops.Add(a.Min, b.Min), HasMin: a.HasMin && b.HasMin,
			Max: ops.Add(a.Max, b.Max), HasMax: a.HasMax && b.HasMax,
		}

	case bytecode.OpSub:
		a, b := c[0], c[1]
		return valueRange[T]{
			Min: ops.Sub(a.Min, b.Max), HasMin: a.HasMin && b.HasMax,
			Max: ops.Sub(a.Max, b.Min), HasMax: a.HasMax && b.HasMin,
		}

	case bytecode.OpMul:
		a, b := c[0], c[1]
		if !a.HasMin || !a.HasMax || !b.HasMin || !b.HasMax {
			return unknownRange[T]()
		}
		products := [4]T{
			ops.Mul(a.Min, b.Min), ops.Mul(a.Min, b.Max),
			ops.Mul(a.Max, b.Min), ops.Mul(a.Max, b.Max),
		}
		lo, hi := products[0], products[0]
		for _, p := range products[1:] {
			if ops.Less(p, lo) {
				lo = p
			}
			if ops.Less(hi, p) {
				hi = p
			}
		}
		return valueRange[T]{Min: lo, Max: hi, HasMin: true, HasMax: true}

	case bytecode.OpMin:
		a, b := c[0], c[1]
		r := unknownRange[T]()
		if a.HasMin && b.HasMin {
			r.Min, r.HasMin = ops.Min(a.Min, b.Min), true
		}
		if a.HasMax && b.HasMax {
			r.Max, r.HasMax = ops.Min(a.Max, b.Max), true
		}
		return r

	case bytecode.OpMax:
		a, b := c[0], c[1]
		r := unknownRange[T]()
		if a.HasMin && b.HasMin {
			r.Min, r.HasMin = ops.Max(a.Min, b.Min), true
		}
		if a.HasMax && b.HasMax {
			r.Max, r.HasMax = ops.Max(a.Max, b.Max), true
		}
		return r

	case bytecode.OpSin, bytecode.OpCos:
		return valueRange[T]{Min: ops.Neg(ops.One()), Max: ops.One(), HasMin: true, HasMax: true}

	case bytecode.OpExp, bytecode.OpSqrt:
		return valueRange[T]{Min: ops.Zero(), HasMin: true}

	default:
		return unknownRange[T]()
	}
}

// isDefinitelyNonNegative reports whether r proves its value can never be
// negative — the guard rangeGuardedRewrite consults before lowering cAnd/cOr
// to the sign-agnostic cAbsAnd/cAbsOr forms.
func isDefinitelyNonNegative[T any, O numeric.Ops[T]](ops O, r valueRange[T]) bool {
	return r.HasMin && !ops.Less(r.Min, ops.Zero())
}

// foldComparisonByRange decides op(a,b)'s truth value from ra/rb alone, when
// the two ranges are far enough apart that no pair of runtime values drawn
// from them could disagree. ok is false when the ranges overlap or either
// bound needed is unknown.
func foldComparisonByRange[T any, O numeric.Ops[T]](ops O, op bytecode.Op, ra, rb valueRange[T]) (result, ok bool) {
	lessEq := func(x, y T) bool { return ops.Less(x, y) || ops.Equal(x, y) }
	switch op {
	case bytecode.OpLt:
		if ra.HasMax && rb.HasMin && ops.Less(ra.Max, rb.Min) {
			return true, true
		}
		if ra.HasMin && rb.HasMax && lessEq(rb.Max, ra.Min) {
			return false, true
		}
	case bytecode.OpLe:
		if ra.HasMax && rb.HasMin && lessEq(ra.Max, rb.Min) {
			return true, true
		}
		if ra.HasMin && rb.HasMax && ops.Less(rb.Max, ra.Min) {
			return false, true
		}
	case bytecode.OpGt:
		if rb.HasMax && ra.HasMin && ops.Less(rb.Max, ra.Min) {
			return true, true
		}
		if rb.HasMin && ra.HasMax && lessEq(ra.Max, rb.Min) {
			return false, true
		}
	case bytecode.OpGe:
		if rb.HasMax && ra.HasMin && lessEq(rb.Max, ra.Min) {
			return true, true
		}
		if rb.HasMin && ra.HasMax && ops.Less(ra.Max, rb.Min) {
			return false, true
		}
	}
	return false, false
}
