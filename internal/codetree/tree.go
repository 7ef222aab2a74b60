// Package codetree is the optimizer's working form: the expression tree
// recovered from a freshly-parsed Program, mutated in place by the rewrite
// package, then re-linearized by the compiler package's serializer.
package codetree

import "fpgo/internal/bytecode"

// Param is one signed child of a Node. Sign is only meaningful for the
// handful of ops the rewrite rules treat as commutative/associative
// (cAdd/cMul/cAnd/cOr); Build never sets it, since the parser emits plain
// binary ops rather than an n-ary signed-sum form.
type Param[T any] struct {
	Child *Node[T]
	Sign  bool
}

// Node is one expression-tree node: a leaf (literal or variable reference)
// or an interior op with its operands as signed children. Hash and Depth
// are kept current by Recompute, called after any structural edit.
type Node[T any] struct {
	Op         bytecode.Op
	Literal    T
	HasLiteral bool
	IsVar      bool
	VarIdx     uint32

	// Funcno/Arity double as the payload slot for ops that need one: the
	// callee index for cFCall/cPCall, the literal-pool index for cLog2By,
	// the absolute stack slot for cFetch.
	Funcno int
	Arity  int

	Children []Param[T]

	Hash  uint64
	Depth int
}

func NewLeafLiteral[T any](v T) *Node[T] {
	n := &Node[T]{Op: bytecode.OpImmed, Literal: v, HasLiteral: true}
	n.Recompute()
	return n
}

func NewLeafVar[T any](idx uint32) *Node[T] {
	n := &Node[T]{Op: bytecode.VarOp(idx), IsVar: true, VarIdx: idx}
	n.Recompute()
	return n
}

// NewOp builds an interior node from unsigned children, the common case for
// every op the parser itself emits.
func NewOp[T any](op bytecode.Op, children ...*Node[T]) *Node[T] {
	params := make([]Param[T], len(children))
	for i, c := range children {
		params[i] = Param[T]{Child: c}
	}
	n := &Node[T]{Op: op, Children: params, Arity: len(children)}
	n.Recompute()
	return n
}

// Recompute refreshes Hash and Depth from the current Children; callers
// must invoke it after mutating Children in place.
func (n *Node[T]) Recompute() {
	d := 0
	h := uint64(1469598103934665603) ^ uint64(n.Op)*1099511628211
	if n.HasLiteral {
		h ^= 0xcbf29ce484222325
	}
	if n.IsVar {
		h = h*1099511628211 ^ uint64(n.VarIdx)
	}
	for _, p := range n.Children {
		if p.Child.Depth+1 > d {
			d = p.Child.Depth + 1
		}
		ph := p.Child.Hash
		if p.Sign {
			ph ^= 0x9e3779b97f4a7c15
		}
		h = (h ^ ph) * 1099511628211
	}
	n.Depth = d
	n.Hash = h
}

// Clone makes an independent deep copy; the optimizer clones rather than
// shares a subtree whenever the same value is needed in two places (e.g.
// the power synthesizer referencing base more than once).
func (n *Node[T]) Clone() *Node[T] {
	cp := &Node[T]{
		Op: n.Op, Literal: n.Literal, HasLiteral: n.HasLiteral,
		IsVar: n.IsVar, VarIdx: n.VarIdx,
		Funcno: n.Funcno, Arity: n.Arity,
		Hash: n.Hash, Depth: n.Depth,
	}
	if n.Children != nil {
		cp.Children = make([]Param[T], len(n.Children))
		for i, p := range n.Children {
			cp.Children[i] = Param[T]{Child: p.Child.Clone(), Sign: p.Sign}
		}
	}
	return cp
}

// Equal reports structural equality, used by identity rules (like
// sin(a)^2+cos(a)^2) that need two subtrees to match exactly. eq compares
// two literal payloads for the scalar type T.
func Equal[T any](a, b *Node[T], eq func(x, y T) bool) bool {
	if a.Hash != b.Hash {
		return false
	}
	if a.Op != b.Op || a.IsVar != b.IsVar || a.VarIdx != b.VarIdx {
		return false
	}
	if a.HasLiteral != b.HasLiteral {
		return false
	}
	if a.HasLiteral && !eq(a.Literal, b.Literal) {
		return false
	}
	if len(a.Children) != len(b.Children) {
		return false
	}
	for i := range a.Children {
		if a.Children[i].Sign != b.Children[i].Sign {
			return false
		}
		if !Equal(a.Children[i].Child, b.Children[i].Child, eq) {
			return false
		}
	}
	return true
}
