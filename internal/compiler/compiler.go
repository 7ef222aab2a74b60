// Package compiler serializes an optimized codetree.Node back into a linear
// bytecode.Program, the inverse of codetree.Build.
package compiler

import (
	"fpgo/internal/bytecode"
	"fpgo/internal/codetree"
)

// Serializer walks a codetree.Node and emits the equivalent Program,
// tracking live stack depth the same way the parser does during the
// original emission pass.
type Serializer[T any] struct {
	prog     *bytecode.Program[T]
	curStack int
	maxStack int
}

func NewSerializer[T any]() *Serializer[T] {
	return &Serializer[T]{prog: bytecode.NewProgram[T]()}
}

func (s *Serializer[T]) push() {
	s.curStack++
	if s.curStack > s.maxStack {
		s.maxStack = s.curStack
	}
}
func (s *Serializer[T]) pop(n int) { s.curStack -= n }

// Serialize emits root and returns the finished Program.
func (s *Serializer[T]) Serialize(root *codetree.Node[T]) *bytecode.Program[T] {
	s.emit(root)
	s.prog.StackDepthMax = s.maxStack
	return s.prog
}

func (s *Serializer[T]) emit(n *codetree.Node[T]) {
	switch {
	case n.IsVar:
		s.prog.Emit(n.Op)
		s.push()
		return
	case n.HasLiteral:
		s.prog.AddLiteral(n.Literal)
		s.prog.Emit(bytecode.OpImmed)
		s.push()
		return
	}

	switch n.Op {
	case bytecode.OpIf, bytecode.OpAbsIf:
		s.emit(n.Children[0].Child)
		s.prog.Emit(n.Op)
		ifIdx := s.prog.Len()
		s.prog.EmitOperand(0)
		s.prog.EmitOperand(0)
		s.pop(1)

		s.emit(n.Children[1].Child)
		s.prog.Emit(bytecode.OpJump)
		jumpIdx := s.prog.Len()
		s.prog.EmitOperand(0)
		s.prog.EmitOperand(0)
		s.prog.PatchOperand(ifIdx, uint32(s.prog.Len()))
		s.prog.PatchOperand(ifIdx+1, uint32(len(s.prog.Literals)))
		s.pop(1)

		s.emit(n.Children[2].Child)
		s.prog.PatchOperand(jumpIdx, uint32(s.prog.Len()))
		s.prog.PatchOperand(jumpIdx+1, uint32(len(s.prog.Literals)))

	case bytecode.OpFCall, bytecode.OpPCall:
		for _, p := range n.Children {
			s.emit(p.Child)
		}
		s.prog.Emit(n.Op)
		s.prog.EmitOperand(uint32(n.Funcno))
		s.prog.EmitOperand(uint32(len(n.Children)))
		s.pop(len(n.Children) - 1)

	case bytecode.OpFetch:
		s.prog.Emit(n.Op)
		s.prog.EmitOperand(uint32(n.Arity))
		s.push()

	case bytecode.OpLog2By:
		s.emit(n.Children[0].Child)
		s.prog.Emit(n.Op)
		s.prog.EmitOperand(uint32(n.Funcno))

	case bytecode.OpPopNMov:
		for _, p := range n.Children {
			s.emit(p.Child)
		}
		s.prog.Emit(n.Op)
		s.prog.EmitOperand(uint32(n.Arity))
		s.pop(n.Arity)

	case bytecode.OpSinCos, bytecode.OpSinhCosh:
		// one operand consumed, two results pushed (sin/sinh first, then
		// cos/cosh on top) — not produced by any current rewrite rule, kept
		// for format completeness.
		s.emit(n.Children[0].Child)
		s.prog.Emit(n.Op)
		s.push()

	default:
		for _, p := range n.Children {
			s.emit(p.Child)
		}
		s.prog.Emit(n.Op)
		switch len(n.Children) {
		case 0:
			s.push()
		default:
			s.pop(len(n.Children) - 1)
		}
	}
}
