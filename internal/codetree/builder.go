package codetree

import "fpgo/internal/bytecode"

// fixedArity gives the operand count for core ops that carry no Flags entry
// (named functions consult bytecode.FunctionFlags instead).
var fixedArity = map[bytecode.Op]int{
	bytecode.OpNeg: 1, bytecode.OpNot: 1, bytecode.OpNotNot: 1,
	bytecode.OpDeg: 1, bytecode.OpRad: 1,
	bytecode.OpAdd: 2, bytecode.OpSub: 2, bytecode.OpMul: 2, bytecode.OpDiv: 2, bytecode.OpMod: 2,
	bytecode.OpEq: 2, bytecode.OpNeq: 2, bytecode.OpLt: 2, bytecode.OpLe: 2, bytecode.OpGt: 2, bytecode.OpGe: 2,
	bytecode.OpAnd: 2, bytecode.OpOr: 2,
}

func arityOf(op bytecode.Op) int {
	if a, ok := fixedArity[op]; ok {
		return a
	}
	if f, ok := bytecode.FunctionFlags[op]; ok {
		return f.Arity
	}
	return 0
}

// Build reconstructs the expression tree that produced prog. It mirrors the
// evaluator's instruction walk but pushes nodes instead of values, and —
// unlike the evaluator, which skips the untaken arm of a branch — visits
// both arms so the tree captures the whole program. Build only ever runs on
// bytecode straight out of the parser, so it never needs to handle the
// optimizer-only ops (those are introduced later, by the rewrite package and
// the serializer, and never read back in).
func Build[T any](prog *bytecode.Program[T]) *Node[T] {
	ins := prog.Instructions
	ip := 0
	litIdx := 0
	var stack []*Node[T]

	push := func(n *Node[T]) { stack = append(stack, n) }
	pop := func() *Node[T] {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return n
	}

	var step func()
	step = func() {
		op := bytecode.Op(ins[ip])
		ip++

		if idx, ok := bytecode.IsVar(op); ok {
			push(NewLeafVar[T](idx))
			return
		}

		switch op {
		case bytecode.OpImmed:
			push(NewLeafLiteral(prog.Literals[litIdx]))
			litIdx++

		case bytecode.OpIf, bytecode.OpAbsIf:
			// ins[ip] is the OpIf's patched branch target: the start of the
			// else-arm, past the OpJump instruction (1 opcode + 2 operand
			// words) that closes the then-arm. So the then-arm itself ends 3
			// words earlier, at the OpJump opcode.
			elseStart := int(ins[ip])
			ip += 2
			cond := pop()

			jumpIP := elseStart - 3
			for ip < jumpIP {
				step()
			}
			thenNode := pop()

			// ip == jumpIP: the OpJump opcode, whose own operand is its
			// patched target, the end of the else-arm.
			elseEnd := int(ins[jumpIP+1])
			ip = jumpIP + 3 // OpJump opcode plus its 2 operand words

			for ip < elseEnd {
				step()
			}
			elseNode := pop()
			push(NewOp(op, cond, thenNode, elseNode))

		case bytecode.OpFCall, bytecode.OpPCall:
			funcno := int(ins[ip])
			arity := int(ins[ip+1])
			ip += 2
			args := make([]*Node[T], arity)
			for i := arity - 1; i >= 0; i-- {
				args[i] = pop()
			}
			n := NewOp(op, args...)
			n.Funcno = funcno
			push(n)

		default:
			arity := arityOf(op)
			args := make([]*Node[T], arity)
			for i := arity - 1; i >= 0; i-- {
				args[i] = pop()
			}
			push(NewOp(op, args...))
		}
	}

	for ip < len(ins) {
		step()
	}
	if len(stack) == 0 {
		var zero T
		return NewLeafLiteral(zero)
	}
	return stack[len(stack)-1]
}
