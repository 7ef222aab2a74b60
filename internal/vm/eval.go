// Package vm runs a compiled Program against a variable vector, producing a
// scalar result plus a latched error code.
package vm

import (
	"fpgo/internal/bytecode"
	"fpgo/internal/errors"
	"fpgo/internal/numeric"
)

// Eval interprets prog against vars, dispatching named callbacks through
// funcs (indexed by the funcno cFCall/cPCall instructions carry). It never
// panics on a runtime domain error (divide by zero, log of a non-positive
// real, sqrt of a negative real, an out-of-domain inverse trig call,
// asin/acos outside [-1,1]): the offending sub-result is replaced with
// Zero() and the first such condition is latched into the returned
// errors.EvalError, mirroring the stack-based dispatch loop a simple
// register/stack machine runs, just generic over T instead of a boxed
// interface{} value.
func Eval[T any, O numeric.Ops[T]](ops O, prog *bytecode.Program[T], vars []T, funcs []Invocable[T]) (T, errors.EvalError) {
	stack := make([]T, 0, prog.StackDepthMax+4)
	latched := errors.EvalNone

	push := func(v T) { stack = append(stack, v) }
	pop := func() T {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return v
	}
	peek := func() T { return stack[len(stack)-1] }
	latch := func(kind errors.EvalError) {
		if latched == errors.EvalNone {
			latched = kind
		}
	}

	ins := prog.Instructions
	litIdx := 0
	ip := 0
	for ip < len(ins) {
		op := bytecode.Op(ins[ip])
		ip++

		if idx, ok := bytecode.IsVar(op); ok {
			push(vars[idx])
			continue
		}

		switch op {
		case bytecode.OpImmed:
			push(prog.Literals[litIdx])
			litIdx++

		case bytecode.OpJump:
			targetIP := ins[ip]
			targetLit := ins[ip+1]
			ip = int(targetIP)
			litIdx = int(targetLit)

		case bytecode.OpIf, bytecode.OpAbsIf:
			targetIP := ins[ip]
			targetLit := ins[ip+1]
			ip += 2
			cond := pop()
			if !ops.Truthy(cond) {
				ip = int(targetIP)
				litIdx = int(targetLit)
			}

		case bytecode.OpNeg:
			push(ops.Neg(pop()))
		case bytecode.OpAdd:
			b, a := pop(), pop()
			push(ops.Add(a, b))
		case bytecode.OpSub:
			b, a := pop(), pop()
			push(ops.Sub(a, b))
		case bytecode.OpMul:
			b, a := pop(), pop()
			push(ops.Mul(a, b))
		case bytecode.OpDiv:
			b, a := pop(), pop()
			if ops.Equal(b, ops.Zero()) {
				latch(errors.EvalDivByZero)
				push(ops.Zero())
			} else {
				push(ops.Div(a, b))
			}
		case bytecode.OpMod:
			b, a := pop(), pop()
			if ops.Equal(b, ops.Zero()) {
				latch(errors.EvalDivByZero)
				push(ops.Zero())
			} else {
				push(ops.Mod(a, b))
			}

		case bytecode.OpEq:
			b, a := pop(), pop()
			push(boolT(ops, ops.Equal(a, b)))
		case bytecode.OpNeq:
			b, a := pop(), pop()
			push(boolT(ops, !ops.Equal(a, b)))
		case bytecode.OpLt:
			b, a := pop(), pop()
			push(boolT(ops, ops.Less(a, b)))
		case bytecode.OpLe:
			b, a := pop(), pop()
			push(boolT(ops, !ops.Less(b, a)))
		case bytecode.OpGt:
			b, a := pop(), pop()
			push(boolT(ops, ops.Less(b, a)))
		case bytecode.OpGe:
			b, a := pop(), pop()
			push(boolT(ops, !ops.Less(a, b)))

		case bytecode.OpNot, bytecode.OpAbsNot:
			push(boolT(ops, !ops.Truthy(pop())))
		case bytecode.OpNotNot, bytecode.OpAbsNotNot:
			push(boolT(ops, ops.Truthy(pop())))
		case bytecode.OpAnd, bytecode.OpAbsAnd:
			b, a := pop(), pop()
			push(boolT(ops, ops.Truthy(a) && ops.Truthy(b)))
		case bytecode.OpOr, bytecode.OpAbsOr:
			b, a := pop(), pop()
			push(boolT(ops, ops.Truthy(a) || ops.Truthy(b)))

		case bytecode.OpDeg:
			push(ops.Deg(pop()))
		case bytecode.OpRad:
			push(ops.Rad(pop()))

		case bytecode.OpFCall, bytecode.OpPCall:
			funcno := int(ins[ip])
			arity := int(ins[ip+1])
			ip += 2
			args := popN(&stack, arity)
			result, err := funcs[funcno].Invoke(args)
			if err != nil {
				latch(errors.EvalMaxRecursion)
			}
			push(result)

		case bytecode.OpAbs:
			push(ops.Abs(pop()))
		case bytecode.OpSin:
			push(ops.Sin(pop()))
		case bytecode.OpCos:
			push(ops.Cos(pop()))
		case bytecode.OpTan:
			push(ops.Tan(pop()))
		case bytecode.OpAsin:
			x := pop()
			if !ops.IsComplex() && (ops.Less(x, ops.Neg(ops.One())) || ops.Less(ops.One(), x)) {
				latch(errors.EvalTrigError)
				push(ops.Zero())
			} else {
				push(ops.Asin(x))
			}
		case bytecode.OpAcos:
			x := pop()
			if !ops.IsComplex() && (ops.Less(x, ops.Neg(ops.One())) || ops.Less(ops.One(), x)) {
				latch(errors.EvalTrigError)
				push(ops.Zero())
			} else {
				push(ops.Acos(x))
			}
		case bytecode.OpAtan:
			push(ops.Atan(pop()))
		case bytecode.OpSinh:
			push(ops.Sinh(pop()))
		case bytecode.OpCosh:
			push(ops.Cosh(pop()))
		case bytecode.OpTanh:
			push(ops.Tanh(pop()))
		case bytecode.OpLog:
			x := pop()
			if !ops.IsComplex() && !ops.Less(ops.Zero(), x) {
				latch(errors.EvalLogError)
				push(ops.Zero())
			} else {
				push(ops.Log(x))
			}
		case bytecode.OpLog2:
			x := pop()
			if !ops.IsComplex() && !ops.Less(ops.Zero(), x) {
				latch(errors.EvalLogError)
				push(ops.Zero())
			} else {
				push(ops.Log2(x))
			}
		case bytecode.OpLog10:
			x := pop()
			if !ops.IsComplex() && !ops.Less(ops.Zero(), x) {
				latch(errors.EvalLogError)
				push(ops.Zero())
			} else {
				push(ops.Log10(x))
			}
		case bytecode.OpExp:
			push(ops.Exp(pop()))
		case bytecode.OpExp2:
			push(ops.Exp2(pop()))
		case bytecode.OpSqrt:
			x := pop()
			if !ops.IsComplex() && ops.Less(x, ops.Zero()) {
				latch(errors.EvalSqrtError)
				push(ops.Zero())
			} else {
				push(ops.Sqrt(x))
			}
		case bytecode.OpCbrt:
			push(ops.Cbrt(pop()))
		case bytecode.OpHypot:
			b, a := pop(), pop()
			push(ops.Hypot(a, b))
		case bytecode.OpPow:
			b, a := pop(), pop()
			push(ops.Pow(a, b))
		case bytecode.OpAtan2:
			b, a := pop(), pop()
			push(ops.Atan2(a, b))
		case bytecode.OpMin:
			b, a := pop(), pop()
			push(ops.Min(a, b))
		case bytecode.OpMax:
			b, a := pop(), pop()
			push(ops.Max(a, b))
		case bytecode.OpInt:
			push(ops.IntRound(pop()))
		case bytecode.OpFloor:
			push(ops.Floor(pop()))
		case bytecode.OpCeil:
			push(ops.Ceil(pop()))
		case bytecode.OpTrunc:
			push(ops.Trunc(pop()))
		case bytecode.OpPolar:
			theta, r := pop(), pop()
			push(ops.Polar(r, theta))
		case bytecode.OpArgFn:
			push(ops.Arg(pop()))
		case bytecode.OpConj:
			push(ops.Conj(pop()))
		case bytecode.OpRealFn:
			push(ops.Real(pop()))
		case bytecode.OpImagFn:
			push(ops.Imag(pop()))

		case bytecode.OpNop:
			// no-op; neither the parser nor the serializer emits it.

		case bytecode.OpDup:
			push(peek())
		case bytecode.OpFetch:
			slot := int(ins[ip])
			ip++
			push(stack[slot])
		case bytecode.OpInv:
			push(ops.Inv(pop()))
		case bytecode.OpSqr:
			x := pop()
			push(ops.Mul(x, x))
		case bytecode.OpRDiv:
			b, a := pop(), pop()
			if ops.Equal(a, ops.Zero()) {
				latch(errors.EvalDivByZero)
				push(ops.Zero())
			} else {
				push(ops.Div(b, a))
			}
		case bytecode.OpRSub:
			b, a := pop(), pop()
			push(ops.Sub(b, a))
		case bytecode.OpRSqrt:
			x := pop()
			if !ops.IsComplex() && ops.Less(x, ops.Zero()) {
				latch(errors.EvalSqrtError)
				push(ops.Zero())
			} else {
				push(ops.Inv(ops.Sqrt(x)))
			}
		case bytecode.OpFma:
			c, b, a := pop(), pop(), pop()
			push(ops.Add(ops.Mul(a, b), c))
		case bytecode.OpFms:
			c, b, a := pop(), pop(), pop()
			push(ops.Sub(ops.Mul(a, b), c))
		case bytecode.OpFmma:
			d, c, b, a := pop(), pop(), pop(), pop()
			push(ops.Add(ops.Mul(a, b), ops.Mul(c, d)))
		case bytecode.OpFmms:
			d, c, b, a := pop(), pop(), pop(), pop()
			push(ops.Sub(ops.Mul(a, b), ops.Mul(c, d)))
		case bytecode.OpSinCos:
			x := pop()
			push(ops.Sin(x))
			push(ops.Cos(x))
		case bytecode.OpSinhCosh:
			x := pop()
			push(ops.Sinh(x))
			push(ops.Cosh(x))
		case bytecode.OpPopNMov:
			n := int(ins[ip])
			ip++
			top := pop()
			stack = stack[:len(stack)-n]
			push(top)
		case bytecode.OpLog2By:
			litOperand := int(ins[ip])
			ip++
			x := pop()
			factor := prog.Literals[litOperand]
			if !ops.IsComplex() && !ops.Less(ops.Zero(), x) {
				latch(errors.EvalLogError)
				push(ops.Zero())
			} else {
				push(ops.Mul(ops.Log2(x), factor))
			}

		default:
			// Unreachable for a well-formed program (OpIf3 never survives
			// past the parser, which always folds it into OpIf/OpJump).
			push(ops.Zero())
		}
	}

	if len(stack) == 0 {
		return ops.Zero(), latched
	}
	return stack[len(stack)-1], latched
}

// Invocable is one entry of the funcno-indexed callee table cFCall/cPCall
// dispatch through: parser.UserFunction and parser.SubParser both implement
// it, so Eval never needs to import the parser package to call back into
// user-registered functions or nested sub-parsers.
type Invocable[T any] interface {
	Invoke(args []T) (T, error)
}

func boolT[T any, O numeric.Ops[T]](ops O, v bool) T {
	if v {
		return ops.One()
	}
	return ops.Zero()
}

func popN[T any](stack *[]T, n int) []T {
	s := *stack
	args := append([]T(nil), s[len(s)-n:]...)
	*stack = s[:len(s)-n]
	return args
}
