package vm

import (
	"testing"

	"fpgo/internal/bytecode"
	"fpgo/internal/errors"
	"fpgo/internal/numeric"
)

// buildAddProgram emits var0 + literal(1.5).
func buildAddProgram() *bytecode.Program[float64] {
	p := bytecode.NewProgram[float64]()
	p.Emit(bytecode.VarOp(0))
	p.AddLiteral(1.5)
	p.Emit(bytecode.OpImmed)
	p.Emit(bytecode.OpAdd)
	p.StackDepthMax = 2
	return p
}

func TestEvalSimpleAdd(t *testing.T) {
	prog := buildAddProgram()
	got, errCode := Eval[float64, numeric.Float64Ops](numeric.Float64Ops{}, prog, []float64{2}, nil)
	if errCode != errors.EvalNone {
		t.Fatalf("unexpected error code %v", errCode)
	}
	if got != 3.5 {
		t.Fatalf("got %v, want 3.5", got)
	}
}

func TestEvalDivByZeroLatches(t *testing.T) {
	p := bytecode.NewProgram[float64]()
	p.AddLiteral(1)
	p.Emit(bytecode.OpImmed)
	p.AddLiteral(0)
	p.Emit(bytecode.OpImmed)
	p.Emit(bytecode.OpDiv)
	p.StackDepthMax = 2

	got, errCode := Eval[float64, numeric.Float64Ops](numeric.Float64Ops{}, p, nil, nil)
	if got != 0 {
		t.Fatalf("got %v, want 0", got)
	}
	if errCode != errors.EvalDivByZero {
		t.Fatalf("got %v, want EvalDivByZero", errCode)
	}
}

// TestEvalBranchSkipsUntakenArm checks the untaken arm of an OpIf is never
// executed: it computes 1/0 on the then-arm, which must not latch since
// cond is false.
func TestEvalBranchSkipsUntakenArm(t *testing.T) {
	p := bytecode.NewProgram[float64]()
	// cond: literal 0 (falsy)
	p.AddLiteral(0)
	p.Emit(bytecode.OpImmed)

	p.Emit(bytecode.OpIf)
	ifIdx := p.Len()
	p.EmitOperand(0)
	p.EmitOperand(0)

	// then: 1/0
	p.AddLiteral(1)
	p.Emit(bytecode.OpImmed)
	p.AddLiteral(0)
	p.Emit(bytecode.OpImmed)
	p.Emit(bytecode.OpDiv)

	p.Emit(bytecode.OpJump)
	jumpIdx := p.Len()
	p.EmitOperand(0)
	p.EmitOperand(0)
	p.PatchOperand(ifIdx, uint32(p.Len()))
	p.PatchOperand(ifIdx+1, uint32(len(p.Literals)))

	// else: literal 7
	p.AddLiteral(7)
	p.Emit(bytecode.OpImmed)
	p.PatchOperand(jumpIdx, uint32(p.Len()))
	p.PatchOperand(jumpIdx+1, uint32(len(p.Literals)))
	p.StackDepthMax = 2

	got, errCode := Eval[float64, numeric.Float64Ops](numeric.Float64Ops{}, p, nil, nil)
	if got != 7 {
		t.Fatalf("got %v, want 7", got)
	}
	if errCode != errors.EvalNone {
		t.Fatalf("untaken then-arm latched %v, want EvalNone", errCode)
	}
}
