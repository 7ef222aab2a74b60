package codetree_test

import (
	"testing"

	"fpgo/internal/bytecode"
	"fpgo/internal/codetree"
	"fpgo/internal/compiler"
	"fpgo/internal/numeric"
	"fpgo/internal/vm"
)

// TestBuildSerializeRoundTrip checks that building a tree from a Program and
// re-serializing it without any rewrite produces a Program that evaluates
// identically to the original.
func TestBuildSerializeRoundTrip(t *testing.T) {
	orig := bytecode.NewProgram[float64]()
	orig.Emit(bytecode.VarOp(0))
	orig.AddLiteral(3)
	orig.Emit(bytecode.OpImmed)
	orig.Emit(bytecode.OpMul)
	orig.Emit(bytecode.OpSin)
	orig.StackDepthMax = 2

	tree := codetree.Build[float64](orig)
	reserialized := compiler.NewSerializer[float64]().Serialize(tree)

	ops := numeric.Float64Ops{}
	want, _ := vm.Eval[float64, numeric.Float64Ops](ops, orig, []float64{1.25}, nil)
	got, _ := vm.Eval[float64, numeric.Float64Ops](ops, reserialized, []float64{1.25}, nil)
	if got != want {
		t.Fatalf("round-trip mismatch: got %v, want %v", got, want)
	}
}

// TestBuildSerializeRoundTripIf hand-builds a program containing a real
// OpIf/OpJump branch (then-arm "x*2", else-arm "x+1"), the same shape the
// serializer emits for a parsed if(...) call, and checks Build followed by
// re-serialization reproduces both arms' behavior — a prior version of
// Build miscalculated the then-arm's end and either corrupted the tree or
// panicked on exactly this shape.
func TestBuildSerializeRoundTripIf(t *testing.T) {
	orig := bytecode.NewProgram[float64]()
	orig.Emit(bytecode.VarOp(0)) // cond: x

	orig.Emit(bytecode.OpIf)
	ifIdx := orig.Len()
	orig.EmitOperand(0)
	orig.EmitOperand(0)

	// then-arm: x * 2
	orig.Emit(bytecode.VarOp(0))
	orig.AddLiteral(2.0)
	orig.Emit(bytecode.OpImmed)
	orig.Emit(bytecode.OpMul)

	orig.Emit(bytecode.OpJump)
	jumpIdx := orig.Len()
	orig.EmitOperand(0)
	orig.EmitOperand(0)
	orig.PatchOperand(ifIdx, uint32(orig.Len()))
	orig.PatchOperand(ifIdx+1, uint32(len(orig.Literals)))

	// else-arm: x + 1
	orig.Emit(bytecode.VarOp(0))
	orig.AddLiteral(1.0)
	orig.Emit(bytecode.OpImmed)
	orig.Emit(bytecode.OpAdd)
	orig.PatchOperand(jumpIdx, uint32(orig.Len()))
	orig.PatchOperand(jumpIdx+1, uint32(len(orig.Literals)))
	orig.StackDepthMax = 3

	tree := codetree.Build[float64](orig)
	reserialized := compiler.NewSerializer[float64]().Serialize(tree)

	ops := numeric.Float64Ops{}
	for _, x := range []float64{5, 0} {
		want, _ := vm.Eval[float64, numeric.Float64Ops](ops, orig, []float64{x}, nil)
		got, _ := vm.Eval[float64, numeric.Float64Ops](ops, reserialized, []float64{x}, nil)
		if got != want {
			t.Fatalf("x=%v: round-trip mismatch: got %v, want %v", x, got, want)
		}
	}
}
