package parser

import (
	"math"
	"math/cmplx"
	"strings"
	"testing"

	"fpgo/internal/bytecode"
	"fpgo/internal/errors"
	"fpgo/internal/numeric"
)

func mustParse(t *testing.T, p *Parser[float64, numeric.Float64Ops], expr, vars string) {
	t.Helper()
	if err := p.Parse(expr, vars, false); err != nil {
		t.Fatalf("Parse(%q): %v", expr, err)
	}
}

func TestEvalPythagoreanIdentity(t *testing.T) {
	p := New[float64, numeric.Float64Ops]()
	mustParse(t, p, "sin(x)^2 + cos(x)^2 + tan(y)^2", "x,y")

	got := p.Eval([]float64{0.25, 0.5})
	want := 1 + math.Tan(0.5)*math.Tan(0.5)
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("got %v, want %v", got, want)
	}

	p.Optimize()
	gotOpt := p.Eval([]float64{0.25, 0.5})
	if math.Abs(gotOpt-want) > 1e-12 {
		t.Fatalf("post-optimize got %v, want %v", gotOpt, want)
	}

	for _, ins := range p.Program().Instructions {
		op := bytecode.Op(ins)
		if op == bytecode.OpSin || op == bytecode.OpCos {
			t.Fatalf("optimized program still contains sin/cos: %v", p.Program().Instructions)
		}
	}
}

func TestEvalPolynomialDifference(t *testing.T) {
	p := New[float64, numeric.Float64Ops]()
	mustParse(t, p, "((3*x^4-7*x^3+2*x*x-4*x+10) - (4*y^3+2*y^2-10*y+2))*10", "x,y")
	got := p.Eval([]float64{2, 1})
	want := ((3*16.0 - 7*8 + 2*2*2 - 4*2 + 10) - (4*1.0 + 2*1 - 10*1 + 2)) * 10
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestEvalPowerSynthesis(t *testing.T) {
	p := New[float64, numeric.Float64Ops]()
	mustParse(t, p, "x^40", "x")
	p.Optimize()

	got := p.Eval([]float64{1.02})
	want := math.Pow(1.02, 40)
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("got %v, want %v", got, want)
	}

	mulFamily := 0
	for _, ins := range p.Program().Instructions {
		switch bytecode.Op(ins) {
		case bytecode.OpMul, bytecode.OpSqr, bytecode.OpDup, bytecode.OpFetch, bytecode.OpPopNMov:
			mulFamily++
		}
	}
	if mulFamily > 12 {
		t.Fatalf("power synthesis used %d multiplicative instructions, want <= 12", mulFamily)
	}
}

func TestEvalComplexExpLogIdentity(t *testing.T) {
	p := New[complex128, numeric.Complex128Ops]()
	if err := p.Parse("exp(log(x))", "x", false); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	p.Optimize()
	got := p.Eval([]complex128{3 + 4i})
	want := 3 + 4i
	if cmplx.Abs(got-want) > 1e-9 {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestEvalDivByZeroLatchesFirstError(t *testing.T) {
	p := New[float64, numeric.Float64Ops]()
	mustParse(t, p, "1/0", "")
	got := p.Eval(nil)
	if got != 0 {
		t.Fatalf("got %v, want 0", got)
	}
	if p.LastEvalError() != errors.EvalDivByZero {
		t.Fatalf("got error %v, want DivByZero", p.LastEvalError())
	}
}

// TestIfShortCircuits checks that an untaken branch's runtime error never
// latches: log(0) on the untaken then-arm must not surface as EvalLogError.
func TestIfShortCircuits(t *testing.T) {
	p := New[float64, numeric.Float64Ops]()
	mustParse(t, p, "if(x>0, log(x), 0)", "x")

	got := p.Eval([]float64{0})
	if got != 0 {
		t.Fatalf("got %v, want 0", got)
	}
	if p.LastEvalError() != errors.EvalNone {
		t.Fatalf("untaken branch latched %v, want EvalNone", p.LastEvalError())
	}

	got = p.Eval([]float64{math.E})
	if math.Abs(got-1) > 1e-12 {
		t.Fatalf("got %v, want 1", got)
	}

	p.Optimize()
	got = p.Eval([]float64{0})
	if got != 0 {
		t.Fatalf("post-optimize got %v, want 0", got)
	}
	if p.LastEvalError() != errors.EvalNone {
		t.Fatalf("post-optimize untaken branch latched %v, want EvalNone", p.LastEvalError())
	}
	got = p.Eval([]float64{math.E})
	if math.Abs(got-1) > 1e-12 {
		t.Fatalf("post-optimize got %v, want 1", got)
	}
}

func TestPrintBytecodeDumpsMnemonics(t *testing.T) {
	p := New[float64, numeric.Float64Ops]()
	mustParse(t, p, "x+1", "x")

	var sb strings.Builder
	p.PrintBytecode(&sb)

	out := sb.String()
	if !strings.Contains(out, "var[0]") || !strings.Contains(out, "immed") || !strings.Contains(out, "add") {
		t.Fatalf("dump missing expected mnemonics: %q", out)
	}
}

func TestShareIsCopyOnWrite(t *testing.T) {
	p1 := New[float64, numeric.Float64Ops]()
	mustParse(t, p1, "x+1", "x")
	p2 := p1.Share()

	mustParse(t, p2, "x*2", "x")

	if got := p1.Eval([]float64{5}); got != 6 {
		t.Fatalf("p1 mutated by p2's Parse: got %v, want 6", got)
	}
	if got := p2.Eval([]float64{5}); got != 10 {
		t.Fatalf("p2 got %v, want 10", got)
	}
}
