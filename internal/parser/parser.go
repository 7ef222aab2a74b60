// Package parser compiles expression text into bytecode and a literal pool
// via a recursive-descent, operator-precedence parse that emits directly
// into the target Program, with no intermediate AST.
package parser

import (
	"fmt"
	"io"
	"strings"

	"fpgo/internal/bytecode"
	"fpgo/internal/codetree"
	"fpgo/internal/compiler"
	"fpgo/internal/errors"
	"fpgo/internal/lexer"
	"fpgo/internal/numeric"
	"fpgo/internal/rewrite"
	"fpgo/internal/vm"
)

// Parser is generic over the scalar type T and its operation table O: T and
// O are both fixed at compile time by the instantiation the caller picks,
// e.g. Parser[float64, numeric.Float64Ops], rather than dispatched at
// runtime.
type Parser[T any, O numeric.Ops[T]] struct {
	ops  O
	data *Data[T]
	ref  *refHandle
}

func New[T any, O numeric.Ops[T]]() *Parser[T, O] {
	return &Parser[T, O]{data: NewData[T](), ref: newRefHandle()}
}

// Share returns a handle that aliases the same Data block in O(1); the
// first mutating call on either handle clones.
func (p *Parser[T, O]) Share() *Parser[T, O] {
	return &Parser[T, O]{ops: p.ops, data: p.data, ref: p.ref.retain()}
}

func (p *Parser[T, O]) cow() {
	if p.ref.isShared() {
		p.ref.release()
		p.data = p.data.clone()
		p.ref = newRefHandle()
	}
}

// LastEvalError returns the latched evaluator error code; the only way an
// evaluation-time error surfaces, since Eval itself returns just a value.
func (p *Parser[T, O]) LastEvalError() errors.EvalError {
	return errors.EvalError(p.data.loadEvalError())
}

func (p *Parser[T, O]) Program() *bytecode.Program[T] { return p.data.Program }
func (p *Parser[T, O]) VarCount() int                 { return p.data.VarCount }
func (p *Parser[T, O]) UseDegrees() bool              { return p.data.UseDegrees }

// Eval runs the most recently parsed program against vars, latching any
// runtime error for LastEvalError to report afterward. vars must have
// length VarCount(); extra or missing entries are the caller's mistake, not
// something Eval tries to recover from.
func (p *Parser[T, O]) Eval(vars []T) T {
	result, evalErr := vm.Eval[T, O](p.ops, p.data.Program, vars, p.data.Names.ByFuncno)
	p.data.storeEvalError(int32(evalErr))
	return result
}

// Optimize rewrites Program into an algebraically simplified but
// semantically equivalent form: constant subexpressions fold away,
// recognized identities (like sin(a)^2+cos(a)^2) collapse, and integer
// powers lower into a short squaring chain. It is idempotent — calling it
// again on an already-optimized program is a no-op.
func (p *Parser[T, O]) Optimize() {
	p.cow()
	if p.data.Optimized {
		return
	}
	tree := codetree.Build[T](p.data.Program)
	tree = rewrite.Optimize[T, O](p.ops, tree)
	p.data.Program = compiler.NewSerializer[T]().Serialize(tree)
	p.data.Optimized = true
}

// PrintBytecode writes a mnemonic, line-per-instruction dump of the most
// recently compiled Program to sink. It is a diagnostic aid only — the
// format is prose, not a bit-exact or machine-parseable encoding.
func (p *Parser[T, O]) PrintBytecode(sink io.Writer) {
	prog := p.data.Program
	ins := prog.Instructions
	for ip := 0; ip < len(ins); {
		op := bytecode.Op(ins[ip])
		fmt.Fprintf(sink, "%4d  %s\n", ip, bytecode.Mnemonic(op))
		ip += 1 + bytecode.OperandCount(op)
	}
}

// AddConstant registers a named constant, resolved ahead of built-ins in
// name lookup.
func (p *Parser[T, O]) AddConstant(name string, value T) {
	p.cow()
	p.data.Names.Constants[name] = value
}

// AddUnit registers a postfix unit multiplier applied after an atom, e.g.
// "5kg" parsing as 5 * kg.
func (p *Parser[T, O]) AddUnit(name string, multiplier T) {
	p.cow()
	p.data.Names.Units[name] = multiplier
}

// AddFunction registers a user callback invoked via cFCall.
func (p *Parser[T, O]) AddFunction(name string, fn func([]T) T, arity int) {
	p.cow()
	uf := &UserFunction[T]{
		Funcno: len(p.data.Names.ByFuncno),
		Arity:  arity, Callback: fn,
	}
	p.data.Names.Functions[name] = uf
	p.data.Names.addFunction(uf)
}

// AddSubParser registers a sub-parser, given as its evaluation function,
// invoked via cPCall.
func (p *Parser[T, O]) AddSubParser(name string, eval func([]T) (T, error)) {
	p.cow()
	sp := &SubParser[T]{
		Funcno: len(p.data.Names.ByFuncno),
		Eval:   eval,
	}
	p.data.Names.SubParsers[name] = sp
	p.data.Names.addSubParser(sp)
}

// parseErrSignal unwinds the recursive-descent parse to Parse's recover,
// carrying the already-built *errors.ParseError. This is the same
// panic/recover bailout idiom Go's own go/parser uses internally for
// recursive-descent error handling.
type parseErrSignal struct{ err *errors.ParseError }

type state[T any, O numeric.Ops[T]] struct {
	ops        O
	tokens     []lexer.Token
	pos        int
	prog       *bytecode.Program[T]
	data       *Data[T]
	curStack   int
	maxStack   int
}

func (s *state[T, O]) push() {
	s.curStack++
	if s.curStack > s.maxStack {
		s.maxStack = s.curStack
	}
}
func (s *state[T, O]) pop(n int) { s.curStack -= n }

func (s *state[T, O]) peek() lexer.Token  { return s.tokens[s.pos] }
func (s *state[T, O]) atEnd() bool        { return s.peek().Type == lexer.TokenEOF }
func (s *state[T, O]) advance() lexer.Token {
	t := s.tokens[s.pos]
	if !s.atEnd() {
		s.pos++
	}
	return t
}
func (s *state[T, O]) check(tt lexer.TokenType) bool { return s.peek().Type == tt }
func (s *state[T, O]) match(tt lexer.TokenType) bool {
	if s.check(tt) {
		s.advance()
		return true
	}
	return false
}

func (s *state[T, O]) fail(kind errors.ParseErrorKind, detail string) {
	panic(parseErrSignal{errors.NewParseError(kind, s.peek().Offset, detail)})
}

func (s *state[T, O]) expect(tt lexer.TokenType, kind errors.ParseErrorKind, detail string) lexer.Token {
	if !s.check(tt) {
		s.fail(kind, detail)
	}
	return s.advance()
}

// Parse compiles text against the comma-separated vars list. On error the
// compiled program is left empty and the error is returned and
// latched (data.LastParseError); on success the data block's Program holds
// the freshly emitted bytecode.
func (p *Parser[T, O]) Parse(text string, vars string, useDegrees bool) (err error) {
	p.cow()
	p.data.Program = bytecode.NewProgram[T]()
	p.data.VarNames = map[string]uint32{}
	p.data.InlineVars = map[string]uint32{}
	p.data.UseDegrees = useDegrees
	p.data.Optimized = false

	if strings.TrimSpace(vars) != "" {
		for i, name := range strings.Split(vars, ",") {
			name = strings.TrimSpace(name)
			if name == "" || !isValidIdent(name) {
				p.data.LastParseError = errors.NewParseError(errors.InvalidVariableName, 0, name)
				return p.data.LastParseError
			}
			p.data.VarNames[name] = uint32(i)
		}
	}
	p.data.VarCount = len(p.data.VarNames)

	defer func() {
		if r := recover(); r != nil {
			sig, ok := r.(parseErrSignal)
			if !ok {
				panic(r)
			}
			p.data.Program = bytecode.NewProgram[T]()
			p.data.LastParseError = sig.err
			err = sig.err
		}
	}()

	toks := lexer.NewScanner(text).ScanTokens()
	st := &state[T, O]{ops: p.ops, tokens: toks, prog: p.data.Program, data: p.data}
	st.parseExpr()
	if !st.atEnd() {
		st.fail(errors.ExpectedOperator, "trailing input after expression")
	}
	p.data.Program.StackDepthMax = st.maxStack
	p.data.LastParseError = nil
	return nil
}

// ---- grammar ----

func (s *state[T, O]) parseExpr() { s.parseOr() }

func (s *state[T, O]) parseOr() {
	s.parseAnd()
	for s.match(lexer.TokenPipe) {
		s.parseAnd()
		s.emit1(bytecode.OpOr)
	}
}

func (s *state[T, O]) parseAnd() {
	s.parseCmp()
	for s.match(lexer.TokenAmp) {
		s.parseCmp()
		s.emit1(bytecode.OpAnd)
	}
}

var cmpOps = map[lexer.TokenType]bytecode.Op{
	lexer.TokenEqual:    bytecode.OpEq,
	lexer.TokenNotEqual: bytecode.OpNeq,
	lexer.TokenLT:       bytecode.OpLt,
	lexer.TokenLE:       bytecode.OpLe,
	lexer.TokenGT:       bytecode.OpGt,
	lexer.TokenGE:       bytecode.OpGe,
}

func (s *state[T, O]) parseCmp() {
	s.parseAdd()
	if op, ok := cmpOps[s.peek().Type]; ok {
		s.advance()
		s.parseAdd()
		s.emit1(op)
	}
}

func (s *state[T, O]) parseAdd() {
	s.parseMul()
	for {
		switch s.peek().Type {
		case lexer.TokenPlus:
			s.advance()
			s.parseMul()
			s.emit1(bytecode.OpAdd)
		case lexer.TokenMinus:
			s.advance()
			s.parseMul()
			s.emit1(bytecode.OpSub)
		default:
			return
		}
	}
}

func (s *state[T, O]) parseMul() {
	s.parseUnary()
	for {
		switch s.peek().Type {
		case lexer.TokenStar:
			s.advance()
			s.parseUnary()
			s.emit1(bytecode.OpMul)
		case lexer.TokenSlash:
			s.advance()
			s.parseUnary()
			s.emit1(bytecode.OpDiv)
		case lexer.TokenPercent:
			s.advance()
			s.parseUnary()
			s.emit1(bytecode.OpMod)
		default:
			return
		}
	}
}

func (s *state[T, O]) parseUnary() {
	switch s.peek().Type {
	case lexer.TokenMinus:
		s.advance()
		s.parseUnary()
		s.emitUnaryInPlace(bytecode.OpNeg)
	case lexer.TokenNot:
		s.advance()
		s.parseUnary()
		s.emitUnaryInPlace(bytecode.OpNot)
	default:
		s.parsePower()
	}
}

// power := postfix ('^' unary)?, right-associative.
func (s *state[T, O]) parsePower() {
	s.parsePostfix()
	if s.match(lexer.TokenCaret) {
		s.parseUnary()
		s.emit1(bytecode.OpPow)
	}
}

func (s *state[T, O]) parsePostfix() {
	s.parseAtom()
	for s.check(lexer.TokenIdent) {
		name := s.peek().Lexeme
		mult, ok := s.data.Names.Units[name]
		if !ok {
			return
		}
		s.advance()
		s.emitImmediate(mult)
		s.emit1(bytecode.OpMul)
	}
}

func (s *state[T, O]) parseAtom() {
	tok := s.peek()
	switch tok.Type {
	case lexer.TokenNumber:
		s.advance()
		s.parseNumberLiteral(tok)
		return
	case lexer.TokenLParen:
		s.advance()
		s.parseExpr()
		s.expect(lexer.TokenRParen, errors.MissingParenthesis, "expected ')'")
		return
	case lexer.TokenIdent:
		s.advance()
		s.parseIdentAtom(tok)
		return
	case lexer.TokenRParen:
		s.fail(errors.MismatchedParenthesis, "unexpected ')'")
	case lexer.TokenEOF:
		s.fail(errors.PrematureEnd, "unexpected end of input")
	}
	s.fail(errors.SyntaxError, "unexpected token "+string(tok.Type))
}

func (s *state[T, O]) parseNumberLiteral(tok lexer.Token) {
	v, ok := s.ops.ParseLiteral(tok.Lexeme)
	if !ok {
		s.fail(errors.SyntaxError, "unrecognized number "+tok.Lexeme)
	}
	s.emitImmediate(v)
}

// parseIdentAtom resolves name in order: parameter list -> inline bindings
// -> user-registered name table -> built-in functions.
func (s *state[T, O]) parseIdentAtom(tok lexer.Token) {
	name := tok.Lexeme

	if idx, ok := s.data.VarNames[name]; ok {
		s.emitVar(idx)
		return
	}
	if slot, ok := s.data.InlineVars[name]; ok {
		s.emitFetch(slot)
		return
	}
	if v, ok := s.data.Names.Constants[name]; ok {
		s.emitImmediate(v)
		return
	}

	isCall := s.check(lexer.TokenLParen)
	if isCall {
		if uf, ok := s.data.Names.Functions[name]; ok {
			s.parseCallArgs(uf.Arity)
			s.emitFCall(uf.Funcno, uf.Arity)
			return
		}
		if sp, ok := s.data.Names.SubParsers[name]; ok {
			n := s.parseCallArgsVariadic()
			s.emitPCall(sp.Funcno, n)
			return
		}
		if op, ok := bytecode.FunctionNames[name]; ok {
			flags := bytecode.FunctionFlags[op]
			if flags.ComplexOnly && !s.ops.IsComplex() {
				s.fail(errors.IllegalParameterCount, name+" is only defined for complex T")
			}
			if _, isInt := any(s.ops).(numeric.IntegerOnly[T]); isInt && !flags.OkForInt {
				s.fail(errors.IllegalParameterCount, name+" is not defined for integer T")
			}
			if op == bytecode.OpIf3 {
				s.parseIfCall()
				return
			}
			s.parseBuiltinCall(op, flags)
			return
		}
		s.fail(errors.SyntaxError, "unknown function "+name)
	}
	s.fail(errors.SyntaxError, "unknown identifier "+name)
}

// parseIfCall emits if(cond, then, else) as a genuinely short-circuiting
// branch: cond; OpIf target1 litIdx1; then; OpJump target2 litIdx2; else.
// OpIf pops cond and, when falsy, jumps straight to the start of else
// (skipping then's instructions and literals); OpJump unconditionally skips
// over else once then has run. Both targets are backpatched once known, so
// only one of then/else is ever evaluated at runtime.
func (s *state[T, O]) parseIfCall() {
	s.expect(lexer.TokenLParen, errors.ExpectedParenthesis, "expected '('")
	s.parseExpr() // cond
	s.expect(lexer.TokenComma, errors.IllegalParameterCount, "expected ','")

	s.prog.Emit(bytecode.OpIf)
	ifTargetIdx := len(s.prog.Instructions)
	s.prog.EmitOperand(0)
	s.prog.EmitOperand(uint32(len(s.prog.Literals)))
	s.pop(1) // cond consumed

	s.parseExpr() // then
	s.expect(lexer.TokenComma, errors.IllegalParameterCount, "expected ','")

	s.prog.Emit(bytecode.OpJump)
	jumpTargetIdx := len(s.prog.Instructions)
	s.prog.EmitOperand(0)
	s.prog.EmitOperand(0)

	s.prog.PatchOperand(ifTargetIdx, uint32(s.prog.Len()))
	s.prog.PatchOperand(ifTargetIdx+1, uint32(len(s.prog.Literals)))
	s.pop(1) // then's pushed result isn't there on the else path

	s.parseExpr() // else
	s.expect(lexer.TokenRParen, errors.MissingParenthesis, "expected ')' after arguments")

	s.prog.PatchOperand(jumpTargetIdx, uint32(s.prog.Len()))
	s.prog.PatchOperand(jumpTargetIdx+1, uint32(len(s.prog.Literals)))
	// else's push() above already leaves curStack where the merged result of
	// whichever branch ran belongs; no further adjustment needed.
}

func (s *state[T, O]) parseBuiltinCall(op bytecode.Op, flags bytecode.Flags) {
	s.expect(lexer.TokenLParen, errors.ExpectedParenthesis, "expected '('")
	if flags.Arity == 0 {
		s.expect(lexer.TokenRParen, errors.EmptyParenthesis, "expected ')'")
	}
	for i := 0; i < flags.Arity; i++ {
		if i > 0 {
			s.expect(lexer.TokenComma, errors.IllegalParameterCount, "expected ','")
		}
		s.parseExpr()
	}
	s.expect(lexer.TokenRParen, errors.MissingParenthesis, "expected ')' after arguments")

	if flags.AngleIn && s.data.UseDegrees {
		// cRad converts the just-evaluated argument before the angle-in
		// function's own opcode runs.
		s.prog.Emit(bytecode.OpRad)
	}
	s.pop(flags.Arity - 1)
	s.prog.Emit(op)
	if flags.AngleOut && s.data.UseDegrees {
		s.prog.Emit(bytecode.OpDeg)
		// cDeg is unary: no further stack-depth change.
	}
}

func (s *state[T, O]) parseCallArgs(arity int) {
	s.expect(lexer.TokenLParen, errors.ExpectedParenthesis, "expected '('")
	if arity == 0 {
		s.expect(lexer.TokenRParen, errors.EmptyParenthesis, "expected ')'")
		return
	}
	for i := 0; i < arity; i++ {
		if i > 0 {
			s.expect(lexer.TokenComma, errors.IllegalParameterCount, "expected ','")
		}
		s.parseExpr()
	}
	s.expect(lexer.TokenRParen, errors.MissingParenthesis, "expected ')' after arguments")
}

func (s *state[T, O]) parseCallArgsVariadic() int {
	s.expect(lexer.TokenLParen, errors.ExpectedParenthesis, "expected '('")
	n := 0
	if !s.check(lexer.TokenRParen) {
		s.parseExpr()
		n++
		for s.match(lexer.TokenComma) {
			s.parseExpr()
			n++
		}
	}
	s.expect(lexer.TokenRParen, errors.MissingParenthesis, "expected ')' after arguments")
	return n
}

// ---- emission helpers ----

func (s *state[T, O]) emitImmediate(v T) {
	s.prog.Emit(bytecode.OpImmed)
	s.prog.AddLiteral(v)
	s.push()
}

func (s *state[T, O]) emitVar(idx uint32) {
	s.prog.Emit(bytecode.VarOp(idx))
	s.push()
}

func (s *state[T, O]) emitFetch(slot uint32) {
	s.prog.Emit(bytecode.OpFetch)
	s.prog.EmitOperand(slot)
	s.push()
}

// emit1 emits a strictly-binary op (two operands -> one result).
func (s *state[T, O]) emit1(op bytecode.Op) {
	s.prog.Emit(op)
	s.pop(1)
}

func (s *state[T, O]) emitUnaryInPlace(op bytecode.Op) {
	s.prog.Emit(op)
	// stack depth unchanged: pop 1, push 1
}

func (s *state[T, O]) emitFCall(funcno, arity int) {
	s.prog.Emit(bytecode.OpFCall)
	s.prog.EmitOperand(uint32(funcno))
	s.prog.EmitOperand(uint32(arity))
	s.pop(arity - 1)
}

func (s *state[T, O]) emitPCall(funcno, arity int) {
	s.prog.Emit(bytecode.OpPCall)
	s.prog.EmitOperand(uint32(funcno))
	s.prog.EmitOperand(uint32(arity))
	s.pop(arity - 1)
}

func isValidIdent(s string) bool {
	if s == "" {
		return false
	}
	if !((s[0] >= 'a' && s[0] <= 'z') || (s[0] >= 'A' && s[0] <= 'Z') || s[0] == '_') {
		return false
	}
	for i := 1; i < len(s); i++ {
		c := s[i]
		if !((c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_' || c >= 0x80) {
			return false
		}
	}
	return true
}
