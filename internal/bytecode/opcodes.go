// Package bytecode defines the instruction set and the linear program
// representation the parser emits, the tree builder reads, and the
// serializer re-emits after optimization.
package bytecode

import "strconv"

// Op is a tagged instruction. Opcodes below VarBegin are fixed; any value
// >= VarBegin encodes a variable reference, with the variable index equal to
// op - VarBegin.
type Op uint32

const (
	// Core ops.
	OpImmed Op = iota // push next literal
	OpJump            // unconditional branch, used by cIf's else arm
	OpIf              // conditional branch
	OpNeg
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpEq
	OpNeq
	OpLt
	OpLe
	OpGt
	OpGe
	OpNot
	OpAnd
	OpOr
	OpNotNot
	OpDeg
	OpRad
	OpFCall // call a user-registered callback
	OpPCall // call a registered sub-parser

	// Named functions.
	OpAbs
	OpSin
	OpCos
	OpTan
	OpAsin
	OpAcos
	OpAtan
	OpSinh
	OpCosh
	OpTanh
	OpLog
	OpLog2
	OpLog10
	OpExp
	OpExp2
	OpSqrt
	OpCbrt
	OpHypot
	OpPow
	OpAtan2
	OpMin
	OpMax
	OpIf3 // the 3-operand "if(c,t,e)" function form, folds to OpIf/OpJump at emission
	OpInt
	OpFloor
	OpCeil
	OpTrunc
	OpPolar
	OpArgFn
	OpConj
	OpRealFn
	OpImagFn

	// Optimizer-only ops, introduced by the rewrite engine / serializer and
	// never emitted directly by the parser.
	OpPopNMov
	OpLog2By
	OpNop
	OpSinCos
	OpSinhCosh
	OpAbsAnd
	OpAbsOr
	OpAbsNot
	OpAbsNotNot
	OpAbsIf
	OpDup
	OpFetch
	OpInv
	OpSqr
	OpRDiv
	OpRSub
	OpRSqrt
	OpFma
	OpFms
	OpFmma
	OpFmms

	// VarBegin marks the start of the variable-index encoding space; every
	// Op value from here up names a variable (op - VarBegin == var index).
	VarBegin Op = 1 << 24
)

// Flags describes the static properties of a named function opcode that the
// parser's name resolver and the optimizer's constraint checks consult.
type Flags struct {
	Arity       int
	IsFunction  bool
	AngleIn     bool // argument is an angle; cRad precedes it under use_degrees
	AngleOut    bool // result is an angle; cDeg follows it under use_degrees
	OkForInt    bool // may appear in an integer-T program
	ComplexOnly bool
}

// FunctionFlags is keyed by Op for every named-function opcode. Core ops,
// variables, and optimizer-only ops are absent (zero Flags, arity resolved
// structurally instead of via this table).
var FunctionFlags = map[Op]Flags{
	OpAbs:    {Arity: 1, IsFunction: true, OkForInt: true},
	OpSin:    {Arity: 1, IsFunction: true, AngleIn: true},
	OpCos:    {Arity: 1, IsFunction: true, AngleIn: true},
	OpTan:    {Arity: 1, IsFunction: true, AngleIn: true},
	OpAsin:   {Arity: 1, IsFunction: true, AngleOut: true},
	OpAcos:   {Arity: 1, IsFunction: true, AngleOut: true},
	OpAtan:   {Arity: 1, IsFunction: true, AngleOut: true},
	OpSinh:   {Arity: 1, IsFunction: true},
	OpCosh:   {Arity: 1, IsFunction: true},
	OpTanh:   {Arity: 1, IsFunction: true},
	OpLog:    {Arity: 1, IsFunction: true},
	OpLog2:   {Arity: 1, IsFunction: true},
	OpLog10:  {Arity: 1, IsFunction: true},
	OpExp:    {Arity: 1, IsFunction: true},
	OpExp2:   {Arity: 1, IsFunction: true},
	OpSqrt:   {Arity: 1, IsFunction: true},
	OpCbrt:   {Arity: 1, IsFunction: true},
	OpHypot:  {Arity: 2, IsFunction: true},
	OpPow:    {Arity: 2, IsFunction: true, OkForInt: true},
	OpAtan2:  {Arity: 2, IsFunction: true, AngleOut: true},
	OpMin:    {Arity: 2, IsFunction: true, OkForInt: true},
	OpMax:    {Arity: 2, IsFunction: true, OkForInt: true},
	OpIf3:    {Arity: 3, IsFunction: true, OkForInt: true},
	OpInt:    {Arity: 1, IsFunction: true, OkForInt: true},
	OpFloor:  {Arity: 1, IsFunction: true, OkForInt: true},
	OpCeil:   {Arity: 1, IsFunction: true, OkForInt: true},
	OpTrunc:  {Arity: 1, IsFunction: true, OkForInt: true},
	OpPolar:  {Arity: 2, IsFunction: true, ComplexOnly: true},
	OpArgFn:  {Arity: 1, IsFunction: true, ComplexOnly: true},
	OpConj:   {Arity: 1, IsFunction: true, ComplexOnly: true},
	OpRealFn: {Arity: 1, IsFunction: true, ComplexOnly: true},
	OpImagFn: {Arity: 1, IsFunction: true, ComplexOnly: true},
}

// FunctionNames lists built-in names the parser's name resolver consults
// after the parameter list, inline bindings, and user name table.
var FunctionNames = map[string]Op{
	"abs": OpAbs, "sin": OpSin, "cos": OpCos, "tan": OpTan,
	"asin": OpAsin, "acos": OpAcos, "atan": OpAtan,
	"sinh": OpSinh, "cosh": OpCosh, "tanh": OpTanh,
	"log": OpLog, "log2": OpLog2, "log10": OpLog10,
	"exp": OpExp, "exp2": OpExp2, "sqrt": OpSqrt, "cbrt": OpCbrt,
	"hypot": OpHypot, "pow": OpPow, "atan2": OpAtan2,
	"min": OpMin, "max": OpMax, "if": OpIf3,
	"int": OpInt, "floor": OpFloor, "ceil": OpCeil, "trunc": OpTrunc,
	"polar": OpPolar, "arg": OpArgFn, "conj": OpConj,
	"real": OpRealFn, "imag": OpImagFn,
}

// IsVar reports whether op encodes a variable reference, and if so its index.
func IsVar(op Op) (idx uint32, ok bool) {
	if op >= VarBegin {
		return uint32(op - VarBegin), true
	}
	return 0, false
}

// coreMnemonics names the core ops that aren't in FunctionNames (those are
// found by reverse lookup instead).
var coreMnemonics = map[Op]string{
	OpImmed: "immed", OpJump: "jump", OpIf: "if", OpNeg: "neg",
	OpAdd: "add", OpSub: "sub", OpMul: "mul", OpDiv: "div", OpMod: "mod",
	OpEq: "eq", OpNeq: "neq", OpLt: "lt", OpLe: "le", OpGt: "gt", OpGe: "ge",
	OpNot: "not", OpAnd: "and", OpOr: "or", OpNotNot: "notnot",
	OpDeg: "deg", OpRad: "rad", OpFCall: "fcall", OpPCall: "pcall",
	OpPopNMov: "popnmov", OpLog2By: "log2by", OpNop: "nop",
	OpSinCos: "sincos", OpSinhCosh: "sinhcosh",
	OpAbsAnd: "absand", OpAbsOr: "absor", OpAbsNot: "absnot",
	OpAbsNotNot: "absnotnot", OpAbsIf: "absif",
	OpDup: "dup", OpFetch: "fetch", OpInv: "inv", OpSqr: "sqr",
	OpRDiv: "rdiv", OpRSub: "rsub", OpRSqrt: "rsqrt",
	OpFma: "fma", OpFms: "fms", OpFmma: "fmma", OpFmms: "fmms",
}

// Mnemonic names op for diagnostic output: a variable reference prints as
// "var[N]", a named function as its parse-time name, and everything else as
// its short core-op name.
func Mnemonic(op Op) string {
	if idx, ok := IsVar(op); ok {
		return "var[" + strconv.FormatUint(uint64(idx), 10) + "]"
	}
	for name, o := range FunctionNames {
		if o == op {
			return name
		}
	}
	if m, ok := coreMnemonics[op]; ok {
		return m
	}
	return "op(?)"
}

// OperandCount reports how many trailing operand words follow op in a
// Program's instruction stream, so a walker's instruction pointer advances
// the same way Eval's does.
func OperandCount(op Op) int {
	switch op {
	case OpIf, OpJump, OpAbsIf, OpFCall, OpPCall:
		return 2
	case OpFetch, OpPopNMov, OpLog2By:
		return 1
	default:
		return 0
	}
}

// VarOp encodes variable index idx as an Op.
func VarOp(idx uint32) Op { return VarBegin + Op(idx) }
