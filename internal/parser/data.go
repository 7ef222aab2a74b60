package parser

import (
	"sync/atomic"

	"github.com/google/uuid"

	"fpgo/internal/bytecode"
	"fpgo/internal/vm"
)

// UserFunction is a name-table entry for Parser.AddFunction(name, callback,
// arity). It implements vm.Invocable so Eval can dispatch cFCall through it
// without the vm package importing parser back.
type UserFunction[T any] struct {
	Funcno   int
	Arity    int
	Callback func([]T) T
}

func (uf *UserFunction[T]) Invoke(args []T) (T, error) { return uf.Callback(args), nil }

// SubParser is a name-table entry for Parser.AddSubParser(name, otherParser):
// a nested parser invoked via cPCall, bounded by the caller's own recursion
// guard.
type SubParser[T any] struct {
	Funcno int
	Eval   func([]T) (T, error)
}

func (sp *SubParser[T]) Invoke(args []T) (T, error) { return sp.Eval(args) }

// NameTable holds the user-registered names consulted after the parameter
// list and inline bindings, ahead of built-in function names.
type NameTable[T any] struct {
	Constants  map[string]T
	Units      map[string]T
	Functions  map[string]*UserFunction[T]
	SubParsers map[string]*SubParser[T]

	// ByFuncno resolves cFCall/cPCall's funcno operand back to the callee
	// at Eval time: each UserFunction/SubParser is appended here in
	// registration order, so the operand is a direct slice index.
	ByFuncno []vm.Invocable[T]
}

func NewNameTable[T any]() *NameTable[T] {
	return &NameTable[T]{
		Constants:  map[string]T{},
		Units:      map[string]T{},
		Functions:  map[string]*UserFunction[T]{},
		SubParsers: map[string]*SubParser[T]{},
	}
}

func (n *NameTable[T]) addFunction(uf *UserFunction[T]) {
	n.ByFuncno = append(n.ByFuncno, uf)
}

func (n *NameTable[T]) addSubParser(sp *SubParser[T]) {
	n.ByFuncno = append(n.ByFuncno, sp)
}

func (n *NameTable[T]) clone() *NameTable[T] {
	cp := NewNameTable[T]()
	for k, v := range n.Constants {
		cp.Constants[k] = v
	}
	for k, v := range n.Units {
		cp.Units[k] = v
	}
	for k, v := range n.Functions {
		cp.Functions[k] = v
	}
	for k, v := range n.SubParsers {
		cp.SubParsers[k] = v
	}
	cp.ByFuncno = append([]vm.Invocable[T](nil), n.ByFuncno...)
	return cp
}

// Data is the reference-counted container holding everything a Parser needs
// once it has compiled an expression. A Parser value embeds a *Data[T] plus
// a pointer to a shared refcount; Parser.Share returns a second handle on
// the same Data and raises the refcount, and any mutating operation calls
// cow() first to clone if the refcount shows more than one live reference.
// A plain struct copy of a Parser does not raise the refcount.
type Data[T any] struct {
	ID uuid.UUID

	VarCount int
	VarNames map[string]uint32

	Names *NameTable[T]

	// InlineVars maps let-like local binding names introduced during
	// parsing to the stack fetch slot the parser assigned them.
	InlineVars map[string]uint32

	Program *bytecode.Program[T]

	UseDegrees     bool
	StackDepthHint int

	// Optimized is set once Optimize has rewritten Program; a second
	// Optimize call on the same data block is then a no-op.
	Optimized bool

	LastParseError error
	LastEvalError  int32 // atomic, holds errors.EvalError
}

func NewData[T any]() *Data[T] {
	return &Data[T]{
		ID:         uuid.New(),
		VarNames:   map[string]uint32{},
		Names:      NewNameTable[T](),
		InlineVars: map[string]uint32{},
		Program:    bytecode.NewProgram[T](),
	}
}

func (d *Data[T]) loadEvalError() int32    { return atomic.LoadInt32(&d.LastEvalError) }
func (d *Data[T]) storeEvalError(v int32)  { atomic.StoreInt32(&d.LastEvalError, v) }

func (d *Data[T]) clone() *Data[T] {
	cp := &Data[T]{
		ID:             uuid.New(),
		VarCount:       d.VarCount,
		VarNames:       make(map[string]uint32, len(d.VarNames)),
		Names:          d.Names.clone(),
		InlineVars:     make(map[string]uint32, len(d.InlineVars)),
		Program:        d.Program.Clone(),
		UseDegrees:     d.UseDegrees,
		StackDepthHint: d.StackDepthHint,
		Optimized:      d.Optimized,
		LastParseError: d.LastParseError,
	}
	atomic.StoreInt32(&cp.LastEvalError, atomic.LoadInt32(&d.LastEvalError))
	for k, v := range d.VarNames {
		cp.VarNames[k] = v
	}
	for k, v := range d.InlineVars {
		cp.InlineVars[k] = v
	}
	return cp
}

// refHandle is the shared refcount backing a Data[T]'s copy-on-write
// sharing; every Parser that currently aliases a given Data points at the
// same *refHandle.
type refHandle struct {
	count int32
}

func newRefHandle() *refHandle { return &refHandle{count: 1} }

func (r *refHandle) retain() *refHandle {
	atomic.AddInt32(&r.count, 1)
	return r
}

func (r *refHandle) isShared() bool {
	return atomic.LoadInt32(&r.count) > 1
}

func (r *refHandle) release() {
	atomic.AddInt32(&r.count, -1)
}
