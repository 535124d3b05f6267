package guest

import (
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/calc-runtime/calc"
)

// Import names of the engine resource.
const (
	Namespace     = "calc:engine/types@0.1.0"
	Constructor   = "[constructor]engine"
	PushOperand   = "[method]engine.push-operand"
	PushOperation = "[method]engine.push-operation"
	Execute       = "[method]engine.execute"
	Drop          = "[resource-drop]engine"
)

// RetArea is the return-area address the assembled guests pass to execute.
const RetArea = 16

var (
	none []api.ValueType
	one  = []api.ValueType{api.ValueTypeI32}
	two  = []api.ValueType{api.ValueTypeI32, api.ValueTypeI32}
)

type engineImports struct {
	ctor, pushOperand, pushOperation, execute, drop uint32
}

func importEngine(m *Module) engineImports {
	return engineImports{
		ctor:          m.Import(Namespace, Constructor, none, one),
		pushOperand:   m.Import(Namespace, PushOperand, two, none),
		pushOperation: m.Import(Namespace, PushOperation, two, none),
		execute:       m.Import(Namespace, Execute, two, none),
		drop:          m.Import(Namespace, Drop, one, none),
	}
}

// Engine returns a guest that re-exports the engine resource as plain
// functions:
//
//	new      () -> handle
//	push     (handle, operand)
//	op       (handle, operation)
//	exec-at  (handle, retptr)
//	drop     (handle)
//
// With memory it also exports one page of "memory" and
//
//	exec     (handle) -> (discriminant, payload)
//
// which executes into RetArea and reads the result back.
func Engine(withMemory bool) []byte {
	m := &Module{}
	im := importEngine(m)

	m.Func("new", none, one, 0, Call(im.ctor))
	m.Func("push", two, none, 0, Code(LocalGet(0), LocalGet(1), Call(im.pushOperand)))
	m.Func("op", two, none, 0, Code(LocalGet(0), LocalGet(1), Call(im.pushOperation)))
	m.Func("exec-at", two, none, 0, Code(LocalGet(0), LocalGet(1), Call(im.execute)))
	m.Func("drop", one, none, 0, Code(LocalGet(0), Call(im.drop)))

	if withMemory {
		m.Memory(1)
		m.Func("exec", one, two, 0, Code(
			LocalGet(0), I32Const(RetArea), Call(im.execute),
			readResult(),
		))
	}
	return m.Bytes()
}

// Program returns a guest exporting
//
//	run () -> (discriminant, payload)
//
// which creates an engine, pushes events in order, executes, drops the
// engine and returns the lowered result.
func Program(events []calc.Event) []byte {
	m := &Module{}
	im := importEngine(m)
	m.Memory(1)

	const self = 0
	body := Code(Call(im.ctor), LocalSet(self))
	for _, ev := range events {
		switch ev.Kind {
		case calc.EventOperand:
			body = Code(body, LocalGet(self), I32Const(int32(ev.Operand)), Call(im.pushOperand))
		case calc.EventOperation:
			body = Code(body, LocalGet(self), I32Const(int32(ev.Op)), Call(im.pushOperation))
		}
	}
	body = Code(body,
		LocalGet(self), I32Const(RetArea), Call(im.execute),
		LocalGet(self), Call(im.drop),
		readResult(),
	)
	m.Func("run", none, two, 1, body)
	return m.Bytes()
}

// Demo is the program 10 20 add 2 mul, which evaluates to 60.
func Demo() []byte {
	return Program([]calc.Event{
		{Kind: calc.EventOperand, Operand: 10},
		{Kind: calc.EventOperand, Operand: 20},
		{Kind: calc.EventOperation, Op: calc.Add},
		{Kind: calc.EventOperand, Operand: 2},
		{Kind: calc.EventOperation, Op: calc.Mul},
	})
}

// readResult pushes the discriminant and the payload of the result<u32,
// error> at RetArea. Error codes are a single byte.
func readResult() []byte {
	return Code(
		I32Const(RetArea), I32Load8U(0),
		I32Const(RetArea), I32Load8U(0),
		IfI32(),
		I32Const(RetArea), I32Load8U(4),
		Else(),
		I32Const(RetArea), I32Load(4),
		End(),
	)
}
