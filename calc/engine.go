package calc

import (
	"strconv"
	"sync"

	"github.com/wippyai/calc-runtime/errors"
)

var (
	ErrDivisionByZero       = errors.New(errors.PhaseExecute, errors.KindDivisionByZero).Build()
	ErrStackUnderflow       = errors.New(errors.PhaseExecute, errors.KindStackUnderflow).Build()
	ErrIncompleteExpression = errors.New(errors.PhaseExecute, errors.KindIncompleteExpression).Build()
)

// EventKind distinguishes the two kinds of pushes recorded by an Engine.
type EventKind uint8

const (
	EventOperand EventKind = iota
	EventOperation
)

// Event is a single entry of the engine's log.
// Operand is meaningful for EventOperand, Op for EventOperation.
type Event struct {
	Operand uint32
	Kind    EventKind
	Op      Operation
}

// String renders the event as its token ("42", "add").
func (e Event) String() string {
	if e.Kind == EventOperation {
		return e.Op.String()
	}
	return strconv.FormatUint(uint64(e.Operand), 10)
}

// Engine accumulates operand and operation pushes and evaluates them as a
// reverse-Polish sequence.
type Engine struct {
	events []Event
	mu     sync.Mutex
}

// New returns an empty engine.
func New() *Engine {
	return &Engine{}
}

// PushOperand appends an operand to the log.
func (e *Engine) PushOperand(v uint32) {
	e.mu.Lock()
	e.events = append(e.events, Event{Kind: EventOperand, Operand: v})
	e.mu.Unlock()
}

// PushOperation appends an operation to the log.
// It panics if op is outside the closed set; boundary layers decode tags with
// ParseOperation or OperationFromOrdinal first.
func (e *Engine) PushOperation(op Operation) {
	if !op.Valid() {
		panic("calc: invalid operation " + op.String())
	}
	e.mu.Lock()
	e.events = append(e.events, Event{Kind: EventOperation, Op: op})
	e.mu.Unlock()
}

// Execute evaluates the log and returns the single remaining stack value.
// The log is left untouched.
func (e *Engine) Execute() (uint32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	stack := make([]uint32, 0, len(e.events))
	for i, ev := range e.events {
		switch ev.Kind {
		case EventOperand:
			stack = append(stack, ev.Operand)
		case EventOperation:
			n := len(stack)
			if n < 2 {
				return 0, errors.New(errors.PhaseExecute, errors.KindStackUnderflow).
					Op(ev.Op.String()).
					Index(i).
					Detail("need 2 values, have %d", n).
					Build()
			}
			a, b := stack[n-2], stack[n-1]
			r, ok := ev.Op.apply(a, b)
			if !ok {
				return 0, errors.New(errors.PhaseExecute, errors.KindDivisionByZero).
					Op(ev.Op.String()).
					Index(i).
					Value(a).
					Detail("%d / 0", a).
					Build()
			}
			stack = append(stack[:n-2], r)
		}
	}

	if len(stack) != 1 {
		return 0, errors.New(errors.PhaseExecute, errors.KindIncompleteExpression).
			Value(len(stack)).
			Detail("%d values left on stack, want 1", len(stack)).
			Build()
	}
	return stack[0], nil
}

// Len returns the number of recorded events.
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.events)
}

// Events returns a copy of the log.
func (e *Engine) Events() []Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Event, len(e.events))
	copy(out, e.events)
	return out
}

// Drop releases the log. It is called by the resource table when the
// engine's handle is dropped.
func (e *Engine) Drop() {
	e.mu.Lock()
	e.events = nil
	e.mu.Unlock()
}
