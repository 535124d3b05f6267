// Package calc implements the stack calculator engine exposed by calc-runtime.
//
// An Engine records every push in a single ordered event log and evaluates the
// log on demand:
//
//	e := calc.New()
//	e.PushOperand(10)
//	e.PushOperand(20)
//	e.PushOperation(calc.Add)
//	e.PushOperand(2)
//	e.PushOperation(calc.Mul)
//
//	v, err := e.Execute() // 60, nil
//
// # Evaluation
//
// Execute replays the log over an empty stack. An operand event pushes its value.
// An operation event pops b (top) and then a, and pushes a op b. After the replay
// the stack must hold exactly one value.
//
// Arithmetic is unsigned 32-bit: add, sub and mul wrap modulo 2^32, div truncates
// and fails with ErrDivisionByZero for a zero divisor.
//
// # Errors
//
//	ErrStackUnderflow        operation with fewer than two values on the stack
//	ErrIncompleteExpression  replay ends with zero or more than one value
//	ErrDivisionByZero        div with b == 0
//
// Execute never returns a partial result. It does not consume the log, so calling
// it again yields the same outcome until more events are pushed.
//
// # Thread Safety
//
// Engine is safe for concurrent use; pushes and evaluation are serialized by a
// per-engine mutex.
package calc
