package calc

import (
	"strconv"

	"github.com/wippyai/calc-runtime/errors"
)

// Operation is one of the four arithmetic operators an Engine understands.
// The ordinal values are the canonical ABI enum discriminants.
type Operation uint8

const (
	Add Operation = iota
	Sub
	Mul
	Div
)

// NumOperations is the size of the closed Operation set.
const NumOperations = 4

var operationNames = [NumOperations]string{"add", "sub", "mul", "div"}

// String returns the wire tag of the operation.
func (op Operation) String() string {
	if op.Valid() {
		return operationNames[op]
	}
	return "operation(" + strconv.Itoa(int(op)) + ")"
}

// Valid reports whether op is a member of the closed set.
func (op Operation) Valid() bool {
	return op < NumOperations
}

// ParseOperation decodes a wire tag ("add", "sub", "mul", "div").
func ParseOperation(tag string) (Operation, error) {
	for i, name := range operationNames {
		if name == tag {
			return Operation(i), nil
		}
	}
	return 0, errors.InvalidEnum(errors.PhaseLift, tag, "operation")
}

// OperationFromOrdinal decodes a lowered enum discriminant.
func OperationFromOrdinal(ord uint32) (Operation, error) {
	if ord >= NumOperations {
		return 0, errors.InvalidEnum(errors.PhaseLift, ord, "operation")
	}
	return Operation(ord), nil
}

// Operations returns all operations in ordinal order.
func Operations() []Operation {
	return []Operation{Add, Sub, Mul, Div}
}

// apply computes a op b with 32-bit wraparound.
func (op Operation) apply(a, b uint32) (uint32, bool) {
	switch op {
	case Add:
		return a + b, true
	case Sub:
		return a - b, true
	case Mul:
		return a * b, true
	case Div:
		if b == 0 {
			return 0, false
		}
		return a / b, true
	default:
		panic("calc: invalid operation " + op.String())
	}
}
