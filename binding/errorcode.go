package binding

import (
	"errors"

	"github.com/wippyai/calc-runtime/calc"
)

// ErrorCode is the lowered discriminant of the WIT error enum.
type ErrorCode uint8

const (
	ErrorDivisionByZero ErrorCode = iota
	ErrorStackUnderflow
	ErrorIncompleteExpression
)

var errorCodeNames = [...]string{"division-by-zero", "stack-underflow", "incomplete-expression"}

var errorCodeErrs = [...]error{calc.ErrDivisionByZero, calc.ErrStackUnderflow, calc.ErrIncompleteExpression}

func (c ErrorCode) String() string {
	if int(c) < len(errorCodeNames) {
		return errorCodeNames[c]
	}
	return "unknown"
}

// Err returns the engine sentinel for c, or nil for an unknown code.
func (c ErrorCode) Err() error {
	if int(c) < len(errorCodeErrs) {
		return errorCodeErrs[c]
	}
	return nil
}

// Code maps an Execute error to its wire code. It reports false for errors
// that are not engine evaluation failures.
func Code(err error) (ErrorCode, bool) {
	for i, sentinel := range errorCodeErrs {
		if errors.Is(err, sentinel) {
			return ErrorCode(i), true
		}
	}
	return 0, false
}
