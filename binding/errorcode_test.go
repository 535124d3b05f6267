package binding

import (
	"errors"
	"fmt"
	"testing"

	"github.com/wippyai/calc-runtime/calc"
)

func TestErrorCode(t *testing.T) {
	tests := []struct {
		code ErrorCode
		name string
		err  error
	}{
		{ErrorDivisionByZero, "division-by-zero", calc.ErrDivisionByZero},
		{ErrorStackUnderflow, "stack-underflow", calc.ErrStackUnderflow},
		{ErrorIncompleteExpression, "incomplete-expression", calc.ErrIncompleteExpression},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.code.String() != tt.name {
				t.Errorf("String = %q", tt.code.String())
			}
			if tt.code.Err() != tt.err {
				t.Errorf("Err = %v", tt.code.Err())
			}

			wrapped := fmt.Errorf("outer: %w", tt.err)
			got, ok := Code(wrapped)
			if !ok || got != tt.code {
				t.Errorf("Code = %v, %v", got, ok)
			}
		})
	}
}

func TestErrorCode_Unknown(t *testing.T) {
	if ErrorCode(3).Err() != nil {
		t.Error("Err for unknown code should be nil")
	}
	if ErrorCode(3).String() != "unknown" {
		t.Errorf("String = %q", ErrorCode(3).String())
	}
	if _, ok := Code(errors.New("other")); ok {
		t.Error("Code accepted a foreign error")
	}
	if _, ok := Code(nil); ok {
		t.Error("Code accepted nil")
	}
}
