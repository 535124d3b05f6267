package binding

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wippyai/calc-runtime/calc"
	rterrors "github.com/wippyai/calc-runtime/errors"
	"github.com/wippyai/calc-runtime/resource"
)

var errInvalidHandle = rterrors.New(rterrors.PhaseHandle, rterrors.KindInvalidHandle).Build()

func TestHost_Demo(t *testing.T) {
	h := NewHost()
	defer h.Close()

	e, err := h.New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for _, v := range []uint32{10, 20} {
		if err := h.PushOperand(e, v); err != nil {
			t.Fatalf("PushOperand: %v", err)
		}
	}
	if err := h.PushOperation(e, uint32(calc.Add)); err != nil {
		t.Fatalf("PushOperation: %v", err)
	}
	if err := h.PushOperand(e, 2); err != nil {
		t.Fatalf("PushOperand: %v", err)
	}
	if err := h.PushOperation(e, uint32(calc.Mul)); err != nil {
		t.Fatalf("PushOperation: %v", err)
	}

	v, err := h.Execute(e)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if v != 60 {
		t.Errorf("Execute = %d, want 60", v)
	}

	if err := h.Drop(e); err != nil {
		t.Fatalf("Drop: %v", err)
	}
	if h.Len() != 0 {
		t.Errorf("Len = %d after Drop", h.Len())
	}
}

func TestHost_EnginesAreIndependent(t *testing.T) {
	h := NewHost()
	defer h.Close()

	a, _ := h.New()
	b, _ := h.New()
	if a == b {
		t.Fatalf("handles collide: %d", a)
	}
	_ = h.PushOperand(a, 1)
	_ = h.PushOperand(b, 2)

	va, _ := h.Execute(a)
	vb, _ := h.Execute(b)
	if va != 1 || vb != 2 {
		t.Errorf("got %d, %d; want 1, 2", va, vb)
	}
}

func TestHost_ExecuteErrorIsResult(t *testing.T) {
	h := NewHost()
	defer h.Close()

	e, _ := h.New()
	_ = h.PushOperand(e, 4)
	_ = h.PushOperand(e, 0)
	_ = h.PushOperation(e, uint32(calc.Div))

	_, err := h.Execute(e)
	if !errors.Is(err, calc.ErrDivisionByZero) {
		t.Fatalf("Execute error = %v, want division by zero", err)
	}
	if code, ok := Code(err); !ok || code != ErrorDivisionByZero {
		t.Errorf("Code = %v, %v", code, ok)
	}
}

func TestHost_InvalidHandle(t *testing.T) {
	h := NewHost()
	defer h.Close()

	const bogus = resource.Handle(42)
	if err := h.PushOperand(bogus, 1); !errors.Is(err, errInvalidHandle) {
		t.Errorf("PushOperand error = %v", err)
	}
	if err := h.PushOperation(bogus, 0); !errors.Is(err, errInvalidHandle) {
		t.Errorf("PushOperation error = %v", err)
	}
	if _, err := h.Execute(bogus); !errors.Is(err, errInvalidHandle) {
		t.Errorf("Execute error = %v", err)
	}
	if err := h.Drop(bogus); !errors.Is(err, errInvalidHandle) {
		t.Errorf("Drop error = %v", err)
	}
}

func TestHost_DropTwice(t *testing.T) {
	h := NewHost()
	defer h.Close()

	e, _ := h.New()
	if err := h.Drop(e); err != nil {
		t.Fatalf("Drop: %v", err)
	}
	if err := h.Drop(e); !errors.Is(err, errInvalidHandle) {
		t.Errorf("second Drop error = %v", err)
	}
	if _, err := h.Execute(e); !errors.Is(err, errInvalidHandle) {
		t.Errorf("Execute after Drop error = %v", err)
	}
}

func TestHost_InvalidOperationTag(t *testing.T) {
	h := NewHost()
	defer h.Close()

	e, _ := h.New()
	err := h.PushOperation(e, calc.NumOperations)

	var rerr *rterrors.Error
	if !errors.As(err, &rerr) || rerr.Kind != rterrors.KindInvalidEnum {
		t.Fatalf("error = %v, want invalid enum", err)
	}
	eng, _ := h.Engine(e)
	if eng.Len() != 0 {
		t.Error("rejected operation was recorded")
	}
}

func TestHost_Limit(t *testing.T) {
	h := NewHost(WithLimit(2))
	defer h.Close()

	a, _ := h.New()
	if _, err := h.New(); err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := h.New(); !errors.Is(err, resource.ErrLimitReached) {
		t.Fatalf("New over limit error = %v", err)
	}

	_ = h.Drop(a)
	if _, err := h.New(); err != nil {
		t.Errorf("New after Drop: %v", err)
	}
}

func TestHost_ResetAndClose(t *testing.T) {
	h := NewHost()
	_, _ = h.New()
	_, _ = h.New()

	h.Reset()
	if h.Len() != 0 {
		t.Errorf("Len after Reset = %d", h.Len())
	}

	if err := h.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := h.New(); !errors.Is(err, resource.ErrClosed) {
		t.Errorf("New after Close error = %v", err)
	}
}

func TestHost_LogsLifecycle(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	h := NewHost(WithLogger(zap.New(core)))
	defer h.Close()

	e, _ := h.New()
	_ = h.Drop(e)

	if n := logs.FilterMessage("engine created").Len(); n != 1 {
		t.Errorf("created logs = %d, want 1", n)
	}
	if n := logs.FilterMessage("engine dropped").Len(); n != 1 {
		t.Errorf("dropped logs = %d, want 1", n)
	}
	entry := logs.FilterMessage("engine created").All()[0]
	if entry.LoggerName != "engine" {
		t.Errorf("logger name = %q", entry.LoggerName)
	}
}

func TestHost_CloseLogsDroppedEngines(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	h := NewHost(WithLogger(zap.New(core)))

	_, _ = h.New()
	_, _ = h.New()
	if err := h.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if n := logs.FilterMessage("engine dropped").Len(); n != 2 {
		t.Errorf("dropped logs = %d, want 2", n)
	}
}
