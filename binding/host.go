package binding

import (
	stderrors "errors"

	"go.uber.org/zap"

	calcruntime "github.com/wippyai/calc-runtime"
	"github.com/wippyai/calc-runtime/calc"
	"github.com/wippyai/calc-runtime/errors"
	"github.com/wippyai/calc-runtime/resource"
)

// Host owns the engines created by guests and implements the engine
// resource at the handle level. Safe for concurrent use.
type Host struct {
	engines     *resource.Table[*calc.Engine]
	log         *zap.Logger
	unsubscribe func()
}

// Option configures a Host.
type Option func(*hostOptions)

type hostOptions struct {
	log   *zap.Logger
	limit int
}

// WithLimit caps the number of live engines. Zero means unlimited.
func WithLimit(n int) Option {
	return func(o *hostOptions) {
		o.limit = n
	}
}

// WithLogger overrides the package logger for this host.
func WithLogger(l *zap.Logger) Option {
	return func(o *hostOptions) {
		o.log = l
	}
}

// NewHost creates a host with an empty engine table.
func NewHost(opts ...Option) *Host {
	o := hostOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = Logger()
	}

	h := &Host{
		engines: resource.NewTable[*calc.Engine](resource.WithLimit(o.limit)),
		log:     o.log.Named("engine"),
	}
	h.unsubscribe = h.engines.Subscribe(resource.ObserverFunc(func(ev resource.Event) {
		h.log.Debug("engine "+ev.Type.String(), zap.Uint32("handle", uint32(ev.Handle)))
	}))
	return h
}

// New creates an engine and returns its handle.
func (h *Host) New() (resource.Handle, error) {
	handle, err := h.engines.Insert(calc.New())
	if err != nil {
		return 0, errors.Wrap(errors.PhaseHandle, errors.KindInvalidInput, err, "create engine")
	}
	return handle, nil
}

// PushOperand appends an operand to the engine behind handle.
func (h *Host) PushOperand(handle resource.Handle, v uint32) error {
	e, err := h.borrow(handle)
	if err != nil {
		return err
	}
	defer h.engines.ReturnBorrow(handle)

	e.PushOperand(v)
	return nil
}

// PushOperation decodes the lowered enum tag and appends it to the engine.
func (h *Host) PushOperation(handle resource.Handle, tag uint32) error {
	op, err := calc.OperationFromOrdinal(tag)
	if err != nil {
		return err
	}

	e, err := h.borrow(handle)
	if err != nil {
		return err
	}
	defer h.engines.ReturnBorrow(handle)

	e.PushOperation(op)
	return nil
}

// Execute evaluates the engine behind handle. Evaluation failures are
// returned as the calc sentinels; an invalid handle is a protocol error.
func (h *Host) Execute(handle resource.Handle) (uint32, error) {
	e, err := h.borrow(handle)
	if err != nil {
		return 0, err
	}
	defer h.engines.ReturnBorrow(handle)

	v, err := e.Execute()
	if err != nil {
		h.log.Debug("execute failed", zap.Uint32("handle", uint32(handle)), zap.Error(err))
		return 0, err
	}
	return v, nil
}

// Drop releases the engine behind handle.
func (h *Host) Drop(handle resource.Handle) error {
	if _, err := h.engines.Remove(handle); err != nil {
		if stderrors.Is(err, resource.ErrOutstandingBorrow) {
			return errors.Wrap(errors.PhaseHandle, errors.KindInvalidHandle, err, "drop borrowed engine")
		}
		return errors.InvalidHandle(errors.PhaseHandle, uint32(handle))
	}
	return nil
}

// Engine returns the engine behind handle.
func (h *Host) Engine(handle resource.Handle) (*calc.Engine, bool) {
	return h.engines.Get(handle)
}

// Len returns the number of live engines.
func (h *Host) Len() int {
	return h.engines.Len()
}

// Reset drops every engine that is not in the middle of a call.
func (h *Host) Reset() {
	h.engines.Clear()
}

// Close drops all engines and rejects further constructor calls.
func (h *Host) Close() error {
	err := h.engines.Close()
	h.unsubscribe()
	return err
}

func (h *Host) borrow(handle resource.Handle) (*calc.Engine, error) {
	e, ok := h.engines.Borrow(handle)
	if !ok {
		return nil, errors.InvalidHandle(errors.PhaseHandle, uint32(handle))
	}
	return e, nil
}

// LowerExecuteResult writes result<u32, error> for (v, err) into the return
// area at ptr. err must be nil or an engine evaluation error.
func LowerExecuteResult(mem calcruntime.Memory, ptr uint32, v uint32, err error) error {
	if mem == nil {
		return errors.NotFound(errors.PhaseLower, "memory", "memory")
	}
	layout := ResultLayout()
	if ptr%layout.Align != 0 {
		return errors.New(errors.PhaseLower, errors.KindOutOfBounds).
			Value(ptr).
			Detail("return area %d not aligned to %d", ptr, layout.Align).
			Build()
	}
	if s, ok := mem.(calcruntime.MemorySizer); ok {
		if uint64(ptr)+uint64(layout.Size) > uint64(s.Size()) {
			return errors.OutOfBounds(errors.PhaseLower, ptr, layout.Size)
		}
	}

	if err == nil {
		if werr := mem.WriteU8(ptr, 0); werr != nil {
			return werr
		}
		return mem.WriteU32(ptr+layout.PayloadOffset, v)
	}

	code, ok := Code(err)
	if !ok {
		return errors.Wrap(errors.PhaseLower, errors.KindInvalidData, err, "execute error has no wire code")
	}
	if werr := mem.WriteU8(ptr, 1); werr != nil {
		return werr
	}
	return mem.WriteU8(ptr+layout.PayloadOffset, uint8(code))
}

// Outcome is a lifted execute result: either a value or an engine error.
type Outcome struct {
	Err   error
	Value uint32
}

// LiftExecuteResult reads result<u32, error> from the return area at ptr.
// Outcome.Err is the calc sentinel for the stored code.
func LiftExecuteResult(mem calcruntime.Memory, ptr uint32) (Outcome, error) {
	if mem == nil {
		return Outcome{}, errors.NotFound(errors.PhaseLift, "memory", "memory")
	}
	layout := ResultLayout()
	disc, err := mem.ReadU8(ptr)
	if err != nil {
		return Outcome{}, err
	}
	switch disc {
	case 0:
		v, err := mem.ReadU32(ptr + layout.PayloadOffset)
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{Value: v}, nil
	case 1:
		c, err := mem.ReadU8(ptr + layout.PayloadOffset)
		if err != nil {
			return Outcome{}, err
		}
		code := ErrorCode(c)
		if code.Err() == nil {
			return Outcome{}, errors.InvalidEnum(errors.PhaseLift, c, "error")
		}
		return Outcome{Err: code.Err()}, nil
	default:
		return Outcome{}, errors.InvalidEnum(errors.PhaseLift, disc, "result")
	}
}
