package binding

import (
	"context"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	calcruntime "github.com/wippyai/calc-runtime"
	"github.com/wippyai/calc-runtime/errors"
	"github.com/wippyai/calc-runtime/resource"
)

// Instantiate builds the engine host module into rt under Namespace.
// Guests instantiated afterwards in the same runtime resolve their engine
// imports against it.
//
// Protocol violations (unknown handle, enum tag out of range, bad return
// area) trap the calling guest with the structured error as the cause.
func (h *Host) Instantiate(ctx context.Context, rt wazero.Runtime) (api.Module, error) {
	builder := rt.NewHostModuleBuilder(Namespace)

	for _, f := range Functions() {
		handler := h.handler(f.Name)
		if handler == nil {
			return nil, errors.Registration(Namespace, f.Name, errors.NotFound(errors.PhaseBind, "handler", f.Name))
		}
		params, results := f.CoreSignature()
		builder.NewFunctionBuilder().
			WithGoModuleFunction(handler, params, results).
			WithParameterNames(f.ParamNames()...).
			Export(f.Name)
	}

	mod, err := builder.Instantiate(ctx)
	if err != nil {
		return nil, errors.Instantiation(Namespace, err)
	}
	Logger().Debug("engine host module instantiated", zap.String("module", Namespace))
	return mod, nil
}

func (h *Host) handler(name string) api.GoModuleFunc {
	switch name {
	case FuncConstructor:
		return h.constructor
	case FuncPushOperand:
		return h.pushOperand
	case FuncPushOperation:
		return h.pushOperation
	case FuncExecute:
		return h.execute
	case FuncDrop:
		return h.drop
	default:
		return nil
	}
}

func (h *Host) constructor(_ context.Context, _ api.Module, stack []uint64) {
	handle, err := h.New()
	if err != nil {
		h.trap(FuncConstructor, err)
	}
	stack[0] = api.EncodeU32(uint32(handle))
}

func (h *Host) pushOperand(_ context.Context, _ api.Module, stack []uint64) {
	self := resource.Handle(api.DecodeU32(stack[0]))
	if err := h.PushOperand(self, api.DecodeU32(stack[1])); err != nil {
		h.trap(FuncPushOperand, err)
	}
}

func (h *Host) pushOperation(_ context.Context, _ api.Module, stack []uint64) {
	self := resource.Handle(api.DecodeU32(stack[0]))
	if err := h.PushOperation(self, api.DecodeU32(stack[1])); err != nil {
		h.trap(FuncPushOperation, err)
	}
}

func (h *Host) execute(_ context.Context, mod api.Module, stack []uint64) {
	self := resource.Handle(api.DecodeU32(stack[0]))
	retptr := api.DecodeU32(stack[1])

	v, err := h.Execute(self)
	if err != nil {
		if _, ok := Code(err); !ok {
			h.trap(FuncExecute, err)
		}
	}

	var mem calcruntime.Memory
	if mod != nil {
		mem = WrapMemory(mod.Memory())
	}
	if mem == nil {
		h.trap(FuncExecute, errors.NotFound(errors.PhaseLower, "memory", "caller memory"))
	}
	if lerr := LowerExecuteResult(mem, retptr, v, err); lerr != nil {
		h.trap(FuncExecute, lerr)
	}
}

func (h *Host) drop(_ context.Context, _ api.Module, stack []uint64) {
	self := resource.Handle(api.DecodeU32(stack[0]))
	if err := h.Drop(self); err != nil {
		h.trap(FuncDrop, err)
	}
}

// trap aborts the current guest call. wazero recovers the panic and returns
// it, wrapped, from the guest export the host was called through.
func (h *Host) trap(fn string, err error) {
	h.log.Warn("trap", zap.String("func", fn), zap.Error(err))
	panic(err)
}
