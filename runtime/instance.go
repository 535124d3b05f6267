package runtime

import (
	"context"

	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	calcruntime "github.com/wippyai/calc-runtime"
	"github.com/wippyai/calc-runtime/binding"
	"github.com/wippyai/calc-runtime/errors"
)

// Instance is a running guest. It is not safe for concurrent use.
type Instance struct {
	module *Module
	mod    api.Module
}

// Call invokes an exported function with core values. i32 parameters are
// passed as api.EncodeU32 values; results come back the same way.
//
// A trap inside the guest, including one raised by the engine host for a
// protocol violation, is returned as a call error wrapping the cause.
func (i *Instance) Call(ctx context.Context, name string, params ...uint64) ([]uint64, error) {
	fn := i.mod.ExportedFunction(name)
	if fn == nil {
		return nil, errors.NotFound(errors.PhaseCall, "export", name)
	}
	if want := len(fn.Definition().ParamTypes()); want != len(params) {
		return nil, errors.New(errors.PhaseCall, errors.KindInvalidInput).
			Op(name).
			Value(len(params)).
			Detail("expected %d params, got %d", want, len(params)).
			Build()
	}

	results, err := fn.Call(ctx, params...)
	if err != nil {
		i.module.runtime.log.Debug("guest trapped", zap.String("export", name), zap.Error(err))
		return nil, errors.New(errors.PhaseCall, errors.KindTrap).
			Op(name).
			Cause(err).
			Build()
	}
	return results, nil
}

// Memory returns the guest's exported linear memory, or nil.
func (i *Instance) Memory() calcruntime.Memory {
	return binding.WrapMemory(i.mod.Memory())
}

// Close releases the instance. Engines the guest did not drop stay alive
// until the runtime closes.
func (i *Instance) Close(ctx context.Context) error {
	return i.mod.Close(ctx)
}
