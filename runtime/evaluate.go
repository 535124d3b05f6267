package runtime

import (
	"context"

	"github.com/wippyai/calc-runtime/binding"
	"github.com/wippyai/calc-runtime/calc"
	"github.com/wippyai/calc-runtime/internal/guest"
)

// Evaluate pushes events onto a fresh engine from inside a generated guest
// and returns what execute produced, lifted from the guest's memory. An
// evaluation failure is returned as the calc sentinel.
func (r *Runtime) Evaluate(ctx context.Context, events []calc.Event) (uint32, error) {
	mod, err := r.LoadWASM(ctx, guest.Program(events))
	if err != nil {
		return 0, err
	}
	defer mod.Close(ctx)

	inst, err := mod.Instantiate(ctx)
	if err != nil {
		return 0, err
	}
	defer inst.Close(ctx)

	if _, err := inst.Call(ctx, "run"); err != nil {
		return 0, err
	}

	out, err := binding.LiftExecuteResult(inst.Memory(), guest.RetArea)
	if err != nil {
		return 0, err
	}
	return out.Value, out.Err
}
