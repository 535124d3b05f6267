package runtime

import (
	"context"
	"sort"

	"github.com/tetratelabs/wazero"

	"github.com/wippyai/calc-runtime/errors"
)

// Module is a compiled guest. Safe for concurrent use; each Instantiate
// creates an independent instance.
type Module struct {
	runtime  *Runtime
	compiled wazero.CompiledModule
}

// Export describes an exported guest function by its core signature.
type Export struct {
	Name    string
	Params  int
	Results int
}

// Exports returns the exported functions sorted by name.
func (m *Module) Exports() []Export {
	defs := m.compiled.ExportedFunctions()
	exports := make([]Export, 0, len(defs))
	for name, def := range defs {
		exports = append(exports, Export{
			Name:    name,
			Params:  len(def.ParamTypes()),
			Results: len(def.ResultTypes()),
		})
	}
	sort.Slice(exports, func(i, j int) bool { return exports[i].Name < exports[j].Name })
	return exports
}

// Instantiate creates an anonymous instance of the guest. The start
// function, if any, runs during instantiation.
func (m *Module) Instantiate(ctx context.Context) (*Instance, error) {
	cfg := wazero.NewModuleConfig().WithName("")
	if m.runtime.cfg.WASI {
		if m.runtime.cfg.Stdout != nil {
			cfg = cfg.WithStdout(m.runtime.cfg.Stdout)
		}
		if m.runtime.cfg.Stderr != nil {
			cfg = cfg.WithStderr(m.runtime.cfg.Stderr)
		}
	}

	mod, err := m.runtime.runtime.InstantiateModule(ctx, m.compiled, cfg)
	if err != nil {
		return nil, errors.Instantiation("guest", err)
	}
	return &Instance{module: m, mod: mod}, nil
}

// Close releases the compiled code. Existing instances keep running.
func (m *Module) Close(ctx context.Context) error {
	return m.compiled.Close(ctx)
}
