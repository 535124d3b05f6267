package runtime

import (
	"context"
	"io"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"go.uber.org/zap"

	"github.com/wippyai/calc-runtime/binding"
	"github.com/wippyai/calc-runtime/errors"
)

// Config holds configuration for runtime creation.
type Config struct {
	// Stdout and Stderr receive guest output when WASI is enabled.
	Stdout io.Writer
	Stderr io.Writer
	Logger *zap.Logger

	// MemoryLimitPages caps guest linear memory in 64KiB pages.
	// 0 means the wazero default (65536 pages = 4GB).
	MemoryLimitPages uint32

	// MaxEngines caps the number of live engines across all instances.
	// 0 means unlimited.
	MaxEngines int

	// WASI instantiates wasi_snapshot_preview1 so that guests built for
	// wasip1 can resolve their system imports.
	WASI bool
}

// Option configures a Runtime.
type Option func(*Config)

func WithMemoryLimitPages(pages uint32) Option {
	return func(c *Config) { c.MemoryLimitPages = pages }
}

func WithMaxEngines(n int) Option {
	return func(c *Config) { c.MaxEngines = n }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

// WithWASI enables wasi_snapshot_preview1 with guest stdout and stderr
// routed to the given writers. Nil writers discard output.
func WithWASI(stdout, stderr io.Writer) Option {
	return func(c *Config) {
		c.WASI = true
		c.Stdout = stdout
		c.Stderr = stderr
	}
}

// Runtime loads and runs guest modules that import the engine resource.
// All guests of a runtime share one engine host.
type Runtime struct {
	runtime wazero.Runtime
	host    *binding.Host
	log     *zap.Logger
	cfg     Config
	mu      sync.Mutex
	closed  bool
}

// New creates a runtime with the engine host module and, when configured,
// WASI already instantiated.
func New(ctx context.Context, opts ...Option) (*Runtime, error) {
	var cfg Config
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = Logger()
	}

	runtimeCfg := wazero.NewRuntimeConfig()
	if cfg.MemoryLimitPages > 0 {
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
	}
	rt := wazero.NewRuntimeWithConfig(ctx, runtimeCfg)

	host := binding.NewHost(binding.WithLimit(cfg.MaxEngines), binding.WithLogger(cfg.Logger))
	if _, err := host.Instantiate(ctx, rt); err != nil {
		_ = host.Close()
		_ = rt.Close(ctx)
		return nil, err
	}

	if cfg.WASI {
		if _, err := wasi_snapshot_preview1.Instantiate(ctx, rt); err != nil {
			_ = host.Close()
			_ = rt.Close(ctx)
			return nil, errors.Instantiation(wasi_snapshot_preview1.ModuleName, err)
		}
	}

	cfg.Logger.Debug("runtime created",
		zap.Uint32("memory_limit_pages", cfg.MemoryLimitPages),
		zap.Int("max_engines", cfg.MaxEngines),
		zap.Bool("wasi", cfg.WASI))

	return &Runtime{
		runtime: rt,
		host:    host,
		log:     cfg.Logger,
		cfg:     cfg,
	}, nil
}

// Close releases all runtime resources, including every live engine and
// every instance that was not closed.
func (r *Runtime) Close(ctx context.Context) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.mu.Unlock()

	herr := r.host.Close()
	if err := r.runtime.Close(ctx); err != nil {
		return err
	}
	return herr
}

// Engines returns the number of live engines owned by guests of r.
func (r *Runtime) Engines() int {
	return r.host.Len()
}

// Host returns the engine host shared by all guests.
func (r *Runtime) Host() *binding.Host {
	return r.host
}

// LoadWASM compiles a core module. Every function the module imports must
// be provided by the engine host, or by WASI when it is enabled.
func (r *Runtime) LoadWASM(ctx context.Context, wasm []byte) (*Module, error) {
	if isComponent(wasm) {
		return nil, errors.InvalidInput(errors.PhaseLoad, "component binaries are not supported; load the core module")
	}

	r.mu.Lock()
	closed := r.closed
	r.mu.Unlock()
	if closed {
		return nil, errors.InvalidInput(errors.PhaseLoad, "runtime is closed")
	}

	compiled, err := r.runtime.CompileModule(ctx, wasm)
	if err != nil {
		return nil, errors.Load("compile module", err)
	}

	if err := r.checkImports(compiled.ImportedFunctions()); err != nil {
		_ = compiled.Close(ctx)
		return nil, err
	}

	r.log.Debug("module loaded",
		zap.Int("size", len(wasm)),
		zap.Int("imports", len(compiled.ImportedFunctions())),
		zap.Int("exports", len(compiled.ExportedFunctions())))

	return &Module{runtime: r, compiled: compiled}, nil
}

func (r *Runtime) checkImports(defs []api.FunctionDefinition) error {
	known := make(map[string]bool)
	for _, f := range binding.Functions() {
		known[f.Name] = true
	}

	for _, def := range defs {
		module, name, _ := def.Import()
		switch {
		case module == binding.Namespace:
			if !known[name] {
				return errors.NotFound(errors.PhaseLoad, "engine function", name)
			}
		case module == wasi_snapshot_preview1.ModuleName && r.cfg.WASI:
		default:
			return errors.NotFound(errors.PhaseLoad, "import module", module+"#"+name)
		}
	}
	return nil
}

// isComponent reports whether wasm carries the component layer in its
// preamble rather than the core module version.
func isComponent(wasm []byte) bool {
	if len(wasm) < 8 {
		return false
	}
	return wasm[0] == 0x00 && wasm[1] == 0x61 && wasm[2] == 0x73 && wasm[3] == 0x6D &&
		wasm[6] == 0x01 && wasm[7] == 0x00
}
