// Package calcruntime hosts a stack calculator engine for WebAssembly guests.
//
// The engine is an ordinary Go value (package calc). The rest of the module
// exposes it across the component boundary as the WIT resource
// calc:engine/types.engine, backed by wazero.
//
// # Architecture Overview
//
//	calcruntime/         Root package with the Memory interface used by host functions
//	├── calc/            Engine: unified event log, RPN evaluation, error sentinels
//	├── resource/        Handle table mapping guest u32 handles to engines
//	├── binding/         WIT description, canonical ABI lowering, wazero host module
//	├── runtime/         Load and run guest core modules that import the engine
//	├── script/          YAML push sequences and token decoding
//	├── config/          Environment configuration and logger construction
//	├── errors/          Structured error types
//	├── internal/guest/  Core wasm emitter for the built-in guest programs
//	├── cmd/calc/        CLI and interactive calculator
//	└── examples/basic/  Runnable walk-through of the three layers
//
// # Quick Start
//
// Use the engine directly:
//
//	e := calc.New()
//	e.PushOperand(10)
//	e.PushOperand(20)
//	e.PushOperation(calc.Add)
//	v, err := e.Execute() // 30
//
// Or run a guest that imports it:
//
//	rt, err := runtime.New(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rt.Close(ctx)
//
//	mod, err := rt.LoadWASM(ctx, wasmBytes)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	inst, err := mod.Instantiate(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer inst.Close(ctx)
//
//	results, err := inst.Call(ctx, "run")
//
// # Thread Safety
//
// Engines serialize their own operations. Runtime and Module are safe for
// concurrent use. Instance is NOT thread-safe and should be used by a single
// goroutine, or access must be synchronized.
package calcruntime
