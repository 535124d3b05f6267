// Package runtime loads and runs WebAssembly guests that import the calc
// engine resource.
//
// # Quick Start
//
//	ctx := context.Background()
//	rt, err := runtime.New(ctx, runtime.WithMaxEngines(64))
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
// # Imports
//
// LoadWASM fails fast when a guest imports anything the runtime cannot
// provide. Guests may import the five engine functions from
// calc:engine/types@0.1.0 and, with WithWASI, wasi_snapshot_preview1.
//
// # Engines
//
// All guests of a runtime share one engine host. Engines live until the
// guest drops them or the runtime closes; Engines reports how many are live.
// WithMaxEngines bounds that number, and a constructor call past the bound
// traps the guest.
//
// # Thread Safety
//
// Runtime and Module are safe for concurrent use. Instance is NOT
// thread-safe. Each goroutine should have its own Instance, or access must
// be synchronized externally.
//
// # Memory
//
// WASM linear memory can only grow, never shrink. WithMemoryLimitPages caps
// it per instance; guests that declare more fail to load.
package runtime
