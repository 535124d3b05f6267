// Package guest assembles core WebAssembly modules that import the calc
// engine resource. The modules are what a guest toolchain would emit for a
// component calling calc:engine/types, reduced to the core functions the
// host exports.
//
// It also carries a small encoder (Module) for the instruction subset those
// guests need: constants, locals, calls, i32 loads and if/else.
package guest
