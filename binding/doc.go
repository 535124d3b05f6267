// Package binding exposes calc engines to WebAssembly guests as the
// component-model resource calc:engine/types@0.1.0#engine.
//
// A Host owns a handle table of engines. Instantiate registers the host
// module in a wazero runtime so that guests importing
//
//	[constructor]engine          () -> i32
//	[method]engine.push-operand  (self i32, operand i32)
//	[method]engine.push-operation(self i32, operation i32)
//	[method]engine.execute       (self i32, retptr i32)
//	[resource-drop]engine        (self i32)
//
// resolve against it. execute writes result<u32, error> into the caller's
// linear memory at retptr:
//
//	+0  u8   discriminant (0 = ok, 1 = err)
//	+4  u32  value, or u8 error code
//
// Engine evaluation failures are ordinary results. Protocol violations
// (unknown handle, operation tag out of range, unusable return area) trap
// the guest.
package binding
