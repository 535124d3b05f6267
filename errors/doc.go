// Package errors provides structured error types for calc-runtime.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// An Error can additionally name the operation tag, the position in the engine's event
// log and the offending value.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseExecute, errors.KindDivisionByZero).
//		Op("div").
//		Index(4).
//		Detail("divisor is zero").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.InvalidHandle(errors.PhaseHandle, h)
//	err := errors.InvalidEnum(errors.PhaseLift, tag, "operation")
//
// Matching with errors.Is compares Phase and Kind only, so a sentinel built without
// detail matches every error of the same category.
package errors
