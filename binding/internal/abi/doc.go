// Package abi provides the Canonical ABI rules the engine binding relies on:
// size and alignment of WIT types in linear memory, and flattened value counts
// that decide when a function returns through a return pointer.
//
// Layout rules:
//   - Primitives: size equals alignment (u8=1, u32=4, u64=8, etc.)
//   - Handles (own/borrow): a u32 index
//   - Enums: smallest unsigned integer that holds the case count
//   - Results: discriminant byte followed by the larger payload, aligned
//
// This package is internal to the binding.
package abi
