// Package script stores engine push sequences as YAML and decodes them from
// command-line tokens.
//
//	events:
//	  - operand: 10
//	  - operand: 20
//	  - op: add
//
// Each event carries exactly one of operand or op. Decoding is all or
// nothing: a script with one bad event pushes nothing.
package script
