// Package ir defines the typed intermediate representation built by the
// glsl front end.
//
// # Structure
//
// A Module owns arenas of:
//   - Types: deduplicated through a TypeRegistry
//   - Constants and GlobalVariables
//   - Functions: each with its own expression arena and statement body
//   - EntryPoints: synthesized wrappers around user entry functions
//
// # Expressions and emission
//
// Expressions live in a per-function arena and are referenced by
// ExpressionHandle. An expression is only evaluated once it is covered by a
// StmtEmit range. Variable references, function arguments, constants and
// literals never need emitting; call results are produced by StmtCall.
//
// An expression may only reference handles allocated before it. Validate
// checks this ordering along with the other handle invariants.
package ir
