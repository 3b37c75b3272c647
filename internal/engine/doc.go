// Package engine replays an OMT command stream over a stack of assertion
// scopes.
//
// ARCHITECTURE:
//
// The Interpreter consumes commands strictly in order:
//   - push/pop grow and shrink the caller-owned ScopeStack
//   - check-sat flattens the stack bottom to top into a Batch and hands it,
//     with its numbered output path, to a BatchSink
//   - every other command is appended to the top scope
//
// A check-point never mutates the stack: assertions stay live for later
// check-points until they are popped. Batches are built from scratch at every
// check-point, so nothing computed for one check-point leaks into the next.
//
// The interpreter is single-threaded and deterministic. The same command
// stream always produces the same batches, in the same order, for the same
// output paths.
package engine
