// Package ir holds the vocabulary shared by every stage of the translator:
// typed script commands, SMT-LIB terms, sorts and the translation error kinds.
//
// ir imports nothing internal. The parser produces ir values, the engine
// replays them, and the compiler and emitter consume them.
//
// Key design constraints:
//   - Commands are a closed set; consumers switch on the concrete type
//   - Commands and terms are immutable once produced
//   - Every command carries the script line it came from
package ir
