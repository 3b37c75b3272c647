package engine

import (
	"github.com/cespio/omtmzn/internal/ir"
)

// Scope is one level of the assertion stack. It never holds push, pop or
// check-sat commands; those are consumed by the Interpreter.
type Scope []ir.Command

// ScopeStack is the nested assertion stack of one script.
//
// INVARIANT: Depth() >= 1. The base scope is created by NewScopeStack and
// can never be popped.
//
// A ScopeStack is owned by the caller and passed to the Interpreter
// explicitly; nothing resets it implicitly between runs.
type ScopeStack struct {
	scopes []Scope
}

// NewScopeStack creates a stack holding a single empty base scope.
func NewScopeStack() *ScopeStack {
	return &ScopeStack{scopes: []Scope{nil}}
}

// Depth returns the number of scopes, base scope included.
func (s *ScopeStack) Depth() int {
	return len(s.scopes)
}

// Push opens n new empty scopes on top of the stack.
func (s *ScopeStack) Push(n int) {
	if n <= 0 {
		return
	}
	s.scopes = append(s.scopes, make([]Scope, n)...)
}

// Pop discards the n topmost scopes.
//
// Returns a SCOPE_UNDERFLOW error when fewer than n scopes sit above the base
// scope. The stack is left untouched in that case: a pop never applies
// partially.
func (s *ScopeStack) Pop(n int) error {
	if n > len(s.scopes)-1 {
		return ir.NewError(ir.ErrCodeScopeUnderflow, nil,
			"cannot pop %d scope(s): only %d pushed", n, len(s.scopes)-1)
	}
	for i := len(s.scopes) - n; i < len(s.scopes); i++ {
		s.scopes[i] = nil // release commands of discarded scopes
	}
	s.scopes = s.scopes[:len(s.scopes)-n]
	return nil
}

// Append adds cmd to the topmost scope.
func (s *ScopeStack) Append(cmd ir.Command) {
	top := len(s.scopes) - 1
	s.scopes[top] = append(s.scopes[top], cmd)
}

// Flatten returns every live command, bottom scope first, in original order.
// The result is a fresh slice; the stack is not modified.
func (s *ScopeStack) Flatten() []ir.Command {
	total := 0
	for _, sc := range s.scopes {
		total += len(sc)
	}
	out := make([]ir.Command, 0, total)
	for _, sc := range s.scopes {
		out = append(out, sc...)
	}
	return out
}
