package engine

import (
	"fmt"

	"github.com/cespio/omtmzn/internal/ir"
)

// PriorityMode selects how several objectives relate to each other.
type PriorityMode string

const (
	// PriorityBox optimizes every objective independently (default).
	PriorityBox PriorityMode = "box"

	// PriorityLex optimizes objectives strictly in declaration order.
	PriorityLex PriorityMode = "lex"
)

// ParsePriorityMode validates an opt.priority value.
func ParsePriorityMode(v string) (PriorityMode, error) {
	switch PriorityMode(v) {
	case PriorityBox, PriorityLex:
		return PriorityMode(v), nil
	default:
		return "", fmt.Errorf("invalid opt.priority %q: must be box or lex", v)
	}
}

// Sense is the direction of an objective.
type Sense int

const (
	Maximize Sense = iota
	Minimize
)

func (s Sense) String() string {
	if s == Maximize {
		return "maximize"
	}
	return "minimize"
}

// Variable is a declared ordinary variable.
type Variable struct {
	Name string
	Sort ir.Sort
	Line int
}

// SoftAssertion is a weighted assertion of a Batch.
type SoftAssertion struct {
	Expr   ir.Expr
	Weight ir.Expr
	Group  string
	Line   int
}

// Objective is a maximize or minimize directive.
type Objective struct {
	Sense Sense
	Expr  ir.Expr
	Line  int
}

// Batch is the flattened view of the assertion stack at one check-point.
//
// Vars keeps declaration order so that output is deterministic; names are
// unique. Hard, Soft and Objectives keep script order.
type Batch struct {
	Index      int
	Vars       []Variable
	Hard       []ir.Expr
	Soft       []SoftAssertion
	Objectives []Objective
	Priority   PriorityMode

	byName map[string]int
}

// NewBatch creates an empty batch for check-point index.
func NewBatch(index int) *Batch {
	return &Batch{
		Index:    index,
		Priority: PriorityBox,
		byName:   make(map[string]int),
	}
}

// Lookup returns the sort of a declared variable.
func (b *Batch) Lookup(name string) (ir.Sort, bool) {
	i, ok := b.byName[name]
	if !ok {
		return "", false
	}
	return b.Vars[i].Sort, true
}

// Declare adds a variable. Re-declaring a name with the same sort is a no-op;
// with a different sort it is a NAME_COLLISION error.
func (b *Batch) Declare(cmd ir.DeclareVar) error {
	if prev, ok := b.Lookup(cmd.Name); ok {
		if prev == cmd.Sort {
			return nil
		}
		return ir.NewError(ir.ErrCodeNameCollision, cmd,
			"variable %q redeclared as %s (was %s)", cmd.Name, cmd.Sort, prev)
	}
	b.byName[cmd.Name] = len(b.Vars)
	b.Vars = append(b.Vars, Variable{Name: cmd.Name, Sort: cmd.Sort, Line: cmd.Line})
	return nil
}

// Remove drops a declared variable. It reports whether the name was present.
// The compiler uses it to adopt synthesized group declarations.
func (b *Batch) Remove(name string) bool {
	i, ok := b.byName[name]
	if !ok {
		return false
	}
	b.Vars = append(b.Vars[:i:i], b.Vars[i+1:]...)
	delete(b.byName, name)
	for j := i; j < len(b.Vars); j++ {
		b.byName[b.Vars[j].Name] = j
	}
	return true
}

// Classify builds the Batch of check-point index from a flattened command
// sequence.
func Classify(index int, cmds []ir.Command) (*Batch, error) {
	b := NewBatch(index)
	for _, cmd := range cmds {
		switch c := cmd.(type) {
		case ir.DeclareVar:
			if err := b.Declare(c); err != nil {
				return nil, err
			}
		case ir.Assert:
			b.Hard = append(b.Hard, c.Expr)
		case ir.AssertSoft:
			b.Soft = append(b.Soft, SoftAssertion{Expr: c.Expr, Weight: c.Weight, Group: c.Group, Line: c.Line})
		case ir.SetOption:
			if c.Key != ir.OptPriority {
				continue
			}
			mode, err := ParsePriorityMode(c.Value)
			if err != nil {
				return nil, ir.NewError(ir.ErrCodeUnsupportedOption, c, "%v", err)
			}
			b.Priority = mode // last one wins
		case ir.Maximize:
			b.Objectives = append(b.Objectives, Objective{Sense: Maximize, Expr: c.Expr, Line: c.Line})
		case ir.Minimize:
			b.Objectives = append(b.Objectives, Objective{Sense: Minimize, Expr: c.Expr, Line: c.Line})
		case ir.Push, ir.Pop, ir.CheckPoint:
			// control commands never reach a scope
		default:
			panic(fmt.Sprintf("engine: unhandled command type %T", cmd))
		}
	}
	return b, nil
}
