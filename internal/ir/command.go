package ir

// CommandKind names a script command using its SMT-LIB spelling.
type CommandKind string

const (
	KindDeclareVar CommandKind = "declare-fun"
	KindAssert     CommandKind = "assert"
	KindAssertSoft CommandKind = "assert-soft"
	KindPush       CommandKind = "push"
	KindPop        CommandKind = "pop"
	KindCheckPoint CommandKind = "check-sat"
	KindSetOption  CommandKind = "set-option"
	KindMaximize   CommandKind = "maximize"
	KindMinimize   CommandKind = "minimize"
)

// DefaultGroup is the group id of a weighted assertion without an :id tag.
const DefaultGroup = "I"

// OptPriority is the option key selecting the multi-objective strategy.
const OptPriority = "opt.priority"

// Span locates a command in its source script.
type Span struct {
	Line int // 1-based, 0 when unknown
}

// Pos returns the span itself so that embedding structs satisfy Command.
func (s Span) Pos() Span { return s }

// Command is one typed script command.
//
// The set of implementations is closed: DeclareVar, Assert, AssertSoft, Push,
// Pop, CheckPoint, SetOption, Maximize and Minimize. Consumers use exhaustive
// type switches and treat an unknown type as a programming error.
type Command interface {
	Kind() CommandKind
	Pos() Span
	isCommand()
}

// DeclareVar declares a nullary function symbol (a variable) of the given sort.
type DeclareVar struct {
	Span
	Name string
	Sort Sort
}

// Assert adds a hard constraint.
type Assert struct {
	Span
	Expr Expr
}

// AssertSoft adds a weighted constraint belonging to Group.
type AssertSoft struct {
	Span
	Expr   Expr
	Weight Expr
	Group  string
}

// Push opens N new scopes.
type Push struct {
	Span
	N int
}

// Pop discards the N most recent scopes.
type Pop struct {
	Span
	N int
}

// CheckPoint requests translation of the current assertion state.
type CheckPoint struct {
	Span
}

// SetOption records a solver option.
type SetOption struct {
	Span
	Key   string
	Value string
}

// Maximize adds a maximization objective.
type Maximize struct {
	Span
	Expr Expr
}

// Minimize adds a minimization objective.
type Minimize struct {
	Span
	Expr Expr
}

func (DeclareVar) Kind() CommandKind { return KindDeclareVar }
func (Assert) Kind() CommandKind     { return KindAssert }
func (AssertSoft) Kind() CommandKind { return KindAssertSoft }
func (Push) Kind() CommandKind       { return KindPush }
func (Pop) Kind() CommandKind        { return KindPop }
func (CheckPoint) Kind() CommandKind { return KindCheckPoint }
func (SetOption) Kind() CommandKind  { return KindSetOption }
func (Maximize) Kind() CommandKind   { return KindMaximize }
func (Minimize) Kind() CommandKind   { return KindMinimize }

func (DeclareVar) isCommand() {}
func (Assert) isCommand()     {}
func (AssertSoft) isCommand() {}
func (Push) isCommand()       {}
func (Pop) isCommand()        {}
func (CheckPoint) isCommand() {}
func (SetOption) isCommand()  {}
func (Maximize) isCommand()   {}
func (Minimize) isCommand()   {}
