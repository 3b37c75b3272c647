package engine

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cespio/omtmzn/internal/ir"
)

// BatchSink receives the Batch of every check-point together with the path
// its artifact must be written to.
//
// Implementations must either write the artifact completely or return an
// error and leave nothing at path.
type BatchSink interface {
	Emit(ctx context.Context, path string, batch *Batch) error
}

// BatchSinkFunc adapts a function to BatchSink.
type BatchSinkFunc func(ctx context.Context, path string, batch *Batch) error

// Emit calls f.
func (f BatchSinkFunc) Emit(ctx context.Context, path string, batch *Batch) error {
	return f(ctx, path, batch)
}

// Interpreter replays push/pop/check-sat semantics over a ScopeStack.
//
// CRITICAL: commands are processed strictly in order and every check-point is
// fully emitted before the next command is looked at.
type Interpreter struct {
	stack *ScopeStack
	clock *Clock
	base  string
	sink  BatchSink
}

// InterpreterOption configures an Interpreter.
type InterpreterOption func(*Interpreter)

// WithStack runs the interpreter over a caller-owned stack instead of a
// fresh one.
func WithStack(stack *ScopeStack) InterpreterOption {
	return func(in *Interpreter) {
		in.stack = stack
	}
}

// WithClock numbers check-points from a caller-owned clock.
func WithClock(clock *Clock) InterpreterOption {
	return func(in *Interpreter) {
		in.clock = clock
	}
}

// NewInterpreter creates an interpreter writing artifacts derived from base
// (see OutputPath) to sink.
func NewInterpreter(base string, sink BatchSink, opts ...InterpreterOption) *Interpreter {
	in := &Interpreter{base: base, sink: sink}
	for _, opt := range opts {
		opt(in)
	}
	if in.stack == nil {
		in.stack = NewScopeStack()
	}
	if in.clock == nil {
		in.clock = NewClock()
	}
	return in
}

// Stack returns the scope stack the interpreter mutates.
func (in *Interpreter) Stack() *ScopeStack {
	return in.stack
}

// Run processes cmds in order and returns the paths of the emitted
// artifacts. The first error aborts the run; artifacts of earlier
// check-points stay valid.
func (in *Interpreter) Run(ctx context.Context, cmds []ir.Command) ([]string, error) {
	var paths []string
	for _, cmd := range cmds {
		path, err := in.Step(ctx, cmd)
		if err != nil {
			return paths, err
		}
		if path != "" {
			paths = append(paths, path)
		}
	}
	return paths, nil
}

// Step processes one command. For a check-point it returns the path of the
// emitted artifact.
func (in *Interpreter) Step(ctx context.Context, cmd ir.Command) (string, error) {
	slog.Debug("processing command",
		"command", cmd.Kind(),
		"line", cmd.Pos().Line,
		"depth", in.stack.Depth(),
	)

	switch c := cmd.(type) {
	case ir.Push:
		in.stack.Push(c.N)
	case ir.Pop:
		if err := in.stack.Pop(c.N); err != nil {
			return "", ir.AtCheckPoint(ir.Locate(err, c), in.clock.Current()+1)
		}
	case ir.CheckPoint:
		return in.checkPoint(ctx, c)
	case ir.SetOption:
		if c.Key == ir.OptPriority {
			if _, err := ParsePriorityMode(c.Value); err != nil {
				return "", ir.AtCheckPoint(ir.NewError(ir.ErrCodeUnsupportedOption, c, "%v", err), in.clock.Current()+1)
			}
		}
		in.stack.Append(c)
	case ir.DeclareVar, ir.Assert, ir.AssertSoft, ir.Maximize, ir.Minimize:
		in.stack.Append(c)
	default:
		panic(fmt.Sprintf("engine: unhandled command type %T", cmd))
	}
	return "", nil
}

func (in *Interpreter) checkPoint(ctx context.Context, c ir.CheckPoint) (string, error) {
	index := in.clock.Next()

	batch, err := Classify(index, in.stack.Flatten())
	if err != nil {
		return "", ir.AtCheckPoint(err, index)
	}

	path := OutputPath(in.base, index)
	if err := in.sink.Emit(ctx, path, batch); err != nil {
		slog.Error("check-point emission failed",
			"check_point", index,
			"line", c.Line,
			"error", err,
		)
		return "", ir.AtCheckPoint(ir.Locate(err, c), index)
	}

	slog.Info("check-point emitted",
		"check_point", index,
		"path", path,
		"vars", len(batch.Vars),
		"hard", len(batch.Hard),
		"soft", len(batch.Soft),
		"objectives", len(batch.Objectives),
	)
	return path, nil
}

// OutputPath inserts "_<index>" before the extension of base:
// "out.mzn" becomes "out_1.mzn", "out" becomes "out_1".
func OutputPath(base string, index int) string {
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext) + "_" + strconv.Itoa(index) + ext
}
