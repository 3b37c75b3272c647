package compiler

import (
	"log/slog"

	"github.com/cespio/omtmzn/internal/engine"
	"github.com/cespio/omtmzn/internal/ir"
	"github.com/cespio/omtmzn/internal/mzn"
)

// Combiner folds hard assertions into one formula.
type Combiner func([]ir.Expr) ir.Expr

// Options configures Compile.
type Options struct {
	// MergeAssertions emits all hard assertions as one conjunction.
	MergeAssertions bool

	// Combiner builds the merged conjunction. Defaults to ir.And.
	Combiner Combiner

	// SoftIDType is the sort of soft group aggregates. Defaults to Int.
	SoftIDType ir.Sort
}

// Compile lowers a batch to a MiniZinc model.
//
// Compile takes ownership of batch: declarations adopted as soft group
// aggregates are removed from batch.Vars.
func Compile(batch *engine.Batch, opts Options) (*mzn.Model, error) {
	if opts.Combiner == nil {
		opts.Combiner = ir.And
	}
	if opts.SoftIDType == "" {
		opts.SoftIDType = ir.SortInt
	}

	ser := mzn.NewSerializer(batch.Lookup)

	soft, names, err := NewSoftEncoder(batch, ser, opts.SoftIDType).Encode()
	if err != nil {
		return nil, err
	}

	m := &mzn.Model{SoftVars: soft.Decls, Soft: soft.Constraints}
	for _, v := range batch.Vars {
		m.Vars = append(m.Vars, mzn.Var(mzn.Domain(v.Sort), mzn.Ident(v.Name)))
	}

	if opts.MergeAssertions {
		if len(batch.Hard) > 0 {
			body, err := ser.SerializeConjunction(batch.Hard, opts.Combiner)
			if err != nil {
				return nil, err
			}
			m.Hard = []string{body}
		}
	} else {
		for _, h := range batch.Hard {
			body, err := ser.Serialize(h)
			if err != nil {
				return nil, err
			}
			m.Hard = append(m.Hard, body)
		}
	}

	plan, err := NewObjectivePlanner(batch, ser, names, soft.Aggregates).Plan()
	if err != nil {
		return nil, err
	}
	m.Annotations = plan.Annotations
	m.ObjectiveVars = plan.Decls
	m.ObjectiveConstraints = plan.Constraints
	m.Solve = plan.Solve

	slog.Debug("compiled batch",
		"check_point", batch.Index,
		"vars", len(m.Vars),
		"hard", len(batch.Hard),
		"soft", len(batch.Soft),
		"objectives", len(batch.Objectives),
		"priority", string(batch.Priority))
	return m, nil
}
