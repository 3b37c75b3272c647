package compiler

import (
	"strconv"
	"strings"

	"github.com/cespio/omtmzn/internal/engine"
	"github.com/cespio/omtmzn/internal/ir"
	"github.com/cespio/omtmzn/internal/mzn"
)

// BoxAnnotation declares the box search annotation. It is not part of the
// MiniZinc standard library.
const BoxAnnotation = "annotation box(array[int] of ann: goals);"

// kind is the inferred MiniZinc type of an objective expression.
type kind int

const (
	kindBool kind = iota
	kindInt
	kindFloat
)

// ObjectivePlan is the objective part of a model.
type ObjectivePlan struct {
	Annotations []string
	Decls       []mzn.Decl
	Constraints []string
	Solve       string
}

// ObjectivePlanner chooses the solve item for a batch's objectives under its
// priority mode.
type ObjectivePlanner struct {
	batch      *engine.Batch
	ser        *mzn.Serializer
	names      map[string]bool
	aggregates map[string]ir.Sort
}

// NewObjectivePlanner creates a planner. names holds every identifier already
// declared by the model; helper variables must not collide with them.
// aggregates holds the sorts of soft group aggregates, which are no longer in
// batch.Vars.
func NewObjectivePlanner(batch *engine.Batch, ser *mzn.Serializer, names map[string]bool, aggregates map[string]ir.Sort) *ObjectivePlanner {
	return &ObjectivePlanner{batch: batch, ser: ser, names: names, aggregates: aggregates}
}

// objective is a serialized objective.
type objective struct {
	engine.Objective
	text string
	kind kind
}

// Plan produces the solve item and any helpers it needs.
func (p *ObjectivePlanner) Plan() (*ObjectivePlan, error) {
	objs := make([]objective, 0, len(p.batch.Objectives))
	for _, o := range p.batch.Objectives {
		text, err := p.ser.Serialize(o.Expr)
		if err != nil {
			return nil, ir.Locate(err, objectiveCommand(o))
		}
		k := p.kindOf(o.Expr)
		if k == kindBool {
			text = "bool2int(" + text + ")"
			k = kindInt
		}
		objs = append(objs, objective{Objective: o, text: text, kind: k})
	}

	switch {
	case len(objs) == 0:
		return &ObjectivePlan{Solve: "solve satisfy;"}, nil
	case len(objs) == 1:
		return &ObjectivePlan{Solve: "solve " + objs[0].Sense.String() + " " + objs[0].text + ";"}, nil
	case p.batch.Priority == engine.PriorityLex:
		return p.lex(objs)
	default:
		return p.box(objs), nil
	}
}

func (p *ObjectivePlanner) box(objs []objective) *ObjectivePlan {
	goals := make([]string, len(objs))
	for i, o := range objs {
		goals[i] = goal(o.kind, o.Sense, o.text)
	}
	return &ObjectivePlan{
		Annotations: []string{BoxAnnotation},
		Solve:       "solve :: box([" + strings.Join(goals, ", ") + "]) satisfy;",
	}
}

// lex names each objective lex_<i> and orders them with goal_hierarchy. Every
// stage but the last gets an optional parameter, absent by default, that pins
// the stage once a refinement loop supplies its optimum.
func (p *ObjectivePlanner) lex(objs []objective) (*ObjectivePlan, error) {
	plan := &ObjectivePlan{}
	goals := make([]string, len(objs))
	for i, o := range objs {
		name := "lex_" + strconv.Itoa(i+1)
		if err := p.claim(name, o); err != nil {
			return nil, err
		}
		dom := domainOf(o.kind)
		plan.Decls = append(plan.Decls, mzn.Decl{Inst: "var", Domain: dom, Name: name, Def: o.text})
		goals[i] = goal(o.kind, o.Sense, name)
	}
	for i, o := range objs[:len(objs)-1] {
		name := "lex_" + strconv.Itoa(i+1)
		opt := name + "_opt"
		if err := p.claim(opt, o); err != nil {
			return nil, err
		}
		plan.Decls = append(plan.Decls, mzn.Decl{Inst: "opt", Domain: domainOf(o.kind), Name: opt, Def: "<>"})
		plan.Constraints = append(plan.Constraints,
			"occurs("+opt+") -> "+name+" = deopt("+opt+")")
	}

	last := objs[len(objs)-1]
	plan.Solve = "solve :: goal_hierarchy([" + strings.Join(goals, ", ") + "]) " +
		last.Sense.String() + " lex_" + strconv.Itoa(len(objs)) + ";"
	return plan, nil
}

func (p *ObjectivePlanner) claim(name string, o objective) error {
	if p.names[name] {
		return ir.NewError(ir.ErrCodeNameCollision, objectiveCommand(o.Objective),
			"objective helper %q collides with an existing declaration", name)
	}
	p.names[name] = true
	return nil
}

func goal(k kind, sense engine.Sense, target string) string {
	prefix := "int_"
	if k == kindFloat {
		prefix = "float_"
	}
	dir := "max"
	if sense == engine.Minimize {
		dir = "min"
	}
	return prefix + dir + "_goal(" + target + ")"
}

func domainOf(k kind) string {
	if k == kindFloat {
		return "float"
	}
	return "int"
}

var boolOps = map[string]bool{
	"not": true, "and": true, "or": true, "=>": true, "xor": true,
	"=": true, "distinct": true, "<": true, "<=": true, ">": true, ">=": true,
	"bvult": true, "bvule": true, "bvugt": true, "bvuge": true,
}

func (p *ObjectivePlanner) lookup(name string) (ir.Sort, bool) {
	if sort, ok := p.aggregates[name]; ok {
		return sort, true
	}
	return p.batch.Lookup(name)
}

// kindOf infers the MiniZinc type of e from declared sorts and literals.
func (p *ObjectivePlanner) kindOf(e ir.Expr) kind {
	switch v := e.(type) {
	case ir.Symbol:
		if v.Name == "true" || v.Name == "false" {
			return kindBool
		}
		sort, ok := p.lookup(v.Name)
		switch {
		case !ok:
			return kindInt
		case sort == ir.SortBool:
			return kindBool
		case sort == ir.SortReal:
			return kindFloat
		}
		return kindInt
	case ir.Decimal:
		return kindFloat
	case ir.Numeral, ir.BitVec:
		return kindInt
	case ir.App:
		switch {
		case boolOps[v.Op]:
			return kindBool
		case v.Op == "/" || v.Op == "to_real":
			return kindFloat
		case v.Op == "to_int" || strings.HasPrefix(v.Op, "bv"):
			return kindInt
		case v.Op == "ite" && len(v.Args) == 3:
			return max(p.kindOf(v.Args[1]), p.kindOf(v.Args[2]))
		}
		k := kindInt
		for _, arg := range v.Args {
			if p.kindOf(arg) == kindFloat {
				k = kindFloat
			}
		}
		return k
	}
	return kindInt
}

func objectiveCommand(o engine.Objective) ir.Command {
	span := ir.Span{Line: o.Line}
	if o.Sense == engine.Minimize {
		return ir.Minimize{Span: span}
	}
	return ir.Maximize{Span: span}
}
