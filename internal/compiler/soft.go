package compiler

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/apd/v3"

	"github.com/cespio/omtmzn/internal/engine"
	"github.com/cespio/omtmzn/internal/ir"
	"github.com/cespio/omtmzn/internal/mzn"
)

// softGroup collects the soft assertions sharing one group id.
type softGroup struct {
	name    string
	members []engine.SoftAssertion
	weights []*apd.Decimal
}

// SoftEncoding is the MiniZinc rendition of a batch's soft assertions.
type SoftEncoding struct {
	Decls       []mzn.Decl
	Constraints []string

	// Aggregates maps each group aggregate to its effective sort. A group
	// promoted to the float domain maps to Real.
	Aggregates map[string]ir.Sort
}

// SoftEncoder encodes weighted soft assertions as Boolean indicators and one
// integer (or float) penalty aggregate per group.
//
// For group g with assertions e_0..e_n-1 and weights w_0..w_n-1:
//
//	var bool: g_i;
//	constraint g_i = (e_i);
//	constraint g = not(g_0)*w_0 + ... + not(g_n-1)*w_n-1;
//	constraint (L) <= g /\ g <= (U);
//
// where L sums the negative weights and U the non-negative ones.
type SoftEncoder struct {
	batch      *engine.Batch
	ser        *mzn.Serializer
	softIDType ir.Sort
	names      map[string]bool
}

// NewSoftEncoder creates an encoder for batch. Group declarations of sort
// softIDType are adopted as aggregates and removed from batch.Vars.
func NewSoftEncoder(batch *engine.Batch, ser *mzn.Serializer, softIDType ir.Sort) *SoftEncoder {
	return &SoftEncoder{
		batch:      batch,
		ser:        ser,
		softIDType: softIDType,
		names:      make(map[string]bool),
	}
}

// Encode builds indicators, aggregates and bound constraints. It returns the
// names it introduced so later stages can detect collisions.
func (e *SoftEncoder) Encode() (*SoftEncoding, map[string]bool, error) {
	groups, err := e.group()
	if err != nil {
		return nil, nil, err
	}

	if err := e.adopt(groups); err != nil {
		return nil, nil, err
	}
	for _, v := range e.batch.Vars {
		e.names[v.Name] = true
	}

	out := &SoftEncoding{Aggregates: make(map[string]ir.Sort, len(groups))}
	for _, g := range groups {
		if err := e.encodeGroup(g, out); err != nil {
			return nil, nil, err
		}
	}
	return out, e.names, nil
}

// group partitions soft assertions by group id, in first-seen order, and
// extracts their weights.
func (e *SoftEncoder) group() ([]*softGroup, error) {
	var groups []*softGroup
	byName := make(map[string]*softGroup)
	for _, s := range e.batch.Soft {
		w, err := LiteralWeight(s.Weight)
		if err != nil {
			return nil, atSoft(err, s)
		}
		g, ok := byName[s.Group]
		if !ok {
			g = &softGroup{name: s.Group}
			byName[s.Group] = g
			groups = append(groups, g)
		}
		g.members = append(g.members, s)
		g.weights = append(g.weights, w)
	}
	return groups, nil
}

// adopt removes group declarations synthesized for the aggregates. A group id
// that names a variable of any other sort is a collision.
func (e *SoftEncoder) adopt(groups []*softGroup) error {
	for _, g := range groups {
		sort, ok := e.batch.Lookup(g.name)
		if !ok {
			continue
		}
		if sort != e.softIDType {
			return atSoft(ir.NewError(ir.ErrCodeNameCollision, nil,
				"soft group %q collides with variable of sort %s", g.name, sort), g.members[0])
		}
		e.batch.Remove(g.name)
	}
	return nil
}

func (e *SoftEncoder) encodeGroup(g *softGroup, out *SoftEncoding) error {
	aggregate := mzn.Ident(g.name)

	var indicators []string
	var defs []string
	for i, s := range g.members {
		name := g.name + "_" + strconv.Itoa(i)
		if err := e.claim(name, s); err != nil {
			return err
		}
		ind := mzn.Ident(name)
		body, err := e.ser.Serialize(s.Expr)
		if err != nil {
			return atSoft(err, s)
		}
		indicators = append(indicators, ind)
		out.Decls = append(out.Decls, mzn.Var("bool", ind))
		defs = append(defs, ind+" = ("+body+")")
	}
	if err := e.claim(g.name, g.members[0]); err != nil {
		return err
	}

	lo, hi, err := weightBounds(g.weights)
	if err != nil {
		return atSoft(ir.NewError(ir.ErrCodeUnboundedWeight, nil, "weight sum of group %q: %v", g.name, err), g.members[0])
	}

	terms := make([]string, len(indicators))
	for i, ind := range indicators {
		terms[i] = "not(" + ind + ")*" + formatWeight(g.weights[i])
	}

	sort := e.aggregateSort(g)
	out.Aggregates[g.name] = sort
	out.Decls = append(out.Decls, mzn.Var(mzn.Domain(sort), aggregate))
	out.Constraints = append(out.Constraints, defs...)
	out.Constraints = append(out.Constraints,
		aggregate+" = "+strings.Join(terms, " + "),
		bound(lo)+" <= "+aggregate+` /\ `+aggregate+" <= "+bound(hi),
	)
	return nil
}

// aggregateSort is the soft-id sort, promoted to Real when a weight of the
// group is fractional.
func (e *SoftEncoder) aggregateSort(g *softGroup) ir.Sort {
	for _, w := range g.weights {
		if !integral(w) {
			return ir.SortReal
		}
	}
	return e.softIDType
}

// claim reserves a generated name.
func (e *SoftEncoder) claim(name string, s engine.SoftAssertion) error {
	if e.names[name] {
		return atSoft(ir.NewError(ir.ErrCodeNameCollision, nil,
			"generated name %q collides with an existing declaration", name), s)
	}
	e.names[name] = true
	return nil
}

func bound(d *apd.Decimal) string {
	var r apd.Decimal
	r.Reduce(d)
	return "(" + r.Text('f') + ")"
}

// atSoft locates err at the assert-soft command it came from.
func atSoft(err error, s engine.SoftAssertion) error {
	return ir.Locate(err, ir.AssertSoft{Span: ir.Span{Line: s.Line}})
}
