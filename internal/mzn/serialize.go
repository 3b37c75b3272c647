package mzn

import (
	"regexp"
	"strings"

	"github.com/cespio/omtmzn/internal/ir"
)

// SortLookup resolves the sort of a declared symbol.
type SortLookup func(name string) (ir.Sort, bool)

// Serializer renders SMT-LIB terms as MiniZinc expressions.
//
// Binary operators are always parenthesized, so the output never depends on
// MiniZinc operator precedence. Bit-vector terms are interpreted as unsigned
// integers; arithmetic wraps modulo 2^width.
type Serializer struct {
	sorts SortLookup
}

// NewSerializer creates a serializer resolving symbol sorts through sorts.
// sorts may be nil when no bit-vector arithmetic is serialized.
func NewSerializer(sorts SortLookup) *Serializer {
	if sorts == nil {
		sorts = func(string) (ir.Sort, bool) { return "", false }
	}
	return &Serializer{sorts: sorts}
}

// Serialize renders e.
func (s *Serializer) Serialize(e ir.Expr) (string, error) {
	switch v := e.(type) {
	case ir.Symbol:
		return Ident(v.Name), nil
	case ir.Numeral:
		return v.Text, nil
	case ir.Decimal:
		return v.Text, nil
	case ir.BitVec:
		return v.Value.String(), nil
	case ir.App:
		return s.app(v)
	}
	return "", ir.NewError(ir.ErrCodeUnsupportedExpr, nil, "unsupported term %T", e)
}

// SerializeConjunction combines exprs into one conjunction with combine and
// renders the result.
func (s *Serializer) SerializeConjunction(exprs []ir.Expr, combine func([]ir.Expr) ir.Expr) (string, error) {
	return s.Serialize(combine(exprs))
}

var infix = map[string]string{
	"and": `/\`,
	"or":  `\/`,
	"xor": "xor",
	"+":   "+",
	"*":   "*",
	"/":   "/",
	"div": "div",
	"mod": "mod",
}

var comparisons = map[string]string{
	"=":     "=",
	"<":     "<",
	"<=":    "<=",
	">":     ">",
	">=":    ">=",
	"bvult": "<",
	"bvule": "<=",
	"bvugt": ">",
	"bvuge": ">=",
}

var calls = map[string]string{
	"abs":     "abs",
	"to_real": "int2float",
	"to_int":  "floor",
}

func (s *Serializer) app(a ir.App) (string, error) {
	if len(a.Indices) > 0 {
		return "", unsupported(a)
	}

	args := make([]string, len(a.Args))
	for i, arg := range a.Args {
		str, err := s.Serialize(arg)
		if err != nil {
			return "", err
		}
		args[i] = str
	}

	if op, ok := infix[a.Op]; ok && len(args) >= 2 {
		return "(" + strings.Join(args, " "+op+" ") + ")", nil
	}
	if op, ok := comparisons[a.Op]; ok && len(args) >= 2 {
		return chain(args, op), nil
	}
	if fn, ok := calls[a.Op]; ok && len(args) == 1 {
		return fn + "(" + args[0] + ")", nil
	}

	switch a.Op {
	case "not":
		if len(args) == 1 {
			return "not(" + args[0] + ")", nil
		}
	case "=>":
		if len(args) >= 2 {
			// right associative
			out := args[len(args)-1]
			for i := len(args) - 2; i >= 0; i-- {
				out = "(" + args[i] + " -> " + out + ")"
			}
			return out, nil
		}
	case "-":
		if len(args) == 1 {
			return "(-" + args[0] + ")", nil
		}
		if len(args) >= 2 {
			return "(" + strings.Join(args, " - ") + ")", nil
		}
	case "distinct":
		if len(args) >= 2 {
			var parts []string
			for i := 0; i < len(args); i++ {
				for j := i + 1; j < len(args); j++ {
					parts = append(parts, args[i]+" != "+args[j])
				}
			}
			return "(" + strings.Join(parts, ` /\ `) + ")", nil
		}
	case "ite":
		if len(args) == 3 {
			return "(if " + args[0] + " then " + args[1] + " else " + args[2] + " endif)", nil
		}
	case "bvadd", "bvmul", "bvsub", "bvneg", "bvudiv", "bvurem":
		return s.bitVecArith(a, args)
	}
	return "", unsupported(a)
}

// chain renders a (possibly chained) comparison pairwise: (a <= b /\ b <= c).
func chain(args []string, op string) string {
	if len(args) == 2 {
		return "(" + args[0] + " " + op + " " + args[1] + ")"
	}
	parts := make([]string, 0, len(args)-1)
	for i := 0; i+1 < len(args); i++ {
		parts = append(parts, args[i]+" "+op+" "+args[i+1])
	}
	return "(" + strings.Join(parts, ` /\ `) + ")"
}

func (s *Serializer) bitVecArith(a ir.App, args []string) (string, error) {
	width, ok := s.width(a)
	if !ok || len(args) == 0 {
		return "", unsupported(a)
	}
	m := modulus(width).String()

	switch a.Op {
	case "bvneg":
		if len(args) == 1 {
			return "((" + m + " - " + args[0] + ") mod " + m + ")", nil
		}
	case "bvadd":
		if len(args) >= 2 {
			return "((" + strings.Join(args, " + ") + ") mod " + m + ")", nil
		}
	case "bvmul":
		if len(args) >= 2 {
			return "((" + strings.Join(args, " * ") + ") mod " + m + ")", nil
		}
	case "bvsub":
		if len(args) == 2 {
			return "((" + args[0] + " - " + args[1] + " + " + m + ") mod " + m + ")", nil
		}
	case "bvudiv":
		if len(args) == 2 {
			return "(" + args[0] + " div " + args[1] + ")", nil
		}
	case "bvurem":
		if len(args) == 2 {
			return "(" + args[0] + " mod " + args[1] + ")", nil
		}
	}
	return "", unsupported(a)
}

// width infers the bit width of a bit-vector term.
func (s *Serializer) width(e ir.Expr) (int, bool) {
	switch v := e.(type) {
	case ir.BitVec:
		return v.Width, true
	case ir.Symbol:
		sort, ok := s.sorts(v.Name)
		if !ok {
			return 0, false
		}
		return sort.BitVecWidth()
	case ir.App:
		for _, arg := range v.Args {
			if w, ok := s.width(arg); ok {
				return w, true
			}
		}
	}
	return 0, false
}

func unsupported(a ir.App) error {
	return ir.NewError(ir.ErrCodeUnsupportedExpr, nil, "cannot express %s in MiniZinc", ir.Format(a))
}

var plainIdent = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// reserved lists MiniZinc keywords that cannot be used as plain identifiers.
var reserved = map[string]bool{
	"ann": true, "annotation": true, "any": true, "array": true, "bool": true,
	"case": true, "constraint": true, "default": true, "diff": true, "div": true,
	"else": true, "elseif": true, "endif": true, "enum": true, "float": true,
	"function": true, "if": true, "in": true, "include": true, "int": true,
	"intersect": true, "let": true, "list": true, "maximize": true, "minimize": true,
	"mod": true, "not": true, "of": true, "op": true, "opt": true, "output": true,
	"par": true, "predicate": true, "record": true, "satisfy": true, "set": true,
	"solve": true, "string": true, "subset": true, "superset": true, "symdiff": true,
	"test": true, "then": true, "tuple": true, "type": true, "union": true,
	"var": true, "where": true, "xor": true,
}

// Ident renders a symbol name as a MiniZinc identifier, quoting it when it is
// not a plain identifier. true and false pass through as constants.
func Ident(name string) string {
	if name == "true" || name == "false" {
		return name
	}
	if plainIdent.MatchString(name) && !reserved[name] {
		return name
	}
	return "'" + strings.ReplaceAll(name, "'", "_") + "'"
}
