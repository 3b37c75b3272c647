package smtlib

import (
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"strconv"
	"strings"

	"github.com/cespio/omtmzn/internal/ir"
)

// sexpr is one node of the raw S-expression tree.
type sexpr struct {
	tok    token   // atom token; for lists, the opening parenthesis
	list   []sexpr // children when isList
	isList bool
}

func (s sexpr) line() int { return s.tok.line }

// isSymbol reports whether s is the atom symbol name.
func (s sexpr) isSymbol(name string) bool {
	return !s.isList && s.tok.kind == tokSymbol && s.tok.text == name
}

// ignoredCommands are accepted for compatibility and dropped: they carry no
// information the translation needs.
var ignoredCommands = map[string]bool{
	"set-logic":      true,
	"set-info":       true,
	"get-info":       true,
	"get-option":     true,
	"get-model":      true,
	"get-value":      true,
	"get-objectives": true,
	"get-assignment": true,
	"echo":           true,
	"exit":           true,
}

// Parse reads a whole script and returns its commands in order.
func Parse(src string) ([]ir.Command, error) {
	nodes, err := readAll(newLexer(src))
	if err != nil {
		return nil, err
	}

	cmds := make([]ir.Command, 0, len(nodes))
	for _, n := range nodes {
		cmd, err := toCommand(n)
		if err != nil {
			return nil, err
		}
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return cmds, nil
}

// ParseReader is Parse over an io.Reader.
func ParseReader(r io.Reader) ([]ir.Command, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return Parse(string(data))
}

func readAll(lx *lexer) ([]sexpr, error) {
	var nodes []sexpr
	for {
		tok, err := lx.next()
		if err != nil {
			return nil, err
		}
		if tok.kind == tokEOF {
			return nodes, nil
		}
		n, err := readNode(lx, tok)
		if err != nil {
			return nil, err
		}
		if !n.isList {
			return nil, parseErrorf(n.line(), "expected '(' to start a command, got %q", n.tok.text)
		}
		nodes = append(nodes, n)
	}
}

func readNode(lx *lexer, tok token) (sexpr, error) {
	switch tok.kind {
	case tokRParen:
		return sexpr{}, parseErrorf(tok.line, "unexpected ')'")
	case tokLParen:
		n := sexpr{tok: tok, isList: true}
		for {
			child, err := lx.next()
			if err != nil {
				return sexpr{}, err
			}
			switch child.kind {
			case tokEOF:
				return sexpr{}, parseErrorf(tok.line, "unbalanced '(': missing ')'")
			case tokRParen:
				return n, nil
			}
			c, err := readNode(lx, child)
			if err != nil {
				return sexpr{}, err
			}
			n.list = append(n.list, c)
		}
	}
	return sexpr{tok: tok}, nil
}

func toCommand(n sexpr) (ir.Command, error) {
	if len(n.list) == 0 || n.list[0].isList || n.list[0].tok.kind != tokSymbol {
		return nil, parseErrorf(n.line(), "expected a command name")
	}
	name := n.list[0].tok.text
	args := n.list[1:]
	span := ir.Span{Line: n.line()}

	switch name {
	case "declare-fun":
		if len(args) != 3 {
			return nil, parseErrorf(span.Line, "declare-fun expects a name, an argument list and a sort")
		}
		if !args[1].isList || len(args[1].list) > 0 {
			return nil, parseErrorf(span.Line, "declare-fun with arguments is not supported")
		}
		return declare(span, args[0], args[2])
	case "declare-const":
		if len(args) != 2 {
			return nil, parseErrorf(span.Line, "declare-const expects a name and a sort")
		}
		return declare(span, args[0], args[1])
	case "assert":
		if len(args) != 1 {
			return nil, parseErrorf(span.Line, "assert expects one term")
		}
		e, err := toExpr(args[0])
		if err != nil {
			return nil, err
		}
		return ir.Assert{Span: span, Expr: e}, nil
	case "assert-soft":
		return assertSoft(span, args)
	case "push", "pop":
		count, err := level(span, name, args)
		if err != nil {
			return nil, err
		}
		if name == "push" {
			return ir.Push{Span: span, N: count}, nil
		}
		return ir.Pop{Span: span, N: count}, nil
	case "check-sat":
		return ir.CheckPoint{Span: span}, nil
	case "set-option":
		return setOption(span, args)
	case "maximize", "minimize":
		if len(args) < 1 {
			return nil, parseErrorf(span.Line, "%s expects a term", name)
		}
		e, err := toExpr(args[0])
		if err != nil {
			return nil, err
		}
		if name == "maximize" {
			return ir.Maximize{Span: span, Expr: e}, nil
		}
		return ir.Minimize{Span: span, Expr: e}, nil
	}

	if ignoredCommands[name] {
		slog.Debug("skipping command", "command", name, "line", span.Line)
		return nil, nil
	}
	return nil, parseErrorf(span.Line, "unsupported command %q", name)
}

func declare(span ir.Span, name, sort sexpr) (ir.Command, error) {
	if name.isList || name.tok.kind != tokSymbol {
		return nil, parseErrorf(span.Line, "expected a variable name")
	}
	s, err := toSort(sort)
	if err != nil {
		return nil, err
	}
	return ir.DeclareVar{Span: span, Name: name.tok.text, Sort: s}, nil
}

func assertSoft(span ir.Span, args []sexpr) (ir.Command, error) {
	if len(args) == 0 {
		return nil, parseErrorf(span.Line, "assert-soft expects a term")
	}
	e, err := toExpr(args[0])
	if err != nil {
		return nil, err
	}
	cmd := ir.AssertSoft{
		Span:   span,
		Expr:   e,
		Weight: ir.Numeral{Text: "1"},
		Group:  ir.DefaultGroup,
	}

	attrs := args[1:]
	for i := 0; i < len(attrs); i++ {
		a := attrs[i]
		if a.isList || a.tok.kind != tokKeyword {
			return nil, parseErrorf(a.line(), "expected an attribute, got %q", a.tok.text)
		}
		if i+1 >= len(attrs) {
			return nil, parseErrorf(a.line(), "attribute %s has no value", a.tok.text)
		}
		val := attrs[i+1]
		i++
		switch a.tok.text {
		case ":weight", ":dweight":
			w, err := toExpr(val)
			if err != nil {
				return nil, err
			}
			cmd.Weight = w
		case ":id":
			if val.isList {
				return nil, parseErrorf(val.line(), ":id expects a symbol")
			}
			cmd.Group = val.tok.text
		default:
			slog.Debug("ignoring assert-soft attribute", "attribute", a.tok.text, "line", a.line())
		}
	}
	return cmd, nil
}

// MaxLevel bounds the scope count of a single push or pop.
const MaxLevel = 1 << 16

func level(span ir.Span, name string, args []sexpr) (int, error) {
	if len(args) == 0 {
		return 1, nil
	}
	if len(args) > 1 || args[0].isList || args[0].tok.kind != tokNumeral {
		return 0, parseErrorf(span.Line, "%s expects a numeral", name)
	}
	n, err := strconv.Atoi(args[0].tok.text)
	if err != nil || n > MaxLevel {
		return 0, parseErrorf(span.Line, "%s level %q out of range", name, args[0].tok.text)
	}
	return n, nil
}

// setOption accepts both ":key value" and the re-spaced ": key value".
func setOption(span ir.Span, args []sexpr) (ir.Command, error) {
	if len(args) > 0 && !args[0].isList && args[0].tok.kind == tokKeyword && args[0].tok.text == ":" {
		args = args[1:]
		if len(args) == 0 || args[0].isList {
			return nil, parseErrorf(span.Line, "set-option expects a key")
		}
		args[0] = sexpr{tok: token{kind: tokKeyword, text: ":" + args[0].tok.text, line: args[0].tok.line}}
	}
	if len(args) != 2 || args[0].isList || args[0].tok.kind != tokKeyword {
		return nil, parseErrorf(span.Line, "set-option expects a keyword and a value")
	}
	return ir.SetOption{
		Span:  span,
		Key:   strings.TrimPrefix(args[0].tok.text, ":"),
		Value: render(args[1]),
	}, nil
}

// render prints a raw node back as text; used for option values.
func render(n sexpr) string {
	if !n.isList {
		return n.tok.text
	}
	parts := make([]string, len(n.list))
	for i, c := range n.list {
		parts[i] = render(c)
	}
	return "(" + strings.Join(parts, " ") + ")"
}

func toSort(n sexpr) (ir.Sort, error) {
	if !n.isList {
		if n.tok.kind != tokSymbol {
			return "", parseErrorf(n.line(), "expected a sort, got %q", n.tok.text)
		}
		return ir.Sort(n.tok.text), nil
	}
	if len(n.list) == 3 && n.list[0].isSymbol("_") && n.list[1].isSymbol("BitVec") && n.list[2].tok.kind == tokNumeral {
		width, err := strconv.Atoi(n.list[2].tok.text)
		if err != nil || width <= 0 {
			return "", parseErrorf(n.line(), "invalid bit-vector width %q", n.list[2].tok.text)
		}
		return ir.BitVecSort(width), nil
	}
	return "", parseErrorf(n.line(), "unsupported sort %s", render(n))
}

func toExpr(n sexpr) (ir.Expr, error) {
	if !n.isList {
		return atomExpr(n.tok)
	}
	if len(n.list) == 0 {
		return nil, parseErrorf(n.line(), "empty term")
	}

	head := n.list[0]
	if head.isSymbol("_") {
		return indexedLiteral(n)
	}
	if head.isSymbol("!") {
		if len(n.list) < 2 {
			return nil, parseErrorf(n.line(), "annotation without a term")
		}
		return toExpr(n.list[1])
	}
	if head.isSymbol("let") || head.isSymbol("forall") || head.isSymbol("exists") {
		return nil, parseErrorf(n.line(), "%s terms are not supported", head.tok.text)
	}

	app := ir.App{}
	switch {
	case head.isList && len(head.list) >= 2 && head.list[0].isSymbol("_"):
		app.Op = head.list[1].tok.text
		for _, idx := range head.list[2:] {
			app.Indices = append(app.Indices, idx.tok.text)
		}
	case !head.isList && head.tok.kind == tokSymbol:
		app.Op = head.tok.text
	default:
		return nil, parseErrorf(n.line(), "expected an operator, got %s", render(head))
	}

	for _, c := range n.list[1:] {
		arg, err := toExpr(c)
		if err != nil {
			return nil, err
		}
		app.Args = append(app.Args, arg)
	}
	return app, nil
}

func atomExpr(tok token) (ir.Expr, error) {
	switch tok.kind {
	case tokSymbol:
		if neg, ok := negativeLiteral(tok.text); ok {
			return neg, nil
		}
		return ir.Symbol{Name: tok.text}, nil
	case tokNumeral:
		return ir.Numeral{Text: tok.text}, nil
	case tokDecimal:
		return ir.Decimal{Text: tok.text}, nil
	case tokBinary:
		v, _ := new(big.Int).SetString(tok.text, 2)
		return ir.BitVec{Value: v, Width: len(tok.text)}, nil
	case tokHex:
		v, _ := new(big.Int).SetString(tok.text, 16)
		return ir.BitVec{Value: v, Width: 4 * len(tok.text)}, nil
	}
	return nil, parseErrorf(tok.line, "unexpected %q in term", tok.text)
}

// negativeLiteral reads the common shorthand "-2" as the term (- 2).
func negativeLiteral(text string) (ir.Expr, bool) {
	digits, found := strings.CutPrefix(text, "-")
	if !found || digits == "" {
		return nil, false
	}
	intPart, frac, isDecimal := strings.Cut(digits, ".")
	if !allDigits(intPart) || (isDecimal && !allDigits(frac)) {
		return nil, false
	}
	var lit ir.Expr = ir.Numeral{Text: digits}
	if isDecimal {
		lit = ir.Decimal{Text: digits}
	}
	return ir.App{Op: "-", Args: []ir.Expr{lit}}, true
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}

// indexedLiteral handles (_ bvN w).
func indexedLiteral(n sexpr) (ir.Expr, error) {
	if len(n.list) == 3 && !n.list[1].isList && strings.HasPrefix(n.list[1].tok.text, "bv") && n.list[2].tok.kind == tokNumeral {
		v, ok := new(big.Int).SetString(strings.TrimPrefix(n.list[1].tok.text, "bv"), 10)
		width, err := strconv.Atoi(n.list[2].tok.text)
		if ok && err == nil && width > 0 {
			return ir.BitVec{Value: v, Width: width}, nil
		}
	}
	return nil, parseErrorf(n.line(), "unsupported indexed term %s", render(n))
}
