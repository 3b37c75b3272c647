package ir

import (
	"math/big"
	"strconv"
	"strings"
)

// Expr is an SMT-LIB term.
//
// Implementations: Symbol, Numeral, Decimal, BitVec, App.
type Expr interface {
	isExpr()
}

// Symbol references a declared variable or a nullary constant (true, false).
type Symbol struct {
	Name string
}

// Numeral is a non-negative integer literal, kept as its decimal digits.
type Numeral struct {
	Text string
}

// Decimal is a non-negative decimal literal such as "2.5".
type Decimal struct {
	Text string
}

// BitVec is a bit-vector literal of a fixed width.
type BitVec struct {
	Value *big.Int
	Width int
}

// App applies an operator to arguments. Indices holds the numerals of an
// indexed operator such as (_ extract 7 0).
type App struct {
	Op      string
	Indices []string
	Args    []Expr
}

func (Symbol) isExpr()  {}
func (Numeral) isExpr() {}
func (Decimal) isExpr() {}
func (BitVec) isExpr()  {}
func (App) isExpr()     {}

// And conjoins exprs into a single term. A single expression is returned as
// is; an empty list yields the constant true.
func And(exprs []Expr) Expr {
	switch len(exprs) {
	case 0:
		return Symbol{Name: "true"}
	case 1:
		return exprs[0]
	}
	args := make([]Expr, len(exprs))
	copy(args, exprs)
	return App{Op: "and", Args: args}
}

// Format renders e back in SMT-LIB syntax. It is used for diagnostics.
func Format(e Expr) string {
	var b strings.Builder
	writeExpr(&b, e)
	return b.String()
}

func writeExpr(b *strings.Builder, e Expr) {
	switch v := e.(type) {
	case Symbol:
		b.WriteString(v.Name)
	case Numeral:
		b.WriteString(v.Text)
	case Decimal:
		b.WriteString(v.Text)
	case BitVec:
		b.WriteString("(_ bv")
		b.WriteString(v.Value.String())
		b.WriteByte(' ')
		b.WriteString(strconv.Itoa(v.Width))
		b.WriteByte(')')
	case App:
		b.WriteByte('(')
		if len(v.Indices) > 0 {
			b.WriteString("(_ ")
			b.WriteString(v.Op)
			for _, idx := range v.Indices {
				b.WriteByte(' ')
				b.WriteString(idx)
			}
			b.WriteByte(')')
		} else {
			b.WriteString(v.Op)
		}
		for _, arg := range v.Args {
			b.WriteByte(' ')
			writeExpr(b, arg)
		}
		b.WriteByte(')')
	case nil:
		b.WriteString("<nil>")
	}
}
