package mzn

import (
	"bytes"
	"math/big"
	"strings"

	"github.com/cespio/omtmzn/internal/ir"
)

// FloatBound is the finite surrogate for an unbounded real domain. Most
// MiniZinc backends reject unbounded float variables.
const FloatBound = "3.402823e+38"

// FloatDomain is the domain of Real-sorted variables.
const FloatDomain = "-" + FloatBound + ".." + FloatBound

// Domain maps a sort tag to a MiniZinc domain:
//
//	BV{n} -> 0..2^n-1
//	Real  -> -3.402823e+38..3.402823e+38
//	other -> lowercased sort name (Bool -> bool, Int -> int)
func Domain(s ir.Sort) string {
	if width, ok := s.BitVecWidth(); ok {
		return "0.." + maxUnsigned(width).String()
	}
	if s == ir.SortReal {
		return FloatDomain
	}
	return strings.ToLower(string(s))
}

// maxUnsigned returns 2^width - 1.
func maxUnsigned(width int) *big.Int {
	return new(big.Int).Sub(modulus(width), big.NewInt(1))
}

// modulus returns 2^width.
func modulus(width int) *big.Int {
	return new(big.Int).Lsh(big.NewInt(1), uint(width))
}

// Decl is a variable or parameter declaration.
type Decl struct {
	// Inst is "var", "opt" or "" for a parameter.
	Inst   string
	Domain string
	Name   string
	// Def is an optional defining expression.
	Def string
}

// Var declares a decision variable.
func Var(domain, name string) Decl {
	return Decl{Inst: "var", Domain: domain, Name: name}
}

// String renders the declaration as a MiniZinc item.
func (d Decl) String() string {
	var b strings.Builder
	if d.Inst != "" {
		b.WriteString(d.Inst)
		b.WriteByte(' ')
	}
	b.WriteString(d.Domain)
	b.WriteString(": ")
	b.WriteString(d.Name)
	if d.Def != "" {
		b.WriteString(" = ")
		b.WriteString(d.Def)
	}
	b.WriteByte(';')
	return b.String()
}

// Model is one MiniZinc program, laid out in a fixed section order.
type Model struct {
	// Vars holds ordinary variables, in declaration order.
	Vars []Decl

	// SoftVars holds soft-assertion indicators and group aggregates.
	SoftVars []Decl

	// Hard holds hard constraint bodies.
	Hard []string

	// Soft holds constraints derived from soft assertions.
	Soft []string

	// Annotations holds annotation declarations used by the solve item.
	Annotations []string

	// ObjectiveVars holds helper declarations of the objective plan.
	ObjectiveVars []Decl

	// ObjectiveConstraints holds chain constraints of the objective plan.
	ObjectiveConstraints []string

	// Solve is the complete solve item.
	Solve string
}

// Render produces the program text. Output depends only on the model, so
// equal models render to identical bytes.
func (m *Model) Render() []byte {
	var buf bytes.Buffer
	for _, d := range m.Vars {
		buf.WriteString(d.String())
		buf.WriteByte('\n')
	}
	for _, d := range m.SoftVars {
		buf.WriteString(d.String())
		buf.WriteByte('\n')
	}
	writeConstraints(&buf, m.Hard)
	writeConstraints(&buf, m.Soft)
	for _, a := range m.Annotations {
		buf.WriteString(a)
		buf.WriteByte('\n')
	}
	for _, d := range m.ObjectiveVars {
		buf.WriteString(d.String())
		buf.WriteByte('\n')
	}
	writeConstraints(&buf, m.ObjectiveConstraints)
	buf.WriteString(m.Solve)
	buf.WriteByte('\n')
	return buf.Bytes()
}

func writeConstraints(buf *bytes.Buffer, bodies []string) {
	for _, c := range bodies {
		buf.WriteString("constraint ")
		buf.WriteString(c)
		buf.WriteString(";\n")
	}
}
