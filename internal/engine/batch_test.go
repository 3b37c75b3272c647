package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cespio/omtmzn/internal/ir"
)

func TestParsePriorityMode(t *testing.T) {
	for _, v := range []string{"box", "lex"} {
		mode, err := ParsePriorityMode(v)
		require.NoError(t, err)
		assert.Equal(t, PriorityMode(v), mode)
	}

	for _, v := range []string{"pareto", "BOX", "", " lex"} {
		t.Run(v, func(t *testing.T) {
			_, err := ParsePriorityMode(v)
			assert.Error(t, err)
		})
	}
}

func TestClassify(t *testing.T) {
	x := ir.Symbol{Name: "x"}
	cmds := []ir.Command{
		ir.DeclareVar{Name: "x", Sort: ir.SortBool},
		ir.Assert{Expr: x},
		ir.AssertSoft{Expr: x, Weight: ir.Numeral{Text: "3"}, Group: "g", Span: ir.Span{Line: 3}},
		ir.SetOption{Key: "produce-models", Value: "true"},
		ir.Maximize{Expr: x},
		ir.Minimize{Expr: x},
	}

	b, err := Classify(2, cmds)
	require.NoError(t, err)

	assert.Equal(t, 2, b.Index)
	assert.Equal(t, []Variable{{Name: "x", Sort: ir.SortBool}}, b.Vars)
	assert.Equal(t, []ir.Expr{x}, b.Hard)
	assert.Equal(t, []SoftAssertion{{Expr: x, Weight: ir.Numeral{Text: "3"}, Group: "g", Line: 3}}, b.Soft)
	require.Len(t, b.Objectives, 2)
	assert.Equal(t, Maximize, b.Objectives[0].Sense)
	assert.Equal(t, Minimize, b.Objectives[1].Sense)
	assert.Equal(t, PriorityBox, b.Priority, "unrelated options leave the default")
}

func TestClassify_PriorityLastOneWins(t *testing.T) {
	cmds := []ir.Command{
		ir.SetOption{Key: ir.OptPriority, Value: "lex"},
		ir.SetOption{Key: ir.OptPriority, Value: "box"},
		ir.SetOption{Key: ir.OptPriority, Value: "lex"},
	}

	b, err := Classify(1, cmds)
	require.NoError(t, err)
	assert.Equal(t, PriorityLex, b.Priority)
}

func TestClassify_UnsupportedPriority(t *testing.T) {
	cmds := []ir.Command{
		ir.SetOption{Span: ir.Span{Line: 9}, Key: ir.OptPriority, Value: "pareto"},
	}

	_, err := Classify(1, cmds)
	require.Error(t, err)
	assert.True(t, ir.IsUnsupportedOption(err))
	assert.Contains(t, err.Error(), "line=9")
}

func TestClassify_Redeclaration(t *testing.T) {
	same := []ir.Command{
		ir.DeclareVar{Name: "x", Sort: ir.SortInt},
		ir.DeclareVar{Name: "x", Sort: ir.SortInt},
	}
	b, err := Classify(1, same)
	require.NoError(t, err)
	assert.Len(t, b.Vars, 1, "same-sort redeclaration is idempotent")

	conflicting := []ir.Command{
		ir.DeclareVar{Name: "x", Sort: ir.SortInt},
		ir.DeclareVar{Span: ir.Span{Line: 2}, Name: "x", Sort: ir.SortBool},
	}
	_, err = Classify(1, conflicting)
	require.Error(t, err)
	assert.True(t, ir.IsNameCollision(err))
}

func TestBatch_Remove(t *testing.T) {
	b := NewBatch(1)
	require.NoError(t, b.Declare(ir.DeclareVar{Name: "a", Sort: ir.SortInt}))
	require.NoError(t, b.Declare(ir.DeclareVar{Name: "g", Sort: ir.SortInt}))
	require.NoError(t, b.Declare(ir.DeclareVar{Name: "c", Sort: ir.SortBool}))

	assert.True(t, b.Remove("g"))
	assert.False(t, b.Remove("g"))

	assert.Equal(t, []Variable{{Name: "a", Sort: ir.SortInt}, {Name: "c", Sort: ir.SortBool}}, b.Vars)
	sort, ok := b.Lookup("c")
	require.True(t, ok)
	assert.Equal(t, ir.SortBool, sort)
	_, ok = b.Lookup("g")
	assert.False(t, ok)
}
