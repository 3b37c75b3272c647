package preprocess

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cespio/omtmzn/internal/ir"
)

func TestProcessDropsCommentLines(t *testing.T) {
	src := "; header comment\n(declare-fun x () Bool) ; trailing\n(assert x)\n"

	out := New(ir.SortInt).Process(src)

	assert.Equal(t, "\n(declare-fun x () Bool) \n(assert x)\n", out)
}

func TestProcessKeepsSemicolonsInLiterals(t *testing.T) {
	assert.Equal(t, `(echo "a;b") `, StripComment(`(echo "a;b") ; note`))
	assert.Equal(t, `(declare-fun |x;y| () Bool)`, StripComment(`(declare-fun |x;y| () Bool)`))
}

func TestProcessInsertsGroupDeclarationOnce(t *testing.T) {
	src := strings.Join([]string{
		"(declare-fun x () Bool)",
		"(assert-soft x :weight 3 :id g)",
		"(declare-fun y () Bool)",
		"(assert-soft y :weight -2 :id g)",
		"(check-sat)",
	}, "\n")

	out := New(ir.SortInt).Process(src)

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "(declare-fun g () Int) (assert-soft x :weight 3 :id g)", lines[1])
	assert.Equal(t, "(assert-soft y :weight -2 :id g)", lines[3])
	assert.Equal(t, 1, strings.Count(out, "(declare-fun g "))
}

func TestProcessDefaultGroup(t *testing.T) {
	src := "(assert-soft a)\n(assert-soft b :weight 2)\n(assert-soft c :id h)\n"

	out := New(ir.BitVecSort(8)).Process(src)

	assert.Equal(t,
		"(declare-fun I () (_ BitVec 8)) (assert-soft a)\n(assert-soft b :weight 2)\n"+
			"(declare-fun h () (_ BitVec 8)) (assert-soft c :id h)\n",
		out)
}

func TestProcessRespacesOptions(t *testing.T) {
	out := New(ir.SortInt).Process("(set-option :opt.priority lex)\n")

	assert.Equal(t, "(set-option  : opt.priority lex)\n", out)
}

func TestGroupID(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"(assert-soft x :id goal)", "goal"},
		{"(assert-soft x :weight 1 :id g2)", "g2"},
		{"(assert-soft x :id |my group|)", "my group"},
		{"(assert-soft x :weight 4)", ir.DefaultGroup},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, GroupID(tt.line))
		})
	}
}

func TestProcessPreservesLineOrder(t *testing.T) {
	src := "(push 1)\n(assert true)\n(pop 1)\n(check-sat)\n"

	assert.Equal(t, src, New("").Process(src))
}

func TestProcessQuotesGroupDeclaration(t *testing.T) {
	out := New(ir.SortInt).Process("(assert-soft x :id |my g|)\n")

	assert.Equal(t, "(declare-fun |my g| () Int) (assert-soft x :id |my g|)\n", out)
}

func TestProcessKeepsLineNumbers(t *testing.T) {
	src := "; model\n(declare-fun x () Bool)\n(assert-soft x :id a)\n(assert-soft x :id b)\n(pop 1)\n"

	out := New(ir.SortInt).Process(src)

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "", lines[0])
	assert.Equal(t, "(pop 1)", lines[4])
}
