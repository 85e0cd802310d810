package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/wukong/types"
)

func render(t *testing.T, n Node) string {
	t.Helper()

	s, err := n.Render()
	require.NoError(t, err)

	return s
}

func TestAndRender(t *testing.T) {
	assert.Equal(t, "", render(t, Must(And())))

	single := Must(And(K("name__eq", "Test")))
	assert.Equal(t, `name:"Test"`, render(t, single))

	multi := Must(And(K("name__eq", "Test"), K("population__ge", 100)))
	assert.Equal(t, `(name:"Test" AND population:[100 TO *])`, render(t, multi))
}

func TestOrRender(t *testing.T) {
	assert.Equal(t, "", render(t, Must(Or())))

	multi := Must(Or(K("name__eq", "a"), K("name__eq", "b"), K("name__eq", "c")))
	assert.Equal(t, `(name:"a" OR name:"b" OR name:"c")`, render(t, multi))
}

func TestSingleChildInlinesNestedNode(t *testing.T) {
	inner := Must(Or(K("name__eq", "a"), K("city__wc", "b*")))
	outer := Must(And(inner))

	assert.Equal(t, render(t, inner), render(t, outer))
}

func TestNestedLogicRender(t *testing.T) {
	n := Must(And(
		Must(Or(K("name__eq", "Test"), K("city__wc", "Tai*"))),
		K("population__ge", 300000),
		Must(Not(K("country__eq", "JP"))),
	))

	assert.Equal(t,
		`((name:"Test" OR city:Tai*) AND population:[300000 TO *] AND !(country:"JP"))`,
		render(t, n))
}

func TestNotRender(t *testing.T) {
	assert.Equal(t, "", render(t, Must(Not())))
	assert.Equal(t, `!(name:"Test")`, render(t, Must(Not(K("name__eq", "Test")))))
}

func TestNotWithMultipleOperands(t *testing.T) {
	_, err := Not(K("name__eq", "a"), K("city__eq", "b"))
	require.Error(t, err)
	assert.Equal(t, "Logic node:NOT only supports one operand", err.Error())

	_, err = Not(NewComparator(OpEq, "name", "a"), NewComparator(OpEq, "city", "b"))
	require.Error(t, err)
	assert.Equal(t, "Logic node:NOT only supports one operand", err.Error())

	_, err = Not(NewComparator(OpEq, "name", "a"), K("city__eq", "b"))
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrConstruction)
}

func TestLogicKeywordWithoutOperator(t *testing.T) {
	_, err := And(K("name", "a"))
	require.Error(t, err)
	assert.Equal(t, "The operator is not specified in name", err.Error())

	_, err = Not(K("name", "a"))
	require.Error(t, err)
	assert.Equal(t, "The operator is not specified in name", err.Error())
}

func TestLogicRenderPropagatesErrors(t *testing.T) {
	n := Must(And(K("name__eq", "a"), K("name__zz", "b")))

	_, err := n.Render()
	require.Error(t, err)
	assert.Equal(t, "The operator:zz is not supported", err.Error())
}

func TestLogicPreservesOrder(t *testing.T) {
	a := NewComparator(OpEq, "a", 1)
	b := NewComparator(OpEq, "b", 2)

	assert.Equal(t, "(a:1 AND b:2)", render(t, Must(And(a, b))))
	assert.Equal(t, "(b:2 AND a:1)", render(t, Must(And(b, a))))
}

func TestLogicSkipsNilTerms(t *testing.T) {
	var (
		nilComparator *Comparator
		nilLogic      *Logic
		nilKeyword    *Keyword
	)
	a := NewComparator(OpEq, "a", 1)

	assert.Equal(t, "(a:1 AND b:2)", render(t, Must(And(nilComparator, a, nil, nilLogic, nilKeyword, K("b__eq", 2)))))
	assert.Equal(t, "!(a:1)", render(t, Must(Not(nilComparator, a))))

	m, err := NewManager(nil).Filter(nilKeyword, nilComparator)
	require.NoError(t, err)

	p, err := m.Params()
	require.NoError(t, err)
	assert.Equal(t, "*:*", p["q"])
}

func TestLogicCloneIsIndependent(t *testing.T) {
	n := Must(And(K("a__eq", 1), K("b__eq", 2)))
	cp, ok := n.Clone().(*Logic)
	require.True(t, ok)

	cp.children = append(cp.children, NewComparator(OpEq, "c", 3))

	assert.Equal(t, 2, n.Len())
	assert.Equal(t, 3, cp.Len())
	assert.Equal(t, "(a:1 AND b:2)", render(t, n))
}

func TestMustPanics(t *testing.T) {
	assert.Panics(t, func() {
		Must(Not(K("a__eq", 1), K("b__eq", 2)))
	})
}
