package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sprig-lang/sprig/core"
)

func TestParseLiterals(t *testing.T) {
	forms, err := Parse(`42 3.5 "hi\n" true false None nil foo`)
	require.NoError(t, err)
	require.Len(t, forms, 8)
	assert.Equal(t, core.IntLit(42), forms[0])
	assert.Equal(t, core.FloatLit(3.5), forms[1])
	assert.Equal(t, core.StrLit("hi\n"), forms[2])
	assert.Equal(t, core.BoolLit(true), forms[3])
	assert.Equal(t, core.BoolLit(false), forms[4])
	assert.Equal(t, core.NilLit(), forms[5])
	assert.Equal(t, core.NilLit(), forms[6])
	assert.Equal(t, core.Symbol("foo"), forms[7])
}

func TestParseNestedList(t *testing.T) {
	forms, err := Parse(`(+ 1 (* 2 3))`)
	require.NoError(t, err)
	require.Len(t, forms, 1)
	want := core.List(core.Symbol("+"), core.IntLit(1), core.List(core.Symbol("*"), core.IntLit(2), core.IntLit(3)))
	assert.True(t, want.Equal(forms[0]))
}

func TestParseTightQuoteAndBareQuoteAlias(t *testing.T) {
	forms, err := Parse(`(list 'if 'do)`)
	require.NoError(t, err)
	require.Len(t, forms, 1)
	want := core.List(core.Symbol("list"), core.Quoted(core.Symbol("if")), core.Quoted(core.Symbol("do")))
	assert.True(t, want.Equal(forms[0]))

	forms, err = Parse(`(' 1 ~x ~(inc x) 4)`)
	require.NoError(t, err)
	require.Len(t, forms, 1)
	list := forms[0]
	require.Equal(t, core.FormList, list.Kind)
	require.Len(t, list.Children, 5)
	assert.True(t, list.Children[0].IsSymbolNamed("'"))
	assert.Equal(t, core.IntLit(1), list.Children[1])
	assert.Equal(t, core.FormUnquoted, list.Children[2].Kind)
	assert.True(t, list.Children[2].Inner.IsSymbolNamed("x"))
	assert.Equal(t, core.FormUnquoted, list.Children[3].Kind)
	assert.Equal(t, core.IntLit(4), list.Children[4])
}

func TestParseNegativeNumberVsSubtractSymbol(t *testing.T) {
	forms, err := Parse(`(nth lst -1) (- 1 2)`)
	require.NoError(t, err)
	require.Len(t, forms, 2)
	assert.Equal(t, core.IntLit(-1), forms[0].Children[2])
	assert.True(t, forms[1].Children[0].IsSymbolNamed("-"))
}

func TestParseCommentsIgnored(t *testing.T) {
	forms, err := Parse("; top comment\n(+ 1 2) ; trailing\n")
	require.NoError(t, err)
	require.Len(t, forms, 1)
	assert.Equal(t, core.FormList, forms[0].Kind)
}

func TestParseRejectsGarbageAfterValidForms(t *testing.T) {
	_, err := Parse(`(+ 1 2) )`)
	assert.Error(t, err)
}
