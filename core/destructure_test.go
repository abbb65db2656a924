package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDestructureSymbolBindsWholeValue(t *testing.T) {
	res := Destructure(Symbol("x"), IntVal(42))
	require.False(t, res.Mismatch)
	require.Len(t, res.Bindings, 1)
	assert.Equal(t, "x", res.Bindings[0].Name)
	assert.Equal(t, int64(42), res.Bindings[0].Value.Int)
}

func TestDestructureListPositional(t *testing.T) {
	pattern := List(Symbol("a"), Symbol("b"), Symbol("c"))
	value := ListVal([]Value{IntVal(1), IntVal(2), IntVal(3)})
	res := Destructure(pattern, value)
	require.False(t, res.Mismatch)
	require.Len(t, res.Bindings, 3)
	assert.Equal(t, "a", res.Bindings[0].Name)
	assert.Equal(t, "b", res.Bindings[1].Name)
	assert.Equal(t, "c", res.Bindings[2].Name)
}

func TestDestructureListLengthMismatch(t *testing.T) {
	pattern := List(Symbol("a"), Symbol("b"))
	value := ListVal([]Value{IntVal(1)})
	res := Destructure(pattern, value)
	assert.True(t, res.Mismatch)
}

func TestDestructureRestPattern(t *testing.T) {
	pattern := List(Symbol("head"), Symbol("&"), Symbol("tail"))
	value := ListVal([]Value{IntVal(1), IntVal(2), IntVal(3)})
	res := Destructure(pattern, value)
	require.False(t, res.Mismatch)
	require.Len(t, res.Bindings, 2)
	assert.Equal(t, "head", res.Bindings[0].Name)
	assert.Equal(t, int64(1), res.Bindings[0].Value.Int)
	assert.Equal(t, "tail", res.Bindings[1].Name)
	items, err := asList("test", res.Bindings[1].Value)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, int64(2), items[0].Int)
	assert.Equal(t, int64(3), items[1].Int)
}

func TestDestructureRestPatternAcceptsExactlyZeroExtra(t *testing.T) {
	pattern := List(Symbol("a"), Symbol("&"), Symbol("rest"))
	value := ListVal([]Value{IntVal(1)})
	res := Destructure(pattern, value)
	require.False(t, res.Mismatch)
	items, _ := asList("test", res.Bindings[1].Value)
	assert.Empty(t, items)
}

func TestDestructureNestedListPattern(t *testing.T) {
	pattern := List(List(Symbol("x"), Symbol("y")), Symbol("z"))
	value := ListVal([]Value{ListVal([]Value{IntVal(1), IntVal(2)}), IntVal(3)})
	res := Destructure(pattern, value)
	require.False(t, res.Mismatch)
	require.Len(t, res.Bindings, 3)
	assert.Equal(t, "x", res.Bindings[0].Name)
	assert.Equal(t, "y", res.Bindings[1].Name)
	assert.Equal(t, "z", res.Bindings[2].Name)
}

func TestDestructureListPatternAgainstNonListMismatches(t *testing.T) {
	pattern := List(Symbol("a"))
	res := Destructure(pattern, IntVal(1))
	assert.True(t, res.Mismatch)
}

func TestBindParamsArityErrorOnMismatch(t *testing.T) {
	_, err := BindParams("f", List(Symbol("a"), Symbol("b")), []Value{IntVal(1)})
	require.Error(t, err)
	var arityErr *ArityError
	require.ErrorAs(t, err, &arityErr)
	assert.Equal(t, "f", arityErr.FnName)
}

func TestBindParamsNilPatternRequiresNoArgs(t *testing.T) {
	bindings, err := BindParams("f", nil, nil)
	require.NoError(t, err)
	assert.Empty(t, bindings)

	_, err = BindParams("f", nil, []Value{IntVal(1)})
	require.Error(t, err)
}
