package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScopeLookupWalksToParent(t *testing.T) {
	root := NewRootScope()
	root.DefineLocal("x", IntVal(1))
	child := ChildOf(root)
	child.DefineLocal("y", IntVal(2))

	v, ok := child.Lookup("x")
	assert.True(t, ok)
	assert.Equal(t, int64(1), v.Int)

	v, ok = child.Lookup("y")
	assert.True(t, ok)
	assert.Equal(t, int64(2), v.Int)

	_, ok = root.Lookup("y")
	assert.False(t, ok, "parent must not see child bindings")
}

func TestScopeInnermostBindingWins(t *testing.T) {
	root := NewRootScope()
	root.DefineLocal("x", IntVal(1))
	child := ChildOf(root)
	child.DefineLocal("x", IntVal(2))

	v, ok := child.Lookup("x")
	assert.True(t, ok)
	assert.Equal(t, int64(2), v.Int, "innermost scope shadows the outer one")

	v, ok = root.Lookup("x")
	assert.True(t, ok)
	assert.Equal(t, int64(1), v.Int, "shadowing must not mutate the parent's binding")
}

func TestDefineRootAlwaysTargetsOutermostScope(t *testing.T) {
	root := NewRootScope()
	child := ChildOf(root)
	grandchild := ChildOf(child)

	grandchild.DefineRoot("g", StringVal("global"))

	v, ok := root.Lookup("g")
	assert.True(t, ok, "DefineRoot must reach the outermost scope regardless of call depth")
	assert.Equal(t, "global", v.Str)

	_, ok = child.vars["g"]
	assert.False(t, ok, "DefineRoot must not also bind in intermediate scopes")
}

func TestDefineLocalOverwritesSameScope(t *testing.T) {
	s := NewRootScope()
	s.DefineLocal("x", IntVal(1))
	s.DefineLocal("x", IntVal(2))
	v, ok := s.Lookup("x")
	assert.True(t, ok)
	assert.Equal(t, int64(2), v.Int)
}

func TestScopeChainIsADAGNotAStack(t *testing.T) {
	root := NewRootScope()
	root.DefineLocal("shared", IntVal(9))
	closureA := ChildOf(root)
	closureB := ChildOf(root)
	closureA.DefineLocal("a", IntVal(1))
	closureB.DefineLocal("b", IntVal(2))

	_, ok := closureA.Lookup("b")
	assert.False(t, ok, "sibling closures must not see each other's bindings")

	va, _ := closureA.Lookup("shared")
	vb, _ := closureB.Lookup("shared")
	assert.Equal(t, va.Int, vb.Int, "both siblings observe the same parent binding")
}
