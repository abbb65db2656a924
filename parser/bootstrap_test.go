package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sprig-lang/sprig/core"
)

// TestBootstrapLetfnDestructuresFunctionLiteral exercises the prelude's
// letfn macro end to end (core.Evaluator.Bootstrap needs a real parser,
// so this integration case lives here rather than in core's own test
// suite, which never imports one). letfn's body applies first/second/
// last directly to its unevaluated `function` argument, so this also
// pins down that macro arguments bind as list-operable Values, not an
// opaque Form wrapper.
func TestBootstrapLetfnDestructuresFunctionLiteral(t *testing.T) {
	ev := core.NewEvaluator(nil)
	require.NoError(t, ev.Bootstrap(Parse))

	forms, err := Parse(`(letfn (double (x) (* x 2)) (double 21))`)
	require.NoError(t, err)

	v, err := ev.EvaluateProgram(forms, ev.Root)
	require.NoError(t, err)
	assert.Equal(t, int64(42), v.Int)
}
