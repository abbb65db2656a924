// Package stdlib embeds the bootstrap program evaluated into every
// fresh root scope before user code runs.
//
// Grounded on original_source/lispy/stdlib.py's STDLIB triple-quoted
// string, replaced with go:embed the way other_examples/langsam embeds
// its own prelude source (langsam.l) rather than inlining it as a Go
// string literal.
package stdlib

import _ "embed"

//go:embed prelude.sprig
var Prelude string
