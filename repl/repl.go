// Package repl implements an interactive read-eval-print loop.
package repl

import (
	"fmt"
	"os"
	"strings"

	"github.com/chzyer/readline"

	"github.com/sprig-lang/sprig/core"
	"github.com/sprig-lang/sprig/parser"
)

// Run drives an interactive session against ev until EOF or a fatal
// readline error. Input spanning multiple lines (an open paren not
// yet closed) is buffered and re-prompted with a continuation prompt,
// the same multi-line strategy as bmatsuo-at-luthersystems-elps's REPL
// driver — adapted from its byte-slice buffering to track paren depth
// directly, since this grammar's forms are always balanced-paren
// delimited (no implicit-newline statement terminator).
func Run(ev *core.Evaluator, prompt string) {
	rl, err := readline.New(prompt)
	if err != nil {
		panic(err)
	}
	defer rl.Close()

	contPrompt := strings.Repeat(" ", len(prompt))
	var buf string

	for {
		line, readErr := rl.Readline()
		if readErr == readline.ErrInterrupt {
			buf = ""
			rl.SetPrompt(prompt)
			continue
		}
		if readErr != nil {
			break
		}

		if buf != "" {
			buf = buf + "\n" + line
		} else {
			buf = line
		}

		if parenDepth(buf) > 0 {
			rl.SetPrompt(contPrompt)
			continue
		}
		rl.SetPrompt(prompt)

		src := buf
		buf = ""
		if strings.TrimSpace(src) == "" {
			continue
		}

		forms, parseErr := parser.Parse(src)
		if parseErr != nil {
			fmt.Fprintln(os.Stderr, parseErr)
			continue
		}
		if len(forms) == 0 {
			continue
		}
		v, evalErr := ev.EvaluateProgram(forms, ev.Root)
		if evalErr != nil {
			fmt.Fprintln(os.Stderr, evalErr)
			continue
		}
		fmt.Println(v.String())
	}
}

// parenDepth counts unmatched '(' in src, ignoring parens inside
// string literals and comments so a stray paren in a docstring does
// not wedge the prompt open forever.
func parenDepth(src string) int {
	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(src); i++ {
		c := src[i]
		if inString {
			if escaped {
				escaped = false
				continue
			}
			switch c {
			case '\\':
				escaped = true
			case '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case ';':
			// rest of line is a comment
			for i < len(src) && src[i] != '\n' {
				i++
			}
		case '(':
			depth++
		case ')':
			depth--
		}
	}
	if depth < 0 {
		depth = 0
	}
	return depth
}

// RunFile parses and evaluates src as a complete program, printing the
// final result's String() form — the non-interactive counterpart to
// Run, used by the `run` CLI subcommand.
func RunFile(ev *core.Evaluator, src string) error {
	forms, err := parser.Parse(src)
	if err != nil {
		return err
	}
	v, err := ev.EvaluateProgram(forms, ev.Root)
	if err != nil {
		return err
	}
	fmt.Println(v.String())
	return nil
}
