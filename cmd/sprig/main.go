// Command sprig is the CLI entry point: run a script, drop into an
// interactive REPL, or serve HTTP requests into a sprig-language
// handler — one evaluator and one root scope for the process's
// lifetime in every mode.
//
// Grounded on bmatsuo-at-luthersystems-elps's cobra-based CLI
// (run/repl subcommands over one *lisp.LanguageInterpreter), extended
// with a serve subcommand since this project's host stack includes an
// in-process HTTP module the elps CLI has no equivalent of.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sprig-lang/sprig/core"
	"github.com/sprig-lang/sprig/hostmodules"
	"github.com/sprig-lang/sprig/parser"
	"github.com/sprig-lang/sprig/repl"
)

func newEvaluator() (*core.Evaluator, *hostmodules.Bridge, error) {
	bridge := hostmodules.NewBridge()
	ev := core.NewEvaluator(bridge)
	if err := ev.Bootstrap(parser.Parse); err != nil {
		return nil, nil, fmt.Errorf("bootstrap: %w", err)
	}
	return ev, bridge, nil
}

func main() {
	root := &cobra.Command{
		Use:   "sprig",
		Short: "sprig is a small homoiconic Lisp for embedding",
	}

	root.AddCommand(runCmd(), replCmd(), serveCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run [file]",
		Short: "evaluate a program and print its final value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			ev, _, err := newEvaluator()
			if err != nil {
				return err
			}
			return repl.RunFile(ev, string(src))
		},
	}
}

func replCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "start an interactive read-eval-print loop",
		RunE: func(cmd *cobra.Command, args []string) error {
			ev, _, err := newEvaluator()
			if err != nil {
				return err
			}
			repl.Run(ev, "sprig> ")
			return nil
		},
	}
}

func serveCmd() *cobra.Command {
	var port int
	var handlerName string
	cmd := &cobra.Command{
		Use:   "serve [file]",
		Short: "load a program, then dispatch HTTP requests into one of its functions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			ev, bridge, err := newEvaluator()
			if err != nil {
				return err
			}
			forms, err := parser.Parse(string(src))
			if err != nil {
				return err
			}
			if _, err := ev.EvaluateProgram(forms, ev.Root); err != nil {
				return err
			}

			handler, ok := ev.Root.Lookup(handlerName)
			if !ok || !handler.IsCallable() {
				return fmt.Errorf("serve: %q is not a callable defined at the top level", handlerName)
			}

			bridge.SetHTTPCallback(func(req core.Value) (core.Value, error) {
				return core.ApplyValue(ev, handler, []core.Value{req})
			})

			httpObj, err := bridge.ImportModule("http")
			if err != nil {
				return err
			}
			listen, err := bridge.GetAttr(httpObj, "listen")
			if err != nil {
				return err
			}
			msg, err := bridge.Call(listen.Host, []core.Value{core.IntVal(int64(port))}, nil)
			if err != nil {
				return err
			}
			fmt.Println(msg.String())

			select {}
		},
	}
	cmd.Flags().IntVar(&port, "port", 8080, "TCP port to listen on")
	cmd.Flags().StringVar(&handlerName, "handler", "handle", "top-level function to dispatch requests to")
	return cmd
}
