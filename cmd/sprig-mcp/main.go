// Command sprig-mcp exposes one long-lived evaluator over MCP stdio:
// sprig_eval evaluates an expression against the shared root scope,
// sprig_define binds a name to a value in it. Both tools share state
// across calls, the way a REPL session would.
//
// Grounded on rphilander-logos/mcp-logos/main.go's tool registration
// shape, adapted from a JSON-over-unix-socket round trip to
// mcp-logos/mcp-logos talking directly to an in-process
// *core.Evaluator — no socket, no connection handshake.
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/sprig-lang/sprig/core"
	"github.com/sprig-lang/sprig/hostmodules"
	"github.com/sprig-lang/sprig/parser"
)

var ev *core.Evaluator

func evalSource(src string) (core.Value, error) {
	forms, err := parser.Parse(src)
	if err != nil {
		return core.Value{}, err
	}
	return ev.EvaluateProgram(forms, ev.Root)
}

func handleEval(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	expr, err := request.RequireString("expr")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	v, err := evalSource(expr)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(v.String()), nil
}

func handleDefine(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	expr, err := request.RequireString("expr")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	v, err := evalSource(expr)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ev.Root.DefineRoot(name, v)
	return mcp.NewToolResultText(fmt.Sprintf("%s = %s", name, v.String())), nil
}

func handleMacroexpand(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	expr, err := request.RequireString("expr")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	v, err := evalSource(fmt.Sprintf("(macroexpand (' %s))", expr))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(v.String()), nil
}

func main() {
	bridge := hostmodules.NewBridge()
	ev = core.NewEvaluator(bridge)
	if err := ev.Bootstrap(parser.Parse); err != nil {
		log.Fatalf("bootstrap: %v", err)
	}
	bridge.SetHTTPCallback(func(req core.Value) (core.Value, error) {
		return core.Value{}, fmt.Errorf("sprig-mcp does not serve HTTP")
	})

	s := server.NewMCPServer(
		"sprig",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	s.AddTool(
		mcp.NewTool("sprig_eval",
			mcp.WithDescription("Evaluate a sprig expression against the shared root scope. Returns the result's printed form."),
			mcp.WithString("expr",
				mcp.Required(),
				mcp.Description("Source text to parse and evaluate, e.g. (+ 1 2)"),
			),
		),
		handleEval,
	)

	s.AddTool(
		mcp.NewTool("sprig_define",
			mcp.WithDescription("Evaluate an expression and bind its result to a name in the shared root scope."),
			mcp.WithString("name",
				mcp.Required(),
				mcp.Description("Symbol name to define"),
			),
			mcp.WithString("expr",
				mcp.Required(),
				mcp.Description("Source text for the symbol's value"),
			),
		),
		handleDefine,
	)

	s.AddTool(
		mcp.NewTool("sprig_macroexpand",
			mcp.WithDescription("Expand one macro call without evaluating the result."),
			mcp.WithString("expr",
				mcp.Required(),
				mcp.Description("A single call-form expression whose head may be a macro"),
			),
		),
		handleMacroexpand,
	)

	log.Println("sprig-mcp: serving stdio")
	if err := server.ServeStdio(s); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
