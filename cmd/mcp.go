package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/mechkit/mechkit/pkg/mech"
	"github.com/mechkit/mechkit/pkg/mechkit"
	"github.com/mechkit/mechkit/pkg/runner"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the toolkits over the Model Context Protocol on stdio",
	RunE:  runMCP,
}

func runMCP(_ *cobra.Command, _ []string) error {
	cfg, err := mechkit.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	eng, err := mechkit.NewEngine(mechkit.EngineOptions{Config: cfg})
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}
	defer func() { _ = eng.Stop() }()

	s := server.NewMCPServer("mechkit", runner.Version,
		server.WithToolCapabilities(false),
	)
	for _, tk := range eng.Toolkits() {
		s.AddTool(toolForToolkit(tk), toolHandler(eng, tk))
	}
	return server.ServeStdio(s)
}

// toolForToolkit maps one toolkit to one MCP tool. The operation name
// is an enum so clients can see the full surface without a round trip.
func toolForToolkit(tk *mech.Toolkit) mcp.Tool {
	names := tk.Registry.Names()
	ops := make([]string, len(names))
	for i, n := range names {
		ops[i] = string(n)
	}
	return mcp.NewTool(tk.Name,
		mcp.WithDescription(fmt.Sprintf(
			"Invoke one %s operation. Available operations: %s.",
			tk.Name, strings.Join(ops, ", "))),
		mcp.WithString("operation",
			mcp.Required(),
			mcp.Description("Operation to run"),
			mcp.Enum(ops...)),
		mcp.WithObject("arguments",
			mcp.Description("Arguments for the operation, matching its documented fields")),
	)
}

func toolHandler(eng *mechkit.Engine, tk *mech.Toolkit) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		op, err := req.RequireString("operation")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		args := mech.Args{tk.ArgField: op}
		if extra, ok := req.GetArguments()["arguments"].(map[string]any); ok {
			for k, v := range extra {
				args[k] = v
			}
		}

		resp, err := eng.Dispatch(ctx, tk.Name, args)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		out, err := json.Marshal(envelopeFor(resp))
		if err != nil {
			return nil, err
		}
		return mcp.NewToolResultText(string(out)), nil
	}
}
