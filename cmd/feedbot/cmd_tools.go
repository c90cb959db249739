package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/alecthomas/kong"

	"github.com/yoyofushi/feedbot/src/feedagent"
)

// ToolsCmd lists the registered agent tools.
type ToolsCmd struct {
	Format string `enum:"table,json" default:"table" help:"Output format (table, json)"`
}

// Run executes the tools command.
func (c *ToolsCmd) Run(ctx *kong.Context, cli *CLI) error {
	logger := createCLILogger(cli.LogLevel)

	tools, err := feedagent.ToolDefinitions(logger)
	if err != nil {
		return fmt.Errorf("failed to build tool catalog: %w", err)
	}

	if c.Format == "json" {
		out, err := json.MarshalIndent(tools, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tDESCRIPTION")
	for _, tool := range tools {
		fmt.Fprintf(w, "%s\t%s\n", tool.Function.Name, tool.Function.Description)
	}
	return w.Flush()
}
