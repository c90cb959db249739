package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/yoyofushi/feedbot/src/config"
)

// CLI represents the main CLI structure
type CLI struct {
	Config   string `help:"Path to the configuration file" type:"path"`
	LogLevel string `help:"Log level override (debug, info, warn, error)"`

	Serve   ServeCmd   `cmd:"" help:"Run the HTTP chat server"`
	Chat    ChatCmd    `cmd:"" help:"Chat with the feeding assistant in the terminal"`
	Migrate MigrateCmd `cmd:"" help:"Database migrations"`
	Tools   ToolsCmd   `cmd:"" help:"Inspect the registered agent tools"`
}

// loadConfig reads the configuration file and applies CLI overrides.
func loadConfig(cli *CLI) (*config.Config, error) {
	cfg, err := config.Load(cli.Config)
	if err != nil {
		return nil, err
	}
	if cli.LogLevel != "" {
		cfg.Logging.Level = cli.LogLevel
	}
	return cfg, nil
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("feedbot"),
		kong.Description("Infant feeding assistant backed by the Ark model platform"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)

	err := ctx.Run(&cli)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
