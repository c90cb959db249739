package main

import (
	"context"
	"fmt"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/shirou/gopsutil/v3/host"

	"github.com/yoyofushi/feedbot/src/app"
	"github.com/yoyofushi/feedbot/src/feedagent"
	"github.com/yoyofushi/feedbot/src/server"
)

// ServeCmd runs the HTTP chat server.
type ServeCmd struct {
	Addr string `help:"Listen address (overrides config)"`
}

// Run executes the serve command.
func (c *ServeCmd) Run(ctx *kong.Context, cli *CLI) error {
	cfg, err := loadConfig(cli)
	if err != nil {
		return err
	}
	logger := createServerLogger(cfg.Logging)

	cctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	appInstance, err := app.New(cctx, cfg, logger)
	if err != nil {
		return err
	}
	defer appInstance.Close()

	tools, err := feedagent.ToolDefinitions(logger)
	if err != nil {
		return fmt.Errorf("failed to build tool catalog: %w", err)
	}

	addr := cfg.Server.Addr
	if c.Addr != "" {
		addr = c.Addr
	}

	srv, err := server.New(server.Config{
		Addr:   addr,
		Engine: appInstance.Engine,
		Tools:  tools,
		Logger: logger,
	})
	if err != nil {
		return err
	}

	logger.Info("starting feedbot server",
		"addr", addr,
		"os", osVersion(),
		"fast_model", cfg.Provider.FastModel,
		"advanced_model", cfg.Provider.AdvancedModel,
	)

	return srv.Run(cctx)
}

// osVersion returns detailed OS version information for the startup log.
func osVersion() string {
	info, err := host.Info()
	if err == nil {
		if info.PlatformVersion != "" {
			return fmt.Sprintf("%s %s", info.Platform, info.PlatformVersion)
		}
		return info.Platform
	}

	// Fallback to basic OS name if gopsutil fails
	return runtime.GOOS
}
