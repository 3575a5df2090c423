package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mechkit/mechkit/pkg/mechkit"
	"github.com/mechkit/mechkit/pkg/runner"
)

var serveDrainTimeout time.Duration

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the WebSocket gateway",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().DurationVar(&serveDrainTimeout, "drain-timeout", 10*time.Second,
		"How long shutdown waits for in-flight work")
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := mechkit.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	eng, err := mechkit.NewEngine(mechkit.EngineOptions{Config: cfg})
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	run := runner.NewLifecycleRunner(runner.DrainFunc(eng.Stop), runner.Hooks{
		OnStart: eng.Start,
	}, serveDrainTimeout)
	return run.Run(ctx)
}
