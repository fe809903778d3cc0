package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zulandar/switchboard/internal/db"
	"github.com/zulandar/switchboard/internal/digest"
	"github.com/zulandar/switchboard/internal/notify"
	"github.com/zulandar/switchboard/internal/server"
)

func newServeCmd() *cobra.Command {
	var (
		configPath string
		port       int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Switchboard HTTP server",
		Long:  "Serves the chat ingress plus session and metrics endpoints, and runs the daily digest scheduler when enabled.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, configPath, port)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Switchboard config file")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "port to listen on (overrides config)")
	return cmd
}

func runServe(cmd *cobra.Command, configPath string, port int) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if port <= 0 {
		port = cfg.Server.Port
	}

	gormDB, err := db.Connect(cfg.Database)
	if err != nil {
		return err
	}
	if err := db.AutoMigrate(gormDB); err != nil {
		return err
	}

	orch, err := buildOrchestrator(cfg, gormDB)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Fprintf(cmd.OutOrStdout(), "\nReceived %s, shutting down...\n", sig)
		cancel()
	}()

	if cfg.Digest.Enabled {
		notifier, err := notify.New(cfg.Notify)
		if err != nil {
			return err
		}
		digester := digest.New(gormDB, notifier, cfg.Digest)
		go digester.Run(ctx)
		fmt.Fprintf(cmd.OutOrStdout(), "Daily digest scheduled (%s)\n", cfg.Digest.Cron)
	}

	return server.Start(ctx, server.StartOpts{
		Orchestrator: orch,
		Port:         port,
		Out:          cmd.OutOrStdout(),
	})
}
