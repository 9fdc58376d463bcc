package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/retailbridge/retailbridge/pkg/config"
	"github.com/retailbridge/retailbridge/pkg/transport"
)

func newStdioCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "stdio",
		Short: "Run the stdio transport",
		Long:  "Serves MCP over stdin/stdout, one JSON-RPC message per line.\nIntended to be launched by an MCP client.",
		RunE: func(cmd *cobra.Command, args []string) error {
			// stdout carries the protocol; all logging goes to stderr.
			log.SetOutput(os.Stderr)

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			dispatcher, auditor, err := buildDispatcher(cfg)
			if err != nil {
				return err
			}
			if auditor != nil {
				defer auditor.Close()
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log.Printf("stdio: serving %s against %s", cfg.Server.Name, cfg.Backend.BaseURL)
			return transport.NewStdio(dispatcher).Run(ctx, os.Stdin, os.Stdout)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "retailbridge.yaml", "path to config file")
	return cmd
}
