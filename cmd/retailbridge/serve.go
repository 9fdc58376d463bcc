package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/retailbridge/retailbridge/pkg/audit"
	"github.com/retailbridge/retailbridge/pkg/backend"
	"github.com/retailbridge/retailbridge/pkg/catalog"
	"github.com/retailbridge/retailbridge/pkg/config"
	"github.com/retailbridge/retailbridge/pkg/invoker"
	"github.com/retailbridge/retailbridge/pkg/mcp"
	"github.com/retailbridge/retailbridge/pkg/transport"
)

func newServeCmd() *cobra.Command {
	var configPath string
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP transport",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if listen != "" {
				cfg.Listen = listen
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

			srv := transport.NewHTTP(dispatcher, dispatcher.Capabilities())
			log.Printf("serve: backend %s, %d tools", cfg.Backend.BaseURL, len(catalog.Tools()))
			return srv.ListenAndServe(ctx, cfg.Listen)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "retailbridge.yaml", "path to config file")
	cmd.Flags().StringVarP(&listen, "listen", "l", "", "listen address (overrides config)")
	return cmd
}

// buildDispatcher assembles the shared pipeline used by both transports.
// The returned auditor is nil when auditing is disabled.
func buildDispatcher(cfg *config.Config) (*mcp.Dispatcher, *audit.Logger, error) {
	client := backend.New(cfg.Backend.BaseURL, cfg.Backend.Timeout, version)

	var auditor *audit.Logger
	if cfg.Audit.Enabled {
		var err error
		auditor, err = audit.New(cfg.Audit.DBPath, cfg.Audit.MaxAge)
		if err != nil {
			return nil, nil, err
		}
	}

	// A nil *audit.Logger must not reach the interface field.
	var rec invoker.Auditor
	if auditor != nil {
		rec = auditor
	}

	inv := invoker.New(client, rec)
	dispatcher := mcp.NewDispatcher(inv, catalog.Tools(),
		cfg.Server.ProtocolVersion, cfg.Server.Name, versionOr(cfg.Server.Version))
	return dispatcher, auditor, nil
}

// versionOr prefers the build-stamped version over the config default.
func versionOr(fallback string) string {
	if version != "dev" {
		return version
	}
	return fallback
}
