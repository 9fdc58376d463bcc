package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is stamped at build time via -ldflags.
var version = "dev"

func main() {
	root := &cobra.Command{
		Use:           "retailbridge",
		Short:         "MCP gateway for a commerce REST backend",
		Long:          "retailbridge exposes a commerce REST backend as MCP tools\nover stdio and HTTP transports.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newServeCmd())
	root.AddCommand(newStdioCmd())
	root.AddCommand(newAuditCmd())
	root.AddCommand(newToolsCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
