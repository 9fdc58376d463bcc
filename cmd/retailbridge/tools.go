package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/retailbridge/retailbridge/pkg/catalog"
)

func newToolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the tools the gateway exposes",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tREQUIRED\tDESCRIPTION")
			for _, tool := range catalog.Tools() {
				fmt.Fprintf(w, "%s\t%s\t%s\n",
					tool.Name,
					strings.Join(requiredArgs(tool.InputSchema), ","),
					tool.Description)
			}
			return w.Flush()
		},
	}
}

// requiredArgs pulls the required list out of a tool's JSON Schema.
func requiredArgs(inputSchema any) []string {
	m, ok := inputSchema.(map[string]any)
	if !ok {
		return nil
	}
	required, ok := m["required"].([]string)
	if !ok {
		return nil
	}
	return required
}
