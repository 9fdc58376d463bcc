package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/retailbridge/retailbridge/pkg/audit"
	"github.com/retailbridge/retailbridge/pkg/config"
)

func newAuditCmd() *cobra.Command {
	var configPath string
	var limit int
	var summary bool

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Inspect the tool-invocation audit log",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			logger, err := audit.New(cfg.Audit.DBPath, 0)
			if err != nil {
				return err
			}
			defer logger.Close()

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if summary {
				return printSummary(ctx, logger)
			}
			return printRecent(ctx, logger, limit)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "retailbridge.yaml", "path to config file")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of records to show")
	cmd.Flags().BoolVarP(&summary, "summary", "s", false, "show per-tool aggregates instead of individual calls")
	return cmd
}

func printRecent(ctx context.Context, logger *audit.Logger, limit int) error {
	records, err := logger.Recent(ctx, limit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No audit records.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tREQUEST\tTOOL\tMETHOD\tSTATUS\tERR\tLATENCY")
	for _, rec := range records {
		errMark := ""
		if rec.IsError {
			errMark = "x"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\t%dms\n",
			rec.CreatedAt.Local().Format("01-02 15:04:05"),
			rec.RequestID, rec.Tool, rec.Method, rec.StatusCode, errMark, rec.LatencyMs)
	}
	return w.Flush()
}

func printSummary(ctx context.Context, logger *audit.Logger) error {
	rows, err := logger.Summary(ctx)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Println("No audit records.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TOOL\tCALLS\tERRORS\tAVG LATENCY")
	for _, s := range rows {
		fmt.Fprintf(w, "%s\t%d\t%d\t%.0fms\n", s.Tool, s.Calls, s.Errors, s.AvgLatencyMs)
	}
	return w.Flush()
}
