package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run evidence enrichment for all pending leads",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		e, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		if err := e.Store.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		summary, err := e.Coordinator.Run(ctx)
		if err != nil {
			return eris.Wrap(err, "evidence run")
		}

		fmt.Printf("Run complete: %d inserts, %d failures, %.1fs elapsed\n",
			summary.Inserted, summary.Failed, summary.Elapsed.Seconds())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
