package cmd

import (
	"github.com/compozy/releasewatch/internal/orchestrator"
	"github.com/spf13/cobra"
)

// NewRunCmd creates the run command
func NewRunCmd(c *container) *cobra.Command {
	var (
		dryRun           bool
		restoreOnFailure bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Check for a new release and notify once",
		Long: `Fetch the latest release name, compare it with the stored version and,
when a new release version appears, store it and send one notification.

Runs without a new release exit successfully without side effects.
With --restore-on-failure a failed notification restores the previous
version so the next run announces the release again.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// config validation comes first so missing credentials fail before any I/O
			if err := c.cfg.Validate(); err != nil {
				return err
			}
			orch, err := c.newWatchOrchestrator()
			if err != nil {
				return err
			}
			opts := orchestrator.RunOptions{
				DryRun:                 dryRun,
				RestoreOnNotifyFailure: restoreOnFailure,
			}
			_, err = orch.Execute(cmd.Context(), c.cfg, opts)
			return err
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Detect and log without storing or sending")
	cmd.Flags().BoolVar(&restoreOnFailure, "restore-on-failure", false,
		"Restore the previous version when the notification fails")
	return cmd
}
