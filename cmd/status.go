package cmd

import (
	"fmt"
	"time"

	"github.com/compozy/releasewatch/internal/orchestrator"
	"github.com/spf13/cobra"
)

// NewStatusCmd creates the status command
func NewStatusCmd(c *container) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the stored version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			report, err := orchestrator.Status(cmd.Context(), c.versionRepo, c.runRepo)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "State file:\t%s\n", report.Path)
			fmt.Fprintf(out, "Version:\t%s\n", safeValue(report.Version, "none"))
			fmt.Fprintf(out, "Release:\t%t\n", report.IsRelease)
			switch {
			case report.LastRun != nil:
				run := report.LastRun
				fmt.Fprintf(out, "Last run:\t%s %s at %s\n", run.ID, run.Status, run.UpdatedAt.Format(time.RFC3339))
				if run.NoOpReason != "" {
					fmt.Fprintf(out, "Reason:\t%s\n", run.NoOpReason)
				}
				if run.Error != "" {
					fmt.Fprintf(out, "Error:\t%s\n", run.Error)
				}
			case report.LastRunError != "":
				fmt.Fprintf(out, "Last run:\tunreadable (%s)\n", report.LastRunError)
			default:
				fmt.Fprintf(out, "Last run:\tnone\n")
			}
			return nil
		},
	}
}
