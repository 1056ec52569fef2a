package cmd

import (
	"context"

	"github.com/compozy/releasewatch/pkg/version"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "releasewatch",
	Short: "Announce new upstream releases once",
	Long: `releasewatch checks the latest upstream release, compares it with the
version stored on disk and sends one notification through Telegram or email
when a new release version appears.`,
	Version:       version.Summary(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

// ExecuteContext runs the root command with ctx, canceled on shutdown signals.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
