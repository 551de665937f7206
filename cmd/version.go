package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/unilink/leaderboard/internal/version"
)

var runVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the version of the leaderboard engine",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("Version: %s\nCommit: %s\n", version.GetVersion(), version.GetCommit())
	},
}
