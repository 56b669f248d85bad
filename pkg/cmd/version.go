package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Flapjacck/moxbox/pkg/api"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "print version and build information",
	Run: func(cmd *cobra.Command, args []string) {
		info := api.GetBuildInfo()

		fmt.Fprintf(cmd.OutOrStdout(), "moxbox %s\n", info.Version)

		if info.Commit != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "commit:  %s\n", info.Commit)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "go:      %s\n", info.GoVersion)
		fmt.Fprintf(cmd.OutOrStdout(), "platform: %s/%s\n", info.OS, info.Arch)
	},
}

// registerVersionCommand 注册 version 命令.
func registerVersionCommand() {
	rootCmd.AddCommand(versionCmd)
}
