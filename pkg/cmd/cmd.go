// Package cmd contains the command line applications for the project.
package cmd

import (
	"github.com/spf13/cobra"
)

var (
	configPath string
	debug      bool

	rootCmd = &cobra.Command{
		Use:   "moxbox",
		Short: "Personal self-hosted file storage service",
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", ".", "config file or directory")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "verbose command output")

	registerServeCommand()
	registerConfigsCommands()
	registerDBCommands()
	registerKVCommands()
	registerMQCommands()
	registerVersionCommand()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
