package main

import (
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:         "version",
	Short:       "Print the version number",
	Annotations: map[string]string{"config": "skip"},
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("%s version %s\n", appName, version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
