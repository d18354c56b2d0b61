package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/notebench"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of notebench",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("notebench version %s\n", notebench.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
