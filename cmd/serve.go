package cmd

import (
	"ekyc.io/infrastructure"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the persistence queue",
	RunE: func(cmd *cobra.Command, args []string) error {
		return infrastructure.StartServer(cfg)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
