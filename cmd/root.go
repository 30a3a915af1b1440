package cmd

import (
	"os"

	"ekyc.io/infrastructure/env"
	"ekyc.io/infrastructure/logger"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var cfg *env.Config

var rootCmd = &cobra.Command{
	Use:   "ekyc",
	Short: "Identity verification signals and decisions",
	Long:  "Scores document authenticity, selfie liveness and declared data for Yemeni national IDs and passports, and fuses them into one decision.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configDir, _ := cmd.Flags().GetString("config-dir")
		c, err := env.Load(configDir)
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		cfg = c
		logger.InitializeLogger()
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("config-dir", ".", "directory holding config.yaml")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
