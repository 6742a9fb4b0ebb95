package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the q63 CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "q63-server",
		Short: "Q63 tracker API server",
		Long: `q63-server serves the account, password reset, progress, and
admin export API for the 63-day Q63 habit tracker.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (YAML)")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewCheckConfigCmd())

	return cmd
}

// NewCheckConfigCmd creates the check-config subcommand.
func NewCheckConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check-config",
		Short: "Validate configuration and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			engineCfg := cfg.Engine()
			if err := engineCfg.Validate(); err != nil {
				return err
			}
			cmd.Println("configuration ok")
			return nil
		},
	}
	registerConfigFlags(cmd)
	return cmd
}
