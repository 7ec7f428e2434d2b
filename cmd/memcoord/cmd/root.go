package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/memcoord/memcoord/coordinator"
	"github.com/memcoord/memcoord/internal/config"
)

var (
	configFile string
)

var rootCmd = &cobra.Command{
	Use:   "memcoord",
	Short: "Namespaced persistent memory cache for the reporting pipeline",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "./config.yaml", "config file (default is ./config.yaml)")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openCoordinator loads the configuration and constructs the coordinator
// the subcommands operate on.
func openCoordinator() (*coordinator.Coordinator, *config.Config, error) {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, nil, err
	}

	c, err := coordinator.New(cfg.ToCoordinator())
	if err != nil {
		return nil, nil, err
	}

	return c, cfg, nil
}
