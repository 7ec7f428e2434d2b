package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/memcoord/memcoord/internal/config"
)

func init() {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		RunE:  runConfigInit,
	}

	configCmd.AddCommand(initCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("config file %s already exists", configFile)
	}

	if err := config.WriteDefault(configFile); err != nil {
		return err
	}

	fmt.Printf("default config written to %s\n", configFile)
	return nil
}
