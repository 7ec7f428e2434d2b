package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cleanupCmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Sweep expired entries",
		Long:  `Remove every entry across all namespaces whose TTL has lapsed.`,
		RunE:  runCleanup,
	}

	rootCmd.AddCommand(cleanupCmd)
}

func runCleanup(cmd *cobra.Command, args []string) error {
	c, _, err := openCoordinator()
	if err != nil {
		return err
	}
	defer c.Close()

	removed, err := c.Cleanup()
	if err != nil {
		return err
	}

	fmt.Printf("removed %d expired entries\n", removed)
	return nil
}
