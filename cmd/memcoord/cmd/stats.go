package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Print cache statistics",
		Long:  `Print the aggregate entry counts and sizes per namespace as JSON.`,
		RunE:  runStats,
	}

	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	c, _, err := openCoordinator()
	if err != nil {
		return err
	}
	defer c.Close()

	pretty, err := json.MarshalIndent(c.Stats(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode stats: %w", err)
	}

	fmt.Println(string(pretty))
	return nil
}
