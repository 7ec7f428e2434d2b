package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	backupCmd := &cobra.Command{
		Use:   "backup <file>",
		Short: "Export full cache state to a backup file",
		Args:  cobra.ExactArgs(1),
		RunE:  runBackup,
	}

	restoreCmd := &cobra.Command{
		Use:   "restore <file>",
		Short: "Import cache state from a backup file",
		Long: `Replay a backup file into the cache. Entries for namespaces not present
in the current configuration are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: runRestore,
	}

	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(restoreCmd)
}

func runBackup(cmd *cobra.Command, args []string) error {
	c, _, err := openCoordinator()
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.Backup(args[0]); err != nil {
		return err
	}

	fmt.Printf("backup written to %s\n", args[0])
	return nil
}

func runRestore(cmd *cobra.Command, args []string) error {
	c, _, err := openCoordinator()
	if err != nil {
		return err
	}
	defer c.Close()

	restored, err := c.Restore(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("restored %d entries from %s\n", restored, args[0])
	return nil
}
