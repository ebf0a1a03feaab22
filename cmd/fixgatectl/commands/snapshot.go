package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/brightwire/fixgate/internal/backup"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot <destination>",
	Short: "Copy the live directory file to a backup destination without clearing it",
	Args:  cobra.ExactArgs(1),
	RunE:  runSnapshot,
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	engine, err := openEngine(cfg)
	if err != nil {
		return err
	}
	defer engine.Close()

	writer, err := backup.Open(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("open backup destination: %w", err)
	}

	snapshotErr := engine.Snapshot(writer)
	closeErr := writer.Close()
	if snapshotErr != nil {
		return fmt.Errorf("snapshot directory: %w", snapshotErr)
	}
	if closeErr != nil {
		return fmt.Errorf("close backup destination: %w", closeErr)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "directory snapshotted to %s\n", args[0])
	return nil
}
