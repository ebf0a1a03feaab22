package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/brightwire/fixgate/internal/backup"
)

var resetBackupDestination string

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear the directory, refusing if any session is still authenticated",
	RunE:  runReset,
}

func init() {
	resetCmd.Flags().StringVar(&resetBackupDestination, "backup", "", "snapshot destination (local path or s3://bucket/key) to write before clearing")
}

func runReset(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	engine, err := openEngine(cfg)
	if err != nil {
		return err
	}
	defer engine.Close()

	var writer backup.WriteCloser
	if resetBackupDestination != "" {
		writer, err = backup.Open(context.Background(), resetBackupDestination)
		if err != nil {
			return fmt.Errorf("open backup destination: %w", err)
		}
	}

	resetErr := engine.Reset(writer)
	if writer != nil {
		if closeErr := writer.Close(); closeErr != nil && resetErr == nil {
			resetErr = closeErr
		}
	}
	if resetErr != nil {
		return fmt.Errorf("reset directory: %w", resetErr)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "directory reset")
	return nil
}
