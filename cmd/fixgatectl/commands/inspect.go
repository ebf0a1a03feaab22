package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var inspectJSON bool

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "List every session id the directory has ever assigned",
	RunE:  runInspect,
}

func init() {
	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "print sessions as JSON instead of a table")
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	engine, err := openEngine(cfg)
	if err != nil {
		return err
	}
	defer engine.Close()

	sessions := engine.AllSessions()

	if inspectJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(sessions)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SESSION ID\tSENDER\tTARGET\tAUTHENTICATED\tSEQUENCE\tLAST LOGON")
	for _, s := range sessions {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%t\t%d\t%d\n",
			s.SessionID, s.CompositeKey.SenderCompID, s.CompositeKey.TargetCompID,
			engine.IsAuthenticated(s.SessionID), s.SequenceIndex, s.LastLogonTime)
	}
	return tw.Flush()
}
