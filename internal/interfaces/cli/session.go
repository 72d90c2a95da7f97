package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewSessionCmd builds the session inspection commands.
func NewSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Inspect and control discovery sessions",
	}
	cmd.AddCommand(
		newSessionGetCmd(),
		newSessionProgressCmd(),
		newSessionStopCmd(),
	)
	return cmd
}

func newSessionGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <session-id>",
		Short: "Show one session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			sess, err := cliCtx.Client.GetSession(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, sess)
		},
	}
}

func newSessionProgressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "progress <session-id>",
		Short: "Show progress events buffered since the last poll",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			progress, err := cliCtx.Client.GetProgress(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if cliCtx.OutputFormat == "json" {
				return printJSON(cmd, progress)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "session %s: %s\n", progress.SessionID, progress.Status)
			for _, ev := range progress.Events {
				fmt.Fprintf(cmd.OutOrStdout(), "[%3d%%] %s\n", ev.Percentage, ev.Message)
			}
			return nil
		},
	}
}

func newSessionStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop <session-id>",
		Short: "Request cooperative cancellation of a running session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			if err := cliCtx.Client.StopSession(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "stop requested for session %s\n", args[0])
			return nil
		},
	}
}

//Personal.AI order the ending
