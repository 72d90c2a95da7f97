package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/turtacn/APISource-Intelligence/internal/app"
)

// NewServeCmd runs the API server in the foreground, using the same
// configuration sources as the other commands.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the API server in the foreground",
		Long: "serve starts the full apiserver (storage, LLM agents, search backends,\n" +
			"sessions, REST interface) inside the current process and blocks until\n" +
			"interrupted.  Equivalent to running the apiserver binary.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return app.RunServer(ctx, cliCtx.Config, cliCtx.Logger)
		},
	}
}

//Personal.AI order the ending
