package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/turtacn/APISource-Intelligence/pkg/client"
)

type runFlags struct {
	country      string
	noWait       bool
	pollInterval time.Duration
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.country, "country", "", "limit the run to one country")
	cmd.Flags().BoolVar(&f.noWait, "no-wait", false, "start the run and exit without polling")
	cmd.Flags().DurationVar(&f.pollInterval, "poll-interval", 2*time.Second, "progress poll interval")
}

// startAndWait starts a run and, unless --no-wait was given, polls progress to
// stderr until the session finishes, then returns the terminal session.
func startAndWait(
	cmd *cobra.Command,
	flags *runFlags,
	start func(ctx context.Context, c *client.Client, req client.DiscoveryRequest) (*client.SessionStarted, error),
	apiName string,
) (*client.Session, error) {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return nil, err
	}
	ctx := cmd.Context()

	started, err := start(ctx, cliCtx.Client, client.DiscoveryRequest{
		APIName: apiName,
		Country: flags.country,
	})
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "session %s started\n", started.SessionID)

	if flags.noWait {
		return nil, PrintResult(cmd, started)
	}

	sess, err := cliCtx.Client.WaitForSession(ctx, started.SessionID, flags.pollInterval,
		func(events []client.ProgressEvent) {
			for _, ev := range events {
				fmt.Fprintf(cmd.ErrOrStderr(), "[%3d%%] %s\n", ev.Percentage, ev.Message)
			}
		})
	if err != nil {
		return nil, err
	}
	if sess.Status == client.SessionFailed {
		return sess, fmt.Errorf("session %s failed: %s", sess.ID, sess.Error)
	}
	return sess, nil
}

// NewDiscoverCmd builds the manufacturer discovery command.
func NewDiscoverCmd() *cobra.Command {
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:   "discover <api-name>",
		Short: "Discover API manufacturers and store new records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := startAndWait(cmd, flags,
				func(ctx context.Context, c *client.Client, req client.DiscoveryRequest) (*client.SessionStarted, error) {
					return c.StartManufacturerDiscovery(ctx, req)
				}, args[0])
			if err != nil || sess == nil {
				return err
			}
			return printManufacturerResult(cmd, sess)
		},
	}
	flags.register(cmd)
	return cmd
}

type manufacturerRunResult struct {
	APIName       string                      `json:"api_name"`
	Country       string                      `json:"country"`
	Existing      []client.ManufacturerRecord `json:"existing"`
	New           []client.ManufacturerRecord `json:"new"`
	InsertedCount int                         `json:"inserted_count"`
	RejectedRows  int                         `json:"rejected_rows"`
	AgentErrors   int                         `json:"agent_errors"`
	Stopped       bool                        `json:"stopped"`
}

func printManufacturerResult(cmd *cobra.Command, sess *client.Session) error {
	var result manufacturerRunResult
	if len(sess.Result) > 0 {
		if err := json.Unmarshal(sess.Result, &result); err != nil {
			return PrintResult(cmd, sess)
		}
	}

	cliCtx, err := GetCLIContext(cmd)
	if err == nil && cliCtx.OutputFormat == "json" {
		return printJSON(cmd, result)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d known, %d new manufacturers for %s\n",
		len(result.Existing), result.InsertedCount, result.APIName)
	if len(result.New) > 0 {
		rows := make([][]string, 0, len(result.New))
		for _, r := range result.New {
			rows = append(rows, []string{r.Manufacturer, r.Country, r.USDMF, r.CEP, r.SourceName})
		}
		fmt.Fprint(cmd.OutOrStdout(),
			FormatTable([]string{"MANUFACTURER", "COUNTRY", "USDMF", "CEP", "SOURCE"}, rows))
	}
	if result.Stopped {
		fmt.Fprintln(cmd.OutOrStdout(), "run was stopped before completion")
	}
	return nil
}

// NewBuyersCmd builds the buyer discovery command.
func NewBuyersCmd() *cobra.Command {
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:   "buyers <api-name>",
		Short: "Find finished-dosage-form buyers and store new records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := startAndWait(cmd, flags,
				func(ctx context.Context, c *client.Client, req client.DiscoveryRequest) (*client.SessionStarted, error) {
					return c.StartBuyerDiscovery(ctx, req)
				}, args[0])
			if err != nil || sess == nil {
				return err
			}
			return printBuyerResult(cmd, sess)
		},
	}
	flags.register(cmd)
	return cmd
}

type buyerRunResult struct {
	APIName       string               `json:"api_name"`
	Country       string               `json:"country"`
	Existing      []client.BuyerRecord `json:"existing"`
	New           []client.BuyerRecord `json:"new"`
	InsertedCount int                  `json:"inserted_count"`
	RelaxedPass   bool                 `json:"relaxed_pass"`
	Stopped       bool                 `json:"stopped"`
}

func printBuyerResult(cmd *cobra.Command, sess *client.Session) error {
	var result buyerRunResult
	if len(sess.Result) > 0 {
		if err := json.Unmarshal(sess.Result, &result); err != nil {
			return PrintResult(cmd, sess)
		}
	}

	cliCtx, err := GetCLIContext(cmd)
	if err == nil && cliCtx.OutputFormat == "json" {
		return printJSON(cmd, result)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d known, %d new buyers for %s\n",
		len(result.Existing), result.InsertedCount, result.APIName)
	if result.RelaxedPass {
		fmt.Fprintln(cmd.OutOrStdout(), "strict pass found nothing; results come from the relaxed pass")
	}
	if len(result.New) > 0 {
		rows := make([][]string, 0, len(result.New))
		for _, r := range result.New {
			rows = append(rows, []string{
				r.Company, r.Country, r.Form, strconv.Itoa(r.Confidence), r.URL,
			})
		}
		fmt.Fprint(cmd.OutOrStdout(),
			FormatTable([]string{"COMPANY", "COUNTRY", "FORM", "CONF", "URL"}, rows))
	}
	return nil
}

//Personal.AI order the ending
