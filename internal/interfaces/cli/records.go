package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// NewRecordsCmd builds the stored-record commands: listing manufacturers and
// buyers, and purging records by import source.
func NewRecordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "records",
		Short: "Query and maintain stored sourcing records",
	}
	cmd.AddCommand(
		newRecordsManufacturersCmd(),
		newRecordsBuyersCmd(),
		newRecordsPurgeCmd(),
	)
	return cmd
}

func newRecordsManufacturersCmd() *cobra.Command {
	var apiName, country string

	cmd := &cobra.Command{
		Use:   "manufacturers",
		Short: "List stored manufacturer records",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			out, err := cliCtx.Client.QueryManufacturers(cmd.Context(), apiName, country)
			if err != nil {
				return err
			}
			if cliCtx.OutputFormat == "json" {
				return printJSON(cmd, out)
			}

			rows := make([][]string, 0, len(out.Records))
			for _, r := range out.Records {
				rows = append(rows, []string{
					r.APIName, r.Manufacturer, r.Country, r.USDMF, r.CEP, r.SourceName,
				})
			}
			fmt.Fprint(cmd.OutOrStdout(), FormatTable(
				[]string{"API", "MANUFACTURER", "COUNTRY", "USDMF", "CEP", "SOURCE"}, rows))
			fmt.Fprintf(cmd.OutOrStdout(), "%d record(s)\n", out.Count)
			return nil
		},
	}
	cmd.Flags().StringVar(&apiName, "api", "", "filter by API name (substring match)")
	cmd.Flags().StringVar(&country, "country", "", "filter by country (substring match)")
	return cmd
}

func newRecordsBuyersCmd() *cobra.Command {
	var apiName, country string

	cmd := &cobra.Command{
		Use:   "buyers",
		Short: "List stored buyer records",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			out, err := cliCtx.Client.QueryBuyers(cmd.Context(), apiName, country)
			if err != nil {
				return err
			}
			if cliCtx.OutputFormat == "json" {
				return printJSON(cmd, out)
			}

			rows := make([][]string, 0, len(out.Records))
			for _, r := range out.Records {
				rows = append(rows, []string{
					r.API, r.Company, r.Country, r.Form, strconv.Itoa(r.Confidence),
				})
			}
			fmt.Fprint(cmd.OutOrStdout(), FormatTable(
				[]string{"API", "COMPANY", "COUNTRY", "FORM", "CONF"}, rows))
			fmt.Fprintf(cmd.OutOrStdout(), "%d record(s)\n", out.Count)
			return nil
		},
	}
	cmd.Flags().StringVar(&apiName, "api", "", "filter by API name (substring match)")
	cmd.Flags().StringVar(&country, "country", "", "filter by country (substring match)")
	return cmd
}

func newRecordsPurgeCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "purge <source-name>",
		Short: "Delete every manufacturer record imported from one source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to purge source %q without --yes", args[0])
			}
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			out, err := cliCtx.Client.PurgeSource(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if cliCtx.OutputFormat == "json" {
				return printJSON(cmd, out)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d record(s) from source %s\n",
				out.Deleted, out.Source)
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the purge")
	return cmd
}

//Personal.AI order the ending
