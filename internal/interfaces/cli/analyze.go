package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/turtacn/APISource-Intelligence/pkg/client"
)

// NewAnalyzeCmd builds the synthesis patent landscape analysis command.
func NewAnalyzeCmd() *cobra.Command {
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:   "analyze <api-name>",
		Short: "Analyze the synthesis patent landscape for an API",
		Long: "analyze runs patent-focused web searches for the API and its name\n" +
			"variants, classifies each hit as synthesis- or formulation-oriented,\n" +
			"and scores route viability from reported yields.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := startAndWait(cmd, flags,
				func(ctx context.Context, c *client.Client, req client.DiscoveryRequest) (*client.SessionStarted, error) {
					return c.StartSynthesisAnalysis(ctx, req)
				}, args[0])
			if err != nil || sess == nil {
				return err
			}
			return printAnalysisResult(cmd, sess)
		},
	}
	flags.register(cmd)
	return cmd
}

type analysisFinding struct {
	Title          string `json:"title"`
	URL            string `json:"url"`
	SourceKind     string `json:"source_kind"`
	Classification struct {
		SynthesisScore   int  `json:"synthesis_score"`
		FormulationScore int  `json:"formulation_score"`
		Decision         bool `json:"decision"`
	} `json:"classification"`
	Viability struct {
		Score int    `json:"score"`
		Level string `json:"level"`
	} `json:"viability"`
}

type analysisRunResult struct {
	APIName        string            `json:"api_name"`
	QueriesRun     int               `json:"queries_run"`
	ResultsScanned int               `json:"results_scanned"`
	Findings       []analysisFinding `json:"findings"`
	Suggestions    []string          `json:"suggestions"`
	Stopped        bool              `json:"stopped"`
}

func printAnalysisResult(cmd *cobra.Command, sess *client.Session) error {
	var result analysisRunResult
	if len(sess.Result) > 0 {
		if err := json.Unmarshal(sess.Result, &result); err != nil {
			return PrintResult(cmd, sess)
		}
	}

	cliCtx, err := GetCLIContext(cmd)
	if err == nil && cliCtx.OutputFormat == "json" {
		return printJSON(cmd, result)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d queries, %d results scanned, %d relevant findings for %s\n",
		result.QueriesRun, result.ResultsScanned, len(result.Findings), result.APIName)
	if len(result.Findings) > 0 {
		rows := make([][]string, 0, len(result.Findings))
		for _, f := range result.Findings {
			rows = append(rows, []string{
				truncate(f.Title, 60), f.SourceKind, f.Viability.Level, f.URL,
			})
		}
		fmt.Fprint(cmd.OutOrStdout(),
			FormatTable([]string{"TITLE", "SOURCE", "VIABILITY", "URL"}, rows))
	}
	for _, s := range result.Suggestions {
		fmt.Fprintf(cmd.OutOrStdout(), "hint: %s\n", s)
	}
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

//Personal.AI order the ending
