package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/startup-analyst/internal/model"
)

var (
	analyzeCompany string
	analyzeWriteup string
	analyzeOutput  string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [documents...]",
	Short: "Evaluate a startup from its documents",
	Long:  "Runs the full evaluation over the given document files plus an optional writeup and prints the investment report as JSON.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if analyzeCompany == "" && len(args) == 0 {
			return eris.New("provide at least one document or --company")
		}

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		req := model.AnalysisRequest{
			CompanyName: analyzeCompany,
			Documents:   args,
			Writeup:     analyzeWriteup,
		}

		report := env.Orchestrator.Run(ctx, req)

		zap.L().Info("analysis complete",
			zap.String("company", report.Metadata.CompanyName),
			zap.Float64("score", report.ExecutiveSummary.OverallScore),
			zap.String("recommendation", report.ExecutiveSummary.Recommendation),
		)

		out, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return eris.Wrap(err, "encode report")
		}

		if analyzeOutput != "" {
			if err := os.WriteFile(analyzeOutput, out, 0o644); err != nil {
				return eris.Wrap(err, "write report")
			}
			return nil
		}
		cmd.Println(string(out))
		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeCompany, "company", "", "company name hint")
	analyzeCmd.Flags().StringVar(&analyzeWriteup, "writeup", "", "free-form analyst writeup to include")
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "output", "o", "", "write the report JSON to a file instead of stdout")
	rootCmd.AddCommand(analyzeCmd)
}
