package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/startup-analyst/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "startup-analyst",
	Short: "Startup investment evaluation pipeline",
	Long:  "Extracts structured company data from pitch documents, runs parallel financial, risk, and market analysis, and synthesizes an investment report.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Local development convenience; missing file is fine.
		_ = godotenv.Load()

		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
