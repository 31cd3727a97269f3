package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/algominds35/email-tool/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "email-tool",
	Short: "Research-driven cold email generation",
	Long:  "Researches sales leads across LinkedIn, company websites, and news, picks the strongest outreach angle, and generates scored cold emails per campaign.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
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
