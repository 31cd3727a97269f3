package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	runCampaignID string
	runUserID     string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Process one campaign synchronously",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		userID := runUserID
		if userID == "" {
			campaign, err := env.Store.GetCampaign(ctx, runCampaignID)
			if err != nil {
				return eris.Wrap(err, "load campaign")
			}
			userID = campaign.UserID
		}

		summary, err := env.Pipeline.RunCampaign(ctx, runCampaignID, userID)
		if err != nil {
			return eris.Wrap(err, "run campaign")
		}

		zap.L().Info("campaign run finished",
			zap.String("campaign_id", runCampaignID),
			zap.Int("emailed", summary.Emailed),
			zap.Int("skipped", summary.Skipped),
			zap.Int("failed", summary.Failed),
		)
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&runCampaignID, "campaign", "", "campaign ID to process (required)")
	runCmd.Flags().StringVar(&runUserID, "user", "", "user ID (default: campaign owner)")
	_ = runCmd.MarkFlagRequired("campaign")
	rootCmd.AddCommand(runCmd)
}
