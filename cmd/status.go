package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/algominds35/email-tool/internal/model"
)

var statusCmd = &cobra.Command{
	Use:   "status <campaign-id>",
	Short: "Print campaign progress",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return eris.Wrap(err, "init store")
		}
		defer st.Close() //nolint:errcheck

		campaign, err := st.GetCampaign(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "load campaign")
		}

		fmt.Printf("Campaign:  %s (%s)\n", campaign.Name, campaign.ID)
		fmt.Printf("Status:    %s\n", campaign.Status)
		fmt.Printf("Progress:  %d/%d leads\n", campaign.ProcessedLeads, campaign.TotalLeads)
		if campaign.ProcessedAt != nil {
			fmt.Printf("Processed: %s\n", campaign.ProcessedAt.Format("2006-01-02 15:04:05 MST"))
		}

		if campaign.Status == model.CampaignStatusComplete || campaign.Status == model.CampaignStatusProcessing {
			emails, err := st.ListEmails(ctx, campaign.ID)
			if err != nil {
				return eris.Wrap(err, "list emails")
			}
			byStatus := map[model.EmailStatus]int{}
			for _, e := range emails {
				byStatus[e.Status]++
			}
			fmt.Printf("Emails:    %d generated, %d edited, %d approved\n",
				byStatus[model.EmailStatusGenerated], byStatus[model.EmailStatusEdited], byStatus[model.EmailStatusApproved])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
