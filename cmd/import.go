package main

import (
	"encoding/csv"
	"os"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/algominds35/email-tool/internal/model"
)

var (
	importCSVPath string
	importUserID  string
	importName    string
	importProcess bool
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Create a campaign from a CSV of leads",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		leads, err := readLeadCSV(importCSVPath)
		if err != nil {
			return err
		}

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		var campaign *model.Campaign
		if importProcess {
			campaign, err = env.Dispatcher.CreateAndEnqueue(ctx, importUserID, importName, leads)
		} else {
			campaign, err = env.Store.CreateCampaign(ctx, importUserID, importName, leads)
		}
		if err != nil {
			return eris.Wrap(err, "create campaign")
		}

		zap.L().Info("import complete",
			zap.String("campaign_id", campaign.ID),
			zap.Int("leads", campaign.TotalLeads),
			zap.Bool("processing", importProcess),
			zap.String("csv", importCSVPath),
		)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importCSVPath, "csv", "", "path to CSV file (required)")
	importCmd.Flags().StringVar(&importUserID, "user", "", "owning user ID (required)")
	importCmd.Flags().StringVar(&importName, "name", "Imported campaign", "campaign name")
	importCmd.Flags().BoolVar(&importProcess, "process", false, "start processing immediately")
	_ = importCmd.MarkFlagRequired("csv")
	_ = importCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(importCmd)
}

// readLeadCSV parses and normalizes the lead list. Formatting concerns stay
// here at the edge: the pipeline only ever sees clean LeadInput values.
func readLeadCSV(path string) ([]model.LeadInput, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "open csv")
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true

	dec, err := csvutil.NewDecoder(reader)
	if err != nil {
		return nil, eris.Wrap(err, "read csv header")
	}

	var leads []model.LeadInput
	if err := dec.Decode(&leads); err != nil {
		return nil, eris.Wrap(err, "decode csv")
	}

	titleCaser := cases.Title(language.English)
	for i := range leads {
		leads[i].Email = strings.ToLower(strings.TrimSpace(leads[i].Email))
		leads[i].FirstName = normalizeName(titleCaser, leads[i].FirstName)
		leads[i].LastName = normalizeName(titleCaser, leads[i].LastName)
		leads[i].Company = strings.TrimSpace(leads[i].Company)
		leads[i].Title = strings.TrimSpace(leads[i].Title)
		leads[i].LinkedInURL = strings.TrimSpace(leads[i].LinkedInURL)
		leads[i].CompanyWebsite = strings.TrimSpace(leads[i].CompanyWebsite)
	}
	return leads, nil
}

// normalizeName title-cases names that arrive all-lower or all-upper from
// CRM exports, leaving mixed-case names (McAllister, van der Berg) alone.
func normalizeName(caser cases.Caser, name string) string {
	name = strings.TrimSpace(name)
	if name == strings.ToLower(name) || name == strings.ToUpper(name) {
		return caser.String(strings.ToLower(name))
	}
	return name
}
