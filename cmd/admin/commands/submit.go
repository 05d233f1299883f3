package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jobwatch/jobwatch/internal/config"
	"github.com/jobwatch/jobwatch/internal/database"
	"github.com/jobwatch/jobwatch/internal/models"
	"github.com/jobwatch/jobwatch/internal/services/checklist"
)

// NewSubmitCmd creates the submit command
func NewSubmitCmd() *cobra.Command {
	var dateFlag string

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a day's checklist",
		Long:  "Consume a day's completed checklist entries and advance visit history. Defaults to yesterday in the scheduler zone.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			date := models.Today(cfg.SchedulerLocation()).AddDays(-1)
			if dateFlag != "" {
				date, err = models.ParseDate(dateFlag)
				if err != nil {
					return fmt.Errorf("invalid --date %q: expected YYYY-MM-DD", dateFlag)
				}
			}

			db, err := database.New(cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer func() {
				if err := db.Close(); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
				}
			}()

			service := checklist.New(database.NewChecklistRepository(db), zap.NewNop())

			advanced, err := service.SubmitDay(context.Background(), date)
			if err != nil {
				return fmt.Errorf("failed to submit %s: %w", date, err)
			}

			if len(advanced) == 0 {
				fmt.Printf("No completed entries for %s\n", date)
				return nil
			}

			fmt.Printf("Advanced %d companies for %s:\n", len(advanced), date)
			for _, company := range advanced {
				if names := models.TagDisplayNames(company.Tags); len(names) > 0 {
					fmt.Printf("  - %s (last visited %s) [%s]\n", company.Name, company.LastVisitedOn, strings.Join(names, ", "))
					continue
				}
				fmt.Printf("  - %s (last visited %s)\n", company.Name, company.LastVisitedOn)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&dateFlag, "date", "", "Date to submit (YYYY-MM-DD, default yesterday)")

	return cmd
}
