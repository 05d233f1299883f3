package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jobwatch/jobwatch/internal/config"
	"github.com/jobwatch/jobwatch/internal/database"
)

// NewTagsCmd creates the tags command
func NewTagsCmd() *cobra.Command {
	var addNames []string

	cmd := &cobra.Command{
		Use:   "tags",
		Short: "List known tags",
		Long:  "List every tag with its normalized key and display name; --add registers new tags first",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
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

			tagRepo := database.NewTagRepository(db)

			if len(addNames) > 0 {
				if err := tagRepo.EnsureExist(context.Background(), addNames); err != nil {
					return fmt.Errorf("failed to add tags: %w", err)
				}
			}

			tags, err := tagRepo.ListAll(context.Background())
			if err != nil {
				return fmt.Errorf("failed to list tags: %w", err)
			}

			if len(tags) == 0 {
				fmt.Println("No tags")
				return nil
			}

			for _, tag := range tags {
				fmt.Printf("  %-30s %s\n", tag.Key, tag.Name)
			}

			return nil
		},
	}

	cmd.Flags().StringSliceVar(&addNames, "add", nil, "Tag display names to register before listing")

	return cmd
}
