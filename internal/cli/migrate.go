package cli

import (
	"fmt"

	migrate "github.com/rubenv/sql-migrate"
	"github.com/spf13/cobra"

	"github.com/johnquangdev/capture-stitcher/internal/infrastructure/database"
)

// NewMigrateCmd applies or rolls back the SQL migrations
func NewMigrateCmd(deps *Dependencies) *cobra.Command {
	var (
		dir   string
		steps int
	)

	cmd := &cobra.Command{
		Use:       "migrate [up|down]",
		Short:     "Apply or roll back database migrations",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			direction := migrate.Up
			if args[0] == "down" {
				direction = migrate.Down
				// rolling back everything needs an explicit step count
				if steps == 0 {
					steps = 1
				}
			}

			db, err := database.NewPostgresDB(deps.Config, deps.Logger)
			if err != nil {
				return err
			}
			defer database.CloseDB(db)

			n, err := database.Migrate(db, dir, direction, steps, deps.Logger)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✅ Successfully applied %d migration(s) %s\n", n, args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", database.MigrationsDir, "migrations directory")
	cmd.Flags().IntVar(&steps, "steps", 0, "maximum number of migrations to run (0 = all for up, 1 for down)")

	return cmd
}
