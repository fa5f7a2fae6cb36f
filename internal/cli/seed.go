package cli

import (
	"github.com/spf13/cobra"

	"timed-quiz-service/internal/infra/memory"
	"timed-quiz-service/internal/infra/postgres"
)

// NewSeedCmd writes the built-in question set into Postgres.
func NewSeedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Migrate and load the built-in questions into Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			db, err := openBunDB(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := applyMigrations(cmd.Context(), db, log); err != nil {
				return err
			}
			n, err := postgres.NewSeeder(db).Seed(cmd.Context(), memory.DefaultQuestions())
			if err != nil {
				return err
			}
			log.Info().Int("questions", n).Msg("questions seeded")
			return nil
		},
	}
}
