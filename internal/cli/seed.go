package cli

import (
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"

	"hardcore-quiz-service/internal/infra/postgres"
	redisinfra "hardcore-quiz-service/internal/infra/redis"
)

// NewSeedCmd loads quizzes from a YAML file into Postgres.
func NewSeedCmd(configPath *string) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load hardcore quizzes from a YAML file into the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			defer log.Sync()

			quizzes, err := readQuizFile(file)
			if err != nil {
				return err
			}
			if err := runMigrationsWithConfig(cmd.Context(), cfg, log); err != nil {
				return err
			}

			ctx := cmd.Context()
			pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
			if err != nil {
				return err
			}
			defer pool.Close()

			loader := postgres.NewQuizLoader(pool)
			cache := newRedisClient(cfg)
			for _, quiz := range quizzes {
				if err := loader.SaveQuiz(ctx, quiz); err != nil {
					return err
				}
				if cache != nil {
					if err := redisinfra.NewQuizRepository(cache, loader, 0).Invalidate(ctx, quiz.ID); err != nil {
						log.Warn("quiz cache not invalidated", "quiz_id", quiz.ID, "error", err)
					}
				}
				log.Info("quiz seeded", "quiz_id", quiz.ID, "questions", len(quiz.Questions))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "YAML quiz file (defaults to the bundled sample)")
	return cmd
}
