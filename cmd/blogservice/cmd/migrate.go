package cmd

import (
	"github.com/mlbahja/01-blog/internal/config"
	"github.com/mlbahja/01-blog/internal/repository/postgres"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	Long:  `Applies the embedded users and auth_events schema. Safe to run repeatedly.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger()

		dbConfig := config.LoadDatabase()
		if err := dbConfig.Validate(); err != nil {
			return err
		}

		db, err := postgres.New(cmd.Context(), &dbConfig)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.Migrate(cmd.Context()); err != nil {
			return err
		}

		log.Info().Str("database", dbConfig.Database).Msg("schema applied")
		return nil
	},
}
