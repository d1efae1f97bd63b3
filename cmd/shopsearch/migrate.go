package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/shopsearch/internal/db/postgres"
)

func migrateCMD(cfgPath *string) *cobra.Command {
	var direction string
	var steps int

	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), *cfgPath)
			if err != nil {
				return err
			}
			defer a.close()

			if a.pg == nil {
				return errors.New("migrate requires database.driver: postgres")
			}
			if err := a.pg.Migrate(direction, steps); err != nil {
				return err
			}

			v, dirty, err := a.pg.SchemaVersion()
			if err != nil {
				return err
			}
			a.logger.Info("Migrations applied",
				zap.String("direction", direction),
				zap.Int("steps", steps),
				zap.Uint("version", v),
				zap.Bool("dirty", dirty),
			)
			return nil
		},
	}
	migrate.Flags().StringVar(&direction, "direction", postgres.DirectionUp, "up or down")
	migrate.Flags().IntVar(&steps, "steps", 0, "number of steps (0 = all)")

	status := &cobra.Command{
		Use:   "status",
		Short: "Print the applied schema version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), *cfgPath)
			if err != nil {
				return err
			}
			defer a.close()

			if a.pg == nil {
				return errors.New("migrate status requires database.driver: postgres")
			}
			v, dirty, err := a.pg.SchemaVersion()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version=%d dirty=%t\n", v, dirty)
			return nil
		},
	}
	migrate.AddCommand(status)

	return migrate
}
