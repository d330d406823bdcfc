package cmd

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dealmungchi/fuaas/pkg/errors"
)

var (
	migrateSeed    *string
	migrateReplace *bool
)

func init() {
	migrateSeed = migrateCmd.Flags().String("seed", "", "A seed script to load after creating the schema.")
	migrateReplace = migrateCmd.Flags().Bool("replace", false, "Delete existing quotes before loading the seed script.")
	rootCmd.AddCommand(migrateCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate [--seed <path/to/seed.sql>] [--replace]",
	Short: "Creates the quotes table and optionally loads a seed script.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		if *migrateSeed == "" {
			color.Green("✓ Schema is up to date\n")
			return nil
		}

		script, err := os.ReadFile(*migrateSeed)
		if err != nil {
			return errors.NewInput(*migrateSeed, "failed to read seed script", err)
		}
		if err := s.ApplySeed(ctx, string(script), *migrateReplace); err != nil {
			return err
		}

		count, err := s.CountQuotes(ctx)
		if err != nil {
			return err
		}
		color.Green("✓ Loaded %s, store now holds %d quotes\n", *migrateSeed, count)
		return nil
	},
}
