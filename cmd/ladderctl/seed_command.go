package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"wordladder/internal/service"
)

func newSeedCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <file.toml>",
		Short: "Load words, compositions, age bands and screening sets from a TOML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open seed file: %w", err)
			}
			defer file.Close()

			backup, err := service.ReadBackup(file)
			if err != nil {
				return err
			}
			st, err := ctx.openStore(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			counts, err := st.backup.Import(cmd.Context(), backup)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d words, %d components, %d age bands, %d screening sets (%d items)\n",
				counts.Words, counts.Components, counts.AgeBands, counts.ScreeningSets, counts.ScreeningItems)
			return nil
		},
	}
}
