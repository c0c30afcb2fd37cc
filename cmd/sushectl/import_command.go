package main

import (
	"fmt"
	"time"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/magnusoverli/sushe-online-sub003/internal/migrate"
)

func newImportCommand(ctx *commandContext) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a legacy SQLite export",
		Long: `Read a legacy SQLite export and load its users, albums, lists, and
list rows into the store. The export file is opened read-only. Albums that
collapse to the same identity are deduplicated to the first occurrence, and
rows referencing unknown albums are kept with their snapshot metadata.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			injector, err := ctx.ensureContainer()
			if err != nil {
				return err
			}
			importer, err := do.Invoke[*migrate.Importer](injector)
			if err != nil {
				return err
			}

			result, err := importer.Run(cmd.Context(), dbPath)
			if err != nil {
				return err
			}

			if ctx.json() {
				return writeJSON(cmd, result)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Import finished in %s\n", result.Duration.Round(time.Millisecond))
			fmt.Fprintf(out, "  users:           %d\n", result.UsersImported)
			fmt.Fprintf(out, "  albums:          %d (%d deduped, %d skipped)\n",
				result.AlbumsImported, result.AlbumsDeduped, result.AlbumsSkipped)
			fmt.Fprintf(out, "  lists:           %d (%d skipped)\n",
				result.ListsImported, result.ListsSkipped)
			fmt.Fprintf(out, "  rows:            %d (%d detached, %d skipped)\n",
				result.RowsImported, result.RowsDetached, result.RowsSkipped)
			for _, warning := range result.Warnings {
				fmt.Fprintf(out, "  warning: %s\n", warning)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "Path to the legacy SQLite export (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}
