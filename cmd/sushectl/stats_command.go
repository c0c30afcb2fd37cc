package main

import (
	"fmt"
	"strconv"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/magnusoverli/sushe-online-sub003/internal/di/providers"
)

func newStatsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show record counts for the store",
		RunE: func(cmd *cobra.Command, args []string) error {
			injector, err := ctx.ensureContainer()
			if err != nil {
				return err
			}
			storeHandle, err := do.Invoke[*providers.StoreHandle](injector)
			if err != nil {
				return err
			}

			stats, err := storeHandle.GetStats(cmd.Context())
			if err != nil {
				return err
			}

			if ctx.json() {
				return writeJSON(cmd, stats)
			}

			rows := [][]string{
				{"Albums", strconv.Itoa(stats.Albums)},
				{"  manual", strconv.Itoa(stats.ManualAlbums)},
				{"  internal", strconv.Itoa(stats.InternalAlbums)},
				{"Lists", strconv.Itoa(stats.Lists)},
				{"List rows", strconv.Itoa(stats.Rows)},
				{"Users", strconv.Itoa(stats.Users)},
				{"Exclusions", strconv.Itoa(stats.Exclusions)},
				{"Merge events", strconv.Itoa(stats.MergeEvents)},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Record", "Count"},
				rows,
				[]columnAlignment{alignLeft, alignRight},
			))
			return nil
		},
	}

	return cmd
}
