package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/magnusoverli/sushe-online-sub003/internal/service"
)

func newDuplicatesCommand(ctx *commandContext) *cobra.Command {
	var year string

	cmd := &cobra.Command{
		Use:   "duplicates",
		Short: "Find albums appearing under multiple identifiers",
		Long: `Scan one year of lists across every user and group the rows whose
artist and album describe the same release while referencing different album
IDs. Within a group the identifier written most recently is listed first.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			injector, err := ctx.ensureContainer()
			if err != nil {
				return err
			}
			svc, err := do.Invoke[*service.DedupService](injector)
			if err != nil {
				return err
			}

			report, err := svc.FindDuplicates(cmd.Context(), year)
			if err != nil {
				return err
			}

			if ctx.json() {
				return writeJSON(cmd, report)
			}

			if report.DuplicateGroups == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No duplicates in %s (%d unique albums)\n",
					report.Year, report.UniqueAlbums)
				return nil
			}

			rows := make([][]string, 0, len(report.Duplicates))
			for _, group := range report.Duplicates {
				rows = append(rows, []string{
					group.Artist,
					group.Album,
					strconv.Itoa(len(group.Entries)),
					strings.Join(group.AlbumIDs, "\n"),
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Artist", "Album", "Entries", "Album IDs"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
			))
			fmt.Fprintf(out, "%d duplicate groups across %d unique albums in %s\n",
				report.DuplicateGroups, report.UniqueAlbums, report.Year)
			return nil
		},
	}

	cmd.Flags().StringVar(&year, "year", "", "List year to scan (required)")
	_ = cmd.MarkFlagRequired("year")

	return cmd
}
