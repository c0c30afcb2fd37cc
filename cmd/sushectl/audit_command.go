package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/magnusoverli/sushe-online-sub003/internal/service"
)

func newAuditCommand(ctx *commandContext) *cobra.Command {
	var year string

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Report duplicate identities and the repoints a fix would apply",
		Long: `Produce a read-only snapshot of one year: every album identity that
appears under multiple IDs, plus the canonical identifier a fix pass would
converge each group on. Nothing is modified.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			injector, err := ctx.ensureContainer()
			if err != nil {
				return err
			}
			svc, err := do.Invoke[*service.DedupService](injector)
			if err != nil {
				return err
			}

			report, err := svc.GetAuditReport(cmd.Context(), year)
			if err != nil {
				return err
			}

			if ctx.json() {
				return writeJSON(cmd, report)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Audit for %s (generated %s)\n", report.Year,
				report.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
			fmt.Fprintf(out, "  rows scanned:      %d\n", report.Summary.TotalAlbumsScanned)
			fmt.Fprintf(out, "  unique albums:     %d\n", report.Summary.UniqueAlbums)
			fmt.Fprintf(out, "  split identities:  %d\n", report.Summary.AlbumsWithMultipleIDs)

			if !report.Preview.ChangesRequired {
				fmt.Fprintln(out, "\nNo changes required.")
				return nil
			}

			rows := make([][]string, 0, len(report.Preview.Changes))
			for _, change := range report.Preview.Changes {
				sources := make([]string, 0, len(change.AffectedEntries))
				seen := make(map[string]struct{}, len(change.AffectedEntries))
				for _, entry := range change.AffectedEntries {
					if _, ok := seen[entry.AlbumID]; ok {
						continue
					}
					seen[entry.AlbumID] = struct{}{}
					sources = append(sources, entry.AlbumID)
				}
				rows = append(rows, []string{
					change.Artist,
					change.Album,
					change.CanonicalAlbumID,
					strings.Join(sources, "\n"),
					strconv.Itoa(len(change.AffectedEntries)),
				})
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, renderTable(
				[]string{"Artist", "Album", "Canonical ID", "Repoint from", "Rows to update"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
			))
			fmt.Fprintf(out, "%d repoints pending. Run 'sushectl fix --year %s --actor <id> --apply' to converge.\n",
				len(report.Preview.Changes), report.Year)
			return nil
		},
	}

	cmd.Flags().StringVar(&year, "year", "", "List year to audit (required)")
	_ = cmd.MarkFlagRequired("year")

	return cmd
}
