package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/magnusoverli/sushe-online-sub003/internal/service"
)

func newReconcileCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Match manual albums against canonical records",
		Long: `List every manually created album alongside the canonical records that
look like the same release, ranked by confidence, plus any integrity problems
found while loading the corpus. Merging a match is a separate step; see
'sushectl merge'.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			injector, err := ctx.ensureContainer()
			if err != nil {
				return err
			}
			svc, err := do.Invoke[*service.ReconcileService](injector)
			if err != nil {
				return err
			}

			report, err := svc.FindManualAlbums(cmd.Context())
			if err != nil {
				return err
			}

			if ctx.json() {
				return writeJSON(cmd, report)
			}

			out := cmd.OutOrStdout()
			if report.TotalManual == 0 {
				fmt.Fprintln(out, "No manual albums in the catalog.")
			} else {
				rows := make([][]string, 0, len(report.ManualAlbums))
				for _, manual := range report.ManualAlbums {
					match := "-"
					confidence := "-"
					if len(manual.Matches) > 0 {
						best := manual.Matches[0]
						match = fmt.Sprintf("%s (%s)", best.AlbumID, best.Artist)
						confidence = strconv.Itoa(best.Confidence)
					}
					rows = append(rows, []string{
						manual.ID,
						manual.Artist,
						manual.Album,
						strconv.Itoa(len(manual.UsedBy)),
						match,
						confidence,
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Manual ID", "Artist", "Album", "Used by", "Best match", "Confidence"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignRight},
				))
				fmt.Fprintf(out, "%d manual albums, %d with canonical candidates\n",
					report.TotalManual, report.TotalWithMatches)
			}

			if report.TotalIntegrityIssues > 0 {
				rows := make([][]string, 0, len(report.IntegrityIssues))
				for _, issue := range report.IntegrityIssues {
					ids := issue.AlbumID
					if len(issue.AlbumIDs) > 0 {
						ids = strings.Join(issue.AlbumIDs, "\n")
					}
					rows = append(rows, []string{
						issue.Severity,
						issue.Type,
						ids,
						issue.Detail,
					})
				}
				fmt.Fprintln(out)
				fmt.Fprintln(out, renderTable(
					[]string{"Severity", "Type", "Album IDs", "Detail"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
				))
				fmt.Fprintf(out, "%d integrity issues\n", report.TotalIntegrityIssues)
			}
			return nil
		},
	}

	return cmd
}
