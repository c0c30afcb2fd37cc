package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/magnusoverli/sushe-online-sub003/internal/service"
)

func newFixCommand(ctx *commandContext) *cobra.Command {
	var (
		year  string
		actor string
		apply bool
	)

	cmd := &cobra.Command{
		Use:   "fix",
		Short: "Converge duplicate identities onto canonical identifiers",
		Long: `Repoint every duplicated album reference in one year onto the group's
canonical identifier. Without --apply this previews the repoints and changes
nothing. Each group is merged in its own transaction, so one conflicted pair
does not block the rest of the year.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			injector, err := ctx.ensureContainer()
			if err != nil {
				return err
			}
			svc, err := do.Invoke[*service.DedupService](injector)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			if !apply {
				preview, err := svc.PreviewFix(cmd.Context(), year)
				if err != nil {
					return err
				}
				if ctx.json() {
					return writeJSON(cmd, preview)
				}
				if !preview.ChangesRequired {
					fmt.Fprintf(out, "Nothing to fix in %s.\n", year)
					return nil
				}
				rows := make([][]string, 0, len(preview.Changes))
				for _, change := range preview.Changes {
					rows = append(rows, []string{
						change.Artist,
						change.Album,
						change.CanonicalAlbumID,
						strconv.Itoa(len(change.AffectedEntries)),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Artist", "Album", "Canonical ID", "Rows to update"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight},
				))
				fmt.Fprintf(out, "Preview only. Re-run with --apply --actor <id> to execute %d repoints.\n",
					len(preview.Changes))
				return nil
			}

			if strings.TrimSpace(actor) == "" {
				return fmt.Errorf("--actor is required with --apply")
			}

			result, err := svc.ExecuteFix(cmd.Context(), year, actor)
			if err != nil {
				return err
			}

			if ctx.json() {
				return writeJSON(cmd, result)
			}

			if len(result.Outcomes) == 0 {
				fmt.Fprintf(out, "Nothing to fix in %s.\n", result.Year)
				return nil
			}

			rows := make([][]string, 0, len(result.Outcomes))
			for _, outcome := range result.Outcomes {
				status := "ok"
				if outcome.Error != "" {
					status = outcome.Error
				}
				rows = append(rows, []string{
					outcome.Artist,
					outcome.Album,
					outcome.SourceID,
					outcome.CanonicalID,
					strconv.Itoa(outcome.UpdatedRows),
					status,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Artist", "Album", "Source ID", "Canonical ID", "Rows", "Status"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
			))
			fmt.Fprintf(out, "%d repoints applied, %d failed, %d rows updated in %s\n",
				result.Applied, result.Failed, result.UpdatedRows, result.Year)
			if result.Failed > 0 {
				return fmt.Errorf("%d repoints failed", result.Failed)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&year, "year", "", "List year to fix (required)")
	cmd.Flags().StringVar(&actor, "actor", "", "User ID recorded on merge events (required with --apply)")
	cmd.Flags().BoolVar(&apply, "apply", false, "Execute the repoints instead of previewing them")
	_ = cmd.MarkFlagRequired("year")

	return cmd
}
