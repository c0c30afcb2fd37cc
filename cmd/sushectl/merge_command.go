package main

import (
	"fmt"
	"strconv"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/magnusoverli/sushe-online-sub003/internal/service"
)

func newMergeCommand(ctx *commandContext) *cobra.Command {
	var (
		manualID     string
		canonicalID  string
		actor        string
		syncMetadata bool
	)

	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Merge a manual album into a canonical record",
		Long: `Rewrite every list reference from a manual album onto a canonical one,
delete the manual record, and commit an audit event, all in one transaction.
Use 'sushectl reconcile' to find candidate pairs first.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			injector, err := ctx.ensureContainer()
			if err != nil {
				return err
			}
			svc, err := do.Invoke[*service.MergeService](injector)
			if err != nil {
				return err
			}

			outcome, err := svc.MergeManualAlbum(cmd.Context(), service.MergeRequest{
				ManualID:     manualID,
				CanonicalID:  canonicalID,
				SyncMetadata: syncMetadata,
				AdminUserID:  actor,
			})
			if err != nil {
				return err
			}

			if ctx.json() {
				return writeJSON(cmd, outcome)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Merged %s into %s: %d list rows updated\n",
				manualID, canonicalID, outcome.UpdatedListItems)
			if outcome.Canonical != nil {
				fmt.Fprintf(out, "Canonical: %s / %s", outcome.Canonical.Artist, outcome.Canonical.Album)
				if outcome.Canonical.ReleaseDate != "" {
					fmt.Fprintf(out, " (%s)", outcome.Canonical.ReleaseDate)
				}
				fmt.Fprintln(out)
			}
			if len(outcome.AffectedLists) > 0 {
				rows := make([][]string, 0, len(outcome.AffectedLists))
				for _, list := range outcome.AffectedLists {
					rows = append(rows, []string{
						list.Name,
						strconv.Itoa(list.Year),
						list.UserID,
						list.ListID,
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"List", "Year", "User", "List ID"},
					rows,
					[]columnAlignment{alignLeft, alignRight, alignLeft, alignLeft},
				))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&manualID, "manual", "", "Manual album ID to merge away (required)")
	cmd.Flags().StringVar(&canonicalID, "canonical", "", "Canonical album ID to merge into (required)")
	cmd.Flags().StringVar(&actor, "actor", "", "User ID recorded on the merge event (required)")
	cmd.Flags().BoolVar(&syncMetadata, "sync-metadata", false, "Overwrite row metadata snapshots with the canonical album's values")
	_ = cmd.MarkFlagRequired("manual")
	_ = cmd.MarkFlagRequired("canonical")
	_ = cmd.MarkFlagRequired("actor")

	return cmd
}
